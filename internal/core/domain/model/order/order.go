package order

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/history"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"
)

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or Restore.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrFollowupAlreadyAssigned is returned when the rotation tries to assign an
	// order that already has a follow-up worker.
	ErrFollowupAlreadyAssigned = errors.New("order already has a follow-up worker")

	// ErrAgentAlreadyAssigned is returned when a claim targets an owned order.
	ErrAgentAlreadyAssigned = errors.New("order already has an agent")
)

// Customer is the contact and destination data captured with the order.
type Customer struct {
	Name    string
	Phone   string
	Address string
	City    string
	Area    string
}

// Draft carries the values of a new order.
type Draft struct {
	Customer           Customer
	Notes              string
	AgentStatus        ConfirmationStatus
	AgentID            *kernel.UUID
	DeliveryProviderID *int64
	CancellationReason CancellationReason
	CancellationNotes  string
	CreatedBy          *kernel.UUID
	ImportBatchID      *int64
	Items              []ItemDraft
}

// Order is the aggregate root of the engine. It carries three independent status
// axes, the worker and provider assignments, and its line items.
//
// Order follows these invariants:
//   - status axes always hold a valid value of their closed enumeration
//   - delivery_provider_id is only set while agent_status allows delivery
//   - a canceled order carries a reason, and notes when the reason is "other"
//   - provider_order_code is set iff delivery_provider_id is the integrated provider
//     (checked with CheckProviderCode once the provider call has been made)
//   - contact counters only grow
//   - the order is never deleted; DeliveryDeleted replaces deletion
type Order struct {
	id       int64
	customer Customer
	notes    string

	agentStatus    ConfirmationStatus
	followupStatus FollowupStatus
	deliveryStatus DeliveryStatus

	agentID            *kernel.UUID
	followupID         *kernel.UUID
	deliveryProviderID *int64
	providerOrderCode  *string

	calls         int
	followupCalls int

	cancellationReason CancellationReason
	cancellationNotes  string
	returnReason       string

	createdAt          time.Time
	followupAssignedAt *time.Time
	reconfirmedAt      *time.Time
	orderSentAt        *time.Time
	orderDeliveredAt   *time.Time

	createdBy     *kernel.UUID
	importBatchID *int64

	items []*Item

	isConstructed bool
}

// NewOrder creates an order in its initial state. AgentUnknown in the draft
// defaults to AgentNew. The id is assigned by storage on insert.
func NewOrder(d Draft, now time.Time) (*Order, error) {
	agentStatus := d.AgentStatus
	if agentStatus == AgentUnknown {
		agentStatus = AgentNew
	}

	o := &Order{
		notes:              strings.TrimSpace(d.Notes),
		followupStatus:     FollowupNew,
		deliveryStatus:     DeliveryNew,
		agentID:            cloneUUID(d.AgentID),
		deliveryProviderID: cloneInt64(d.DeliveryProviderID),
		cancellationNotes:  strings.TrimSpace(d.CancellationNotes),
		createdAt:          now.UTC(),
		createdBy:          cloneUUID(d.CreatedBy),
		importBatchID:      cloneInt64(d.ImportBatchID),
		isConstructed:      true,
	}

	if err := errors.Join(
		o.setCustomer(d.Customer),
		o.setAgentStatus(agentStatus),
		o.setCancellationReason(d.CancellationReason),
		o.setItems(d.Items),
	); err != nil {
		return nil, err
	}

	return o, nil
}

func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) ID() int64                              { return o.id }
func (o *Order) Customer() Customer                     { return o.customer }
func (o *Order) Notes() string                          { return o.notes }
func (o *Order) AgentStatus() ConfirmationStatus        { return o.agentStatus }
func (o *Order) FollowupStatus() FollowupStatus         { return o.followupStatus }
func (o *Order) DeliveryStatus() DeliveryStatus         { return o.deliveryStatus }
func (o *Order) AgentID() *kernel.UUID                  { return cloneUUID(o.agentID) }
func (o *Order) FollowupID() *kernel.UUID               { return cloneUUID(o.followupID) }
func (o *Order) DeliveryProviderID() *int64             { return cloneInt64(o.deliveryProviderID) }
func (o *Order) Calls() int                             { return o.calls }
func (o *Order) FollowupCalls() int                     { return o.followupCalls }
func (o *Order) CancellationReason() CancellationReason { return o.cancellationReason }
func (o *Order) CancellationNotes() string              { return o.cancellationNotes }
func (o *Order) ReturnReason() string                   { return o.returnReason }
func (o *Order) CreatedAt() time.Time                   { return o.createdAt }
func (o *Order) FollowupAssignedAt() *time.Time         { return cloneTime(o.followupAssignedAt) }
func (o *Order) ReconfirmedAt() *time.Time              { return cloneTime(o.reconfirmedAt) }
func (o *Order) OrderSentAt() *time.Time                { return cloneTime(o.orderSentAt) }
func (o *Order) OrderDeliveredAt() *time.Time           { return cloneTime(o.orderDeliveredAt) }
func (o *Order) CreatedBy() *kernel.UUID                { return cloneUUID(o.createdBy) }
func (o *Order) ImportBatchID() *int64                  { return cloneInt64(o.importBatchID) }

func (o *Order) ProviderOrderCode() *string {
	if o.providerOrderCode == nil {
		return nil
	}
	code := *o.providerOrderCode
	return &code
}

// Items returns the line items. The slice is a copy; the items are shared.
func (o *Order) Items() []*Item {
	items := make([]*Item, len(o.items))
	copy(items, o.items)
	return items
}

// AssignIdentity stores the id issued by the database on insert.
func (o *Order) AssignIdentity(id int64) error {
	if o.id != 0 {
		return errs.NewValueIsInvalidErrorWithCause("order id", fmt.Errorf("order already has id %d", o.id))
	}
	if id <= 0 {
		return errs.NewValueIsInvalidError("order id")
	}
	o.id = id
	return nil
}

// Apply applies the declared fields of p on behalf of role. Fields not declared
// in p are left untouched even when p carries values for them.
func (o *Order) Apply(p Patch, role Role, now time.Time) error {
	if err := p.Validate(role); err != nil {
		return err
	}

	prevFollowup := o.followupStatus
	prevDelivery := o.deliveryStatus

	var errList []error
	for _, f := range p.Fields {
		errList = append(errList, o.applyField(f, p))
	}
	if err := errors.Join(errList...); err != nil {
		return err
	}

	o.stampMilestones(prevFollowup, prevDelivery, now)
	return nil
}

func (o *Order) applyField(f Field, p Patch) error {
	switch f {
	case FieldCustomerName:
		c := o.customer
		c.Name = p.Customer.Name
		return o.setCustomer(c)
	case FieldCustomerPhone:
		c := o.customer
		c.Phone = p.Customer.Phone
		return o.setCustomer(c)
	case FieldCustomerAddress:
		o.customer.Address = strings.TrimSpace(p.Customer.Address)
	case FieldCity:
		o.customer.City = strings.TrimSpace(p.Customer.City)
	case FieldArea:
		o.customer.Area = strings.TrimSpace(p.Customer.Area)
	case FieldNotes:
		o.notes = strings.TrimSpace(p.Notes)
	case FieldAgentStatus:
		return o.setAgentStatus(p.AgentStatus)
	case FieldFollowupStatus:
		if err := p.FollowupStatus.Validate(); err != nil {
			return err
		}
		o.followupStatus = p.FollowupStatus
	case FieldDeliveryStatus:
		if err := p.DeliveryStatus.Validate(); err != nil {
			return err
		}
		o.deliveryStatus = p.DeliveryStatus
	case FieldAgentID:
		o.agentID = cloneUUID(p.AgentID)
	case FieldFollowupID:
		o.followupID = cloneUUID(p.FollowupID)
	case FieldDeliveryProviderID:
		o.deliveryProviderID = cloneInt64(p.DeliveryProviderID)
	case FieldCancellationReason:
		return o.setCancellationReason(p.CancellationReason)
	case FieldCancellationNotes:
		o.cancellationNotes = strings.TrimSpace(p.CancellationNotes)
	case FieldReturnReason:
		o.returnReason = strings.TrimSpace(p.ReturnReason)
	case FieldItems:
		return o.replaceItems(p.Items)
	case FieldProviderOrderCode, FieldCalls, FieldFollowupCalls,
		FieldProductID, FieldVariantID, FieldQuantity, FieldUnitPrice,
		FieldFollowupAssignedAt, FieldReconfirmedAt, FieldOrderSentAt, FieldOrderDeliveredAt:
		return errs.NewValueIsInvalidErrorWithCause(string(f), errors.New("field is maintained by the engine"))
	}
	return nil
}

// ValidateRules checks the rules that need no collaborator: delivery provider vs
// confirmation status, cancellation metadata and item quantities.
func (o *Order) ValidateRules() error {
	var errList []error

	if o.deliveryProviderID != nil && !o.agentStatus.AllowsDelivery() {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			string(FieldDeliveryProviderID),
			fmt.Errorf("a delivery provider cannot be set while agent_status is %s", o.agentStatus)))
	}

	if o.agentStatus == AgentCanceled {
		if o.cancellationReason == CancelNone {
			errList = append(errList, errs.NewValueIsRequiredError(string(FieldCancellationReason)))
		} else if o.cancellationReason.RequiresNotes() && o.cancellationNotes == "" {
			errList = append(errList, errs.NewValueIsRequiredErrorWithCause(
				string(FieldCancellationNotes),
				fmt.Errorf("reason %s requires notes", o.cancellationReason)))
		}
	}

	if len(o.items) == 0 {
		errList = append(errList, errs.NewValueIsRequiredError(string(FieldItems)))
	}

	return errors.Join(errList...)
}

// CheckProviderCode enforces that provider_order_code is present exactly when
// the order is assigned to the integrated provider.
func (o *Order) CheckProviderCode(integratedProviderID int64) error {
	integrated := o.isWithProvider(integratedProviderID)
	hasCode := o.providerOrderCode != nil
	if integrated == hasCode {
		return nil
	}
	if integrated {
		return errs.NewValueIsRequiredErrorWithCause(string(FieldProviderOrderCode),
			errors.New("order is assigned to the integrated provider without a provider order code"))
	}
	return errs.NewValueIsInvalidErrorWithCause(string(FieldProviderOrderCode),
		errors.New("provider order code is set while the order is not with the integrated provider"))
}

// QualifiesForFollowup reports whether the transition from before to o must
// trigger the follow-up rotation: o is confirmed with a delivery provider and no
// follow-up worker, and this mutation changed the provider or the status.
// A nil before means the order is being created.
func (o *Order) QualifiesForFollowup(before *Order) bool {
	if o.deliveryProviderID == nil || o.agentStatus != AgentConfirmed || o.followupID != nil {
		return false
	}
	if before == nil {
		return true
	}
	return before.agentStatus != o.agentStatus || !sameInt64(before.deliveryProviderID, o.deliveryProviderID)
}

// SyncAction is the provider call a mutation requires.
type SyncAction int

const (
	SyncNone SyncAction = iota
	SyncRegister
	SyncDeregister
)

func (a SyncAction) String() string {
	switch a {
	case SyncRegister:
		return "register"
	case SyncDeregister:
		return "deregister"
	case SyncNone:
		return "none"
	}
	return "none"
}

// ProviderSync decides which provider call the transition from before to o
// requires. An order with the integrated provider and no code must be
// registered; an order leaving the integrated provider with a code must be
// deregistered.
func (o *Order) ProviderSync(before *Order, integratedProviderID int64) SyncAction {
	if o.isWithProvider(integratedProviderID) && o.providerOrderCode == nil {
		return SyncRegister
	}
	if before != nil &&
		before.isWithProvider(integratedProviderID) &&
		before.providerOrderCode != nil &&
		!o.isWithProvider(integratedProviderID) {
		return SyncDeregister
	}
	return SyncNone
}

// AssignFollowup hands the order to a follow-up worker.
func (o *Order) AssignFollowup(worker kernel.UUID, now time.Time) error {
	if err := worker.Validate(); err != nil {
		return err
	}
	if o.followupID != nil {
		return ErrFollowupAlreadyAssigned
	}
	o.followupID = &worker
	stamp := now.UTC()
	o.followupAssignedAt = &stamp
	return nil
}

// ClaimBy hands an unowned order to an agent.
func (o *Order) ClaimBy(agent kernel.UUID) error {
	if err := agent.Validate(); err != nil {
		return err
	}
	if o.agentID != nil {
		return ErrAgentAlreadyAssigned
	}
	o.agentID = &agent
	return nil
}

// HeldBy reports whether agent owns the order and still has to confirm it.
func (o *Order) HeldBy(agent kernel.UUID) bool {
	return o.agentID != nil && o.agentID.IsEqual(agent) && o.agentStatus.Claimable()
}

// AttachProviderCode stores the code returned by a successful registration.
func (o *Order) AttachProviderCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errs.NewValueIsRequiredError(string(FieldProviderOrderCode))
	}
	if o.deliveryProviderID == nil {
		return errs.NewValueIsInvalidErrorWithCause(string(FieldProviderOrderCode),
			errors.New("order has no delivery provider"))
	}
	o.providerOrderCode = &code
	return nil
}

// DetachProviderCode clears the code after a deregistration.
func (o *Order) DetachProviderCode() {
	o.providerOrderCode = nil
}

// RecordContact increments the contact counter owned by role.
func (o *Order) RecordContact(role Role) error {
	switch role {
	case RoleAgent:
		o.calls++
	case RoleFollowup:
		o.followupCalls++
	case RoleStaff, RoleSystem, RoleUnknown:
		return errs.NewValueIsInvalidErrorWithCause("role",
			fmt.Errorf("role %s does not own a contact counter", role))
	}
	return nil
}

// Attributes renders the tracked values of the order, timestamps flagged.
func (o *Order) Attributes() []history.Attribute {
	reason := ""
	if o.cancellationReason != CancelNone {
		reason = o.cancellationReason.String()
	}
	code := ""
	if o.providerOrderCode != nil {
		code = *o.providerOrderCode
	}

	return []history.Attribute{
		{Name: string(FieldCustomerName), Value: o.customer.Name},
		{Name: string(FieldCustomerPhone), Value: o.customer.Phone},
		{Name: string(FieldCustomerAddress), Value: o.customer.Address},
		{Name: string(FieldCity), Value: o.customer.City},
		{Name: string(FieldArea), Value: o.customer.Area},
		{Name: string(FieldNotes), Value: o.notes},
		{Name: string(FieldAgentStatus), Value: o.agentStatus.String()},
		{Name: string(FieldFollowupStatus), Value: o.followupStatus.String()},
		{Name: string(FieldDeliveryStatus), Value: o.deliveryStatus.String()},
		{Name: string(FieldAgentID), Value: formatUUID(o.agentID)},
		{Name: string(FieldFollowupID), Value: formatUUID(o.followupID)},
		{Name: string(FieldDeliveryProviderID), Value: formatInt64(o.deliveryProviderID)},
		{Name: string(FieldProviderOrderCode), Value: code},
		{Name: string(FieldCalls), Value: strconv.Itoa(o.calls)},
		{Name: string(FieldFollowupCalls), Value: strconv.Itoa(o.followupCalls)},
		{Name: string(FieldCancellationReason), Value: reason},
		{Name: string(FieldCancellationNotes), Value: o.cancellationNotes},
		{Name: string(FieldReturnReason), Value: o.returnReason},
		{Name: string(FieldFollowupAssignedAt), Value: formatTime(o.followupAssignedAt), Timestamp: true},
		{Name: string(FieldReconfirmedAt), Value: formatTime(o.reconfirmedAt), Timestamp: true},
		{Name: string(FieldOrderSentAt), Value: formatTime(o.orderSentAt), Timestamp: true},
		{Name: string(FieldOrderDeliveredAt), Value: formatTime(o.orderDeliveredAt), Timestamp: true},
	}
}

// LifecycleEvent classifies the transition from before to o for the audit trail.
func (o *Order) LifecycleEvent(before *Order) history.Event {
	if before == nil {
		return history.EventCreated
	}
	wasDeleted := before.deliveryStatus == DeliveryDeleted
	isDeleted := o.deliveryStatus == DeliveryDeleted
	switch {
	case !wasDeleted && isDeleted:
		return history.EventDeleted
	case wasDeleted && !isDeleted:
		return history.EventRestored
	default:
		return history.EventUpdated
	}
}

func (o *Order) isWithProvider(providerID int64) bool {
	return o.deliveryProviderID != nil && *o.deliveryProviderID == providerID
}

func (o *Order) stampMilestones(prevFollowup FollowupStatus, prevDelivery DeliveryStatus, now time.Time) {
	stamp := now.UTC()

	if o.followupStatus != prevFollowup && o.followupStatus.Reconfirms() {
		o.reconfirmedAt = &stamp
	}

	if o.deliveryStatus == prevDelivery {
		return
	}
	switch o.deliveryStatus.Milestone() {
	case MilestoneSent:
		if o.orderSentAt == nil {
			o.orderSentAt = &stamp
		}
	case MilestoneDelivered:
		o.orderDeliveredAt = &stamp
	case MilestoneNone:
	}
}

func (o *Order) setCustomer(c Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.City = strings.TrimSpace(c.City)
	c.Area = strings.TrimSpace(c.Area)

	var errList []error
	if c.Name == "" {
		errList = append(errList, errs.NewValueIsRequiredError(string(FieldCustomerName)))
	}
	if c.Phone == "" {
		errList = append(errList, errs.NewValueIsRequiredError(string(FieldCustomerPhone)))
	}
	if err := errors.Join(errList...); err != nil {
		return err
	}

	o.customer = c
	return nil
}

func (o *Order) setAgentStatus(s ConfirmationStatus) error {
	if err := s.Validate(); err != nil {
		return err
	}
	o.agentStatus = s
	return nil
}

func (o *Order) setCancellationReason(r CancellationReason) error {
	if err := r.Validate(); err != nil {
		return err
	}
	o.cancellationReason = r
	return nil
}

func (o *Order) setItems(drafts []ItemDraft) error {
	if len(drafts) == 0 {
		return errs.NewValueIsRequiredError(string(FieldItems))
	}
	items := make([]*Item, 0, len(drafts))
	var errList []error
	for _, d := range drafts {
		if d.ID != nil {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(string(FieldItems),
				errors.New("a new order cannot reference existing items")))
			continue
		}
		it, err := newItem(d)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		items = append(items, it)
	}
	if err := errors.Join(errList...); err != nil {
		return err
	}
	o.items = items
	return nil
}

// replaceItems makes drafts the full item list: drafts with an id update an
// existing line, drafts without one add a line, lines left out are removed.
func (o *Order) replaceItems(drafts []ItemDraft) error {
	if len(drafts) == 0 {
		return errs.NewValueIsRequiredError(string(FieldItems))
	}

	existing := make(map[int64]*Item, len(o.items))
	for _, it := range o.items {
		existing[it.id] = it
	}

	next := make([]*Item, 0, len(drafts))
	used := make(map[int64]struct{}, len(drafts))
	var errList []error
	for _, d := range drafts {
		if d.ID == nil {
			it, err := newItem(d)
			if err != nil {
				errList = append(errList, err)
				continue
			}
			next = append(next, it)
			continue
		}

		current, ok := existing[*d.ID]
		if !ok {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(string(FieldItems),
				fmt.Errorf("item %d does not belong to order %d", *d.ID, o.id)))
			continue
		}
		if _, dup := used[*d.ID]; dup {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(string(FieldItems),
				fmt.Errorf("item %d is listed twice", *d.ID)))
			continue
		}
		used[*d.ID] = struct{}{}

		updated := current.clone()
		if err := updated.change(d); err != nil {
			errList = append(errList, err)
			continue
		}
		next = append(next, updated)
	}
	if err := errors.Join(errList...); err != nil {
		return err
	}

	o.items = next
	return nil
}

func cloneUUID(v *kernel.UUID) *kernel.UUID {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func formatUUID(v *kernel.UUID) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func formatTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.UTC().Format(time.RFC3339Nano)
}
