package order

import (
	"fmt"

	"orderflow/internal/pkg/errs"
)

// Field names a tracked attribute. The same names are used by update requests
// and by the audit trail.
type Field string

const (
	FieldCustomerName       Field = "customer_name"
	FieldCustomerPhone      Field = "customer_phone"
	FieldCustomerAddress    Field = "customer_address"
	FieldCity               Field = "city"
	FieldArea               Field = "area"
	FieldNotes              Field = "notes"
	FieldAgentStatus        Field = "agent_status"
	FieldFollowupStatus     Field = "followup_status"
	FieldDeliveryStatus     Field = "delivery_status"
	FieldAgentID            Field = "agent_id"
	FieldFollowupID         Field = "followup_id"
	FieldDeliveryProviderID Field = "delivery_provider_id"
	FieldProviderOrderCode  Field = "provider_order_code"
	FieldCalls              Field = "calls"
	FieldFollowupCalls      Field = "followup_calls"
	FieldCancellationReason Field = "cancellation_reason"
	FieldCancellationNotes  Field = "cancellation_notes"
	FieldReturnReason       Field = "return_reason"
	FieldItems              Field = "items"

	FieldProductID Field = "product_id"
	FieldVariantID Field = "variant_id"
	FieldQuantity  Field = "quantity"
	FieldUnitPrice Field = "unit_price"

	FieldFollowupAssignedAt Field = "followup_assigned_at"
	FieldReconfirmedAt      Field = "reconfirmed_at"
	FieldOrderSentAt        Field = "order_sent_at"
	FieldOrderDeliveredAt   Field = "order_delivered_at"
)

// patchableFields lists the fields a caller may declare in an update.
// provider_order_code and the contact counters are maintained by the engine.
func patchableFields() map[Field]struct{} {
	return map[Field]struct{}{
		FieldCustomerName:       {},
		FieldCustomerPhone:      {},
		FieldCustomerAddress:    {},
		FieldCity:               {},
		FieldArea:               {},
		FieldNotes:              {},
		FieldAgentStatus:        {},
		FieldFollowupStatus:     {},
		FieldDeliveryStatus:     {},
		FieldAgentID:            {},
		FieldFollowupID:         {},
		FieldDeliveryProviderID: {},
		FieldCancellationReason: {},
		FieldCancellationNotes:  {},
		FieldReturnReason:       {},
		FieldItems:              {},
	}
}

func ParseField(name string) (Field, error) {
	f := Field(name)
	if _, ok := patchableFields()[f]; !ok {
		return "", errs.NewValueIsInvalidErrorWithCause(name, fmt.Errorf("%q is not an updatable field", name))
	}
	return f, nil
}

// Role is the capability scope of the caller mutating an order.
type Role int

const (
	RoleUnknown Role = iota
	RoleAgent
	RoleFollowup
	RoleStaff
	RoleSystem
)

func getRoleCodes() map[Role]string {
	//nolint:exhaustive // RoleUnknown has no code
	return map[Role]string{
		RoleAgent:    "agent",
		RoleFollowup: "followup",
		RoleStaff:    "staff",
		RoleSystem:   "system",
	}
}

func (r Role) String() string {
	if code, ok := getRoleCodes()[r]; ok {
		return code
	}
	return "unknown"
}

func ParseRole(code string) (Role, error) {
	for r, c := range getRoleCodes() {
		if c == code {
			return r, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", code))
}

var (
	customerFields = []Field{
		FieldCustomerName, FieldCustomerPhone, FieldCustomerAddress, FieldCity, FieldArea, FieldNotes,
	}
	cancellationFields = []Field{FieldCancellationReason, FieldCancellationNotes}
)

// CanWrite reports whether the role may declare f in an update.
func (r Role) CanWrite(f Field) bool {
	if _, ok := patchableFields()[f]; !ok {
		return false
	}

	var allowed []Field
	switch r {
	case RoleStaff:
		return true
	case RoleAgent:
		allowed = append(allowed, customerFields...)
		allowed = append(allowed, cancellationFields...)
		allowed = append(allowed, FieldAgentStatus, FieldDeliveryProviderID, FieldItems)
	case RoleFollowup:
		allowed = append(allowed, customerFields...)
		allowed = append(allowed, cancellationFields...)
		allowed = append(allowed, FieldFollowupStatus, FieldDeliveryProviderID, FieldItems)
	case RoleSystem:
		allowed = []Field{FieldDeliveryStatus, FieldReturnReason}
	case RoleUnknown:
		return false
	}

	for _, a := range allowed {
		if a == f {
			return true
		}
	}
	return false
}
