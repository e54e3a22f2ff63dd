package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/core/domain/model/history"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/outbox"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// Mutation is one run of the pipeline. Before is nil when the order is being
// created; After carries the applied change and is completed in place by the
// rotation and provider steps.
type Mutation struct {
	Before *order.Order
	After  *order.Order
	Actor  *kernel.UUID
	Event  outbox.Type
}

// MutationResult reports what the pipeline did besides the requested change.
// FollowupSkipped is set when the order qualified for a follow-up worker but the
// roster was empty.
type MutationResult struct {
	Order           *order.Order
	FollowupSkipped bool
	ProviderSync    order.SyncAction

	// registeredCode is the code issued by a registration made during the run,
	// withdrawn again if the transaction does not commit.
	registeredCode string
}

// MutationPipeline runs the ordered steps shared by every order mutation
// inside the caller's transaction:
//
//  1. validate the applied state against the rules and the catalog
//  2. persist the order and its items
//  3. record the field-level history of the change
//  4. assign a follow-up worker when the order qualifies
//  5. register or deregister the order with the integrated provider
//  6. check the provider code invariant, persist the final state and
//     enqueue the outbox events
//
// Loading with a row lock and applying the change belong to the command
// handler, which finishes with Commit. Any error leaves the transaction to be
// rolled back; a registration made by the failed run is withdrawn from the
// provider.
type MutationPipeline struct {
	catalog   ports.Catalog
	directory ports.Directory
	provider  ports.DeliveryProvider
	rotation  services.FollowupRotation
	metrics   *metrics.EngineMetrics
	logger    *zap.Logger
	clock     Clock
}

func NewMutationPipeline(
	catalog ports.Catalog,
	directory ports.Directory,
	provider ports.DeliveryProvider,
	engineMetrics *metrics.EngineMetrics,
	log *zap.Logger,
	clock Clock,
) *MutationPipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &MutationPipeline{
		catalog:   catalog,
		directory: directory,
		provider:  provider,
		rotation:  services.NewFollowupRotation(),
		metrics:   engineMetrics,
		logger:    log,
		clock:     clock,
	}
}

func (p *MutationPipeline) Now() time.Time {
	return p.clock()
}

// ProviderID is the id of the integrated delivery provider.
func (p *MutationPipeline) ProviderID() int64 {
	return p.provider.ID()
}

// PriceItems captures the catalog price of every new line: the variant price
// when the variant defines one, the product price otherwise. Lines that already
// exist keep their captured price and are returned unchanged.
func (p *MutationPipeline) PriceItems(ctx context.Context, drafts []order.ItemDraft) ([]order.ItemDraft, error) {
	priced := make([]order.ItemDraft, len(drafts))
	var errList []error
	for i, d := range drafts {
		priced[i] = d
		if d.ID != nil {
			continue
		}
		product, err := p.product(ctx, d.ProductID)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		priced[i].UnitPrice = product.Price
		if d.VariantID == nil {
			continue
		}
		if variant, ok := product.Variant(*d.VariantID); ok && variant.Price != nil {
			priced[i].UnitPrice = *variant.Price
		}
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}
	return priced, nil
}

// Run executes the pipeline for m.
func (p *MutationPipeline) Run(ctx context.Context, uow UoW, m Mutation) (_ MutationResult, err error) {
	if m.After == nil {
		return MutationResult{}, order.ErrOrderIsNotConstructed
	}
	if err = m.After.Validate(); err != nil {
		return MutationResult{}, err
	}
	if err = m.Event.Validate(); err != nil {
		return MutationResult{}, err
	}

	now := p.clock()
	log := logger.FromCtx(ctx, p.logger).With(zap.String("component", "mutation_pipeline"))

	if err = p.validate(ctx, m.Before, m.After); err != nil {
		return MutationResult{}, err
	}

	repo := uow.OrderRepository()
	if m.Before == nil {
		err = repo.Add(ctx, m.After)
	} else {
		err = repo.Update(ctx, m.After)
	}
	if err != nil {
		return MutationResult{}, err
	}

	batch := history.NewBatch(m.Actor, now)
	event := m.After.LifecycleEvent(m.Before)
	entries := recordChanges(batch, event, m.Before, m.After)
	if err = p.appendHistory(ctx, uow, entries); err != nil {
		return MutationResult{}, err
	}

	result := MutationResult{Order: m.After}

	settled := m.After.Clone()
	assigned, skipped, err := p.rotate(ctx, uow, m.Before, m.After, now, log)
	if err != nil {
		return MutationResult{}, err
	}
	result.FollowupSkipped = skipped

	if result.ProviderSync, err = p.sync(ctx, m.Before, m.After, log); err != nil {
		return MutationResult{}, err
	}
	if result.ProviderSync == order.SyncRegister {
		result.registeredCode = *m.After.ProviderOrderCode()
		registered := result.registeredCode
		defer func() {
			if err != nil {
				p.withdraw(ctx, registered, log)
			}
		}()
	}

	if err = m.After.CheckProviderCode(p.provider.ID()); err != nil {
		return MutationResult{}, err
	}

	followups := batch.Record(history.TargetOrder, m.After.ID(), m.After.ID(), event,
		history.Diff(settled.Attributes(), m.After.Attributes()))
	if len(followups) > 0 {
		if err = repo.Update(ctx, m.After); err != nil {
			return MutationResult{}, err
		}
		if err = p.appendHistory(ctx, uow, followups); err != nil {
			return MutationResult{}, err
		}
		entries = append(entries, followups...)
	}

	events, err := buildEvents(m, batch, entries, assigned, now)
	if err != nil {
		return MutationResult{}, err
	}
	if len(events) > 0 {
		if err = uow.OutboxRepository().Enqueue(ctx, events...); err != nil {
			return MutationResult{}, err
		}
	}

	log.Debug("order mutation recorded",
		zap.Int64("order_id", m.After.ID()),
		zap.String("event", event.String()),
		zap.Int("history_rows", len(entries)),
		zap.Stringer("provider_sync", result.ProviderSync),
	)
	return result, nil
}

func (p *MutationPipeline) validate(ctx context.Context, before, after *order.Order) error {
	if err := after.ValidateRules(); err != nil {
		return err
	}

	errList := []error{p.checkLocation(ctx, before, after)}
	for _, pair := range order.PairItems(before, after) {
		if pair.After == nil {
			continue
		}
		if pair.Before != nil && sameVariant(pair.Before.VariantID(), pair.After.VariantID()) {
			continue
		}
		errList = append(errList, p.checkItem(ctx, pair.After))
	}
	return errors.Join(errList...)
}

// checkLocation resolves city and area against the delivery-location catalog
// when the order is deliverable and the mutation touched its status or place.
func (p *MutationPipeline) checkLocation(ctx context.Context, before, after *order.Order) error {
	if !after.AgentStatus().AllowsDelivery() {
		return nil
	}
	c := after.Customer()
	if before != nil &&
		before.AgentStatus() == after.AgentStatus() &&
		before.Customer().City == c.City &&
		before.Customer().Area == c.Area {
		return nil
	}

	ok, err := p.catalog.LocationExists(ctx, c.City, c.Area)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewValueIsInvalidErrorWithCause(string(order.FieldCity),
			fmt.Errorf("%q / %q is not a delivery location", c.City, c.Area))
	}
	return nil
}

func (p *MutationPipeline) checkItem(ctx context.Context, it *order.Item) error {
	product, err := p.product(ctx, it.ProductID())
	if err != nil {
		return err
	}
	variantID := it.VariantID()
	if variantID == nil {
		if product.HasVariants() {
			return errs.NewValueIsRequiredErrorWithCause(string(order.FieldVariantID),
				fmt.Errorf("product %d requires a variant", product.ID))
		}
		return nil
	}
	if _, ok := product.Variant(*variantID); !ok {
		return errs.NewValueIsInvalidErrorWithCause(string(order.FieldVariantID),
			fmt.Errorf("variant %d does not belong to product %d", *variantID, product.ID))
	}
	return nil
}

func (p *MutationPipeline) product(ctx context.Context, id int64) (ports.Product, error) {
	product, err := p.catalog.Product(ctx, id)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return ports.Product{}, errs.NewValueIsInvalidErrorWithCause(string(order.FieldProductID), err)
	}
	return product, err
}

// rotate assigns the next follow-up worker while holding the rotation pointer
// lock. The lock is released with the enclosing transaction.
func (p *MutationPipeline) rotate(
	ctx context.Context,
	uow UoW,
	before, after *order.Order,
	now time.Time,
	log *zap.Logger,
) (assigned, skipped bool, err error) {
	if !after.QualifiesForFollowup(before) {
		return false, false, nil
	}

	pointer := uow.RotationRepository()
	last, err := pointer.LockPointer(ctx)
	if err != nil {
		return false, false, err
	}

	roster, err := p.directory.ActiveFollowupWorkers(ctx)
	if err != nil {
		return false, false, err
	}

	worker, err := p.rotation.Assign(after, roster, last, now)
	if errors.Is(err, services.ErrEmptyRoster) {
		p.metrics.IncFollowup("skipped_empty_roster")
		log.Warn("no active follow-up worker, order left unassigned", zap.Int64("order_id", after.ID()))
		return false, true, nil
	}
	if err != nil {
		return false, false, err
	}

	if err = pointer.SavePointer(ctx, worker); err != nil {
		return false, false, err
	}
	p.metrics.IncFollowup("assigned")
	log.Info("follow-up worker assigned",
		zap.Int64("order_id", after.ID()),
		zap.String("followup_id", worker.String()),
	)
	return true, false, nil
}

// sync makes the provider call the transition requires and records its outcome
// on after.
func (p *MutationPipeline) sync(ctx context.Context, before, after *order.Order, log *zap.Logger) (order.SyncAction, error) {
	action := after.ProviderSync(before, p.provider.ID())

	switch action {
	case order.SyncRegister:
		res, err := p.provider.Register(ctx, after)
		if err != nil {
			return action, errs.NewProviderUnavailableError("register", err)
		}
		if !res.Success {
			return action, errs.NewProviderRejectedError("register", res.ErrorMessage)
		}
		if res.OrderCode == "" {
			return action, errs.NewProviderRejectedError("register", "provider returned no order code")
		}
		if err = after.AttachProviderCode(res.OrderCode); err != nil {
			p.withdraw(ctx, res.OrderCode, log)
			return action, err
		}
		log.Info("order registered with provider",
			zap.Int64("order_id", after.ID()),
			zap.String("provider_order_code", res.OrderCode),
		)

	case order.SyncDeregister:
		code := before.ProviderOrderCode()
		res, err := p.provider.Deregister(ctx, *code)
		if err != nil {
			return action, errs.NewProviderUnavailableError("deregister", err)
		}
		if !res.Success && !res.NotFound {
			return action, errs.NewProviderRejectedError("deregister", res.ErrorMessage)
		}
		if res.NotFound {
			log.Info("provider no longer knows the order", zap.String("provider_order_code", *code))
		}
		after.DetachProviderCode()

	case order.SyncNone:
	}

	return action, nil
}

// Commit commits uow. When the commit fails, a registration made by the run
// that produced result is withdrawn from the provider.
func (p *MutationPipeline) Commit(ctx context.Context, uow UoW, result MutationResult) error {
	err := uow.Commit(ctx)
	if err != nil && result.registeredCode != "" {
		log := logger.FromCtx(ctx, p.logger).With(zap.String("component", "mutation_pipeline"))
		p.withdraw(ctx, result.registeredCode, log)
	}
	return err
}

// withdraw deregisters an order whose registration will not be persisted.
// Failures are logged; the original error is what the caller reports.
func (p *MutationPipeline) withdraw(ctx context.Context, code string, log *zap.Logger) {
	res, err := p.provider.Deregister(ctx, code)
	switch {
	case err != nil:
		p.metrics.IncWithdrawal("failed")
		log.Error("registration left at provider after failed mutation",
			zap.String("provider_order_code", code), zap.Error(err))
	case !res.Success && !res.NotFound:
		p.metrics.IncWithdrawal("rejected")
		log.Error("provider refused to withdraw registration after failed mutation",
			zap.String("provider_order_code", code), zap.String("provider_error", res.ErrorMessage))
	default:
		p.metrics.IncWithdrawal("withdrawn")
		log.Warn("registration withdrawn after failed mutation", zap.String("provider_order_code", code))
	}
}

func (p *MutationPipeline) appendHistory(ctx context.Context, uow UoW, entries []*history.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := uow.HistoryRepository().Append(ctx, entries); err != nil {
		return err
	}

	counts := make(map[history.TargetType]int, 2)
	for _, e := range entries {
		counts[e.TargetType()]++
	}
	for target, n := range counts {
		p.metrics.AddHistoryRows(string(target), n)
	}
	return nil
}

// recordChanges renders the order and item changes between before and after.
// Item ids must be assigned, so it runs after the order is persisted.
func recordChanges(batch *history.Batch, event history.Event, before, after *order.Order) []*history.Entry {
	var previous []history.Attribute
	if before != nil {
		previous = before.Attributes()
	}
	entries := batch.Record(history.TargetOrder, after.ID(), after.ID(), event,
		history.Diff(previous, after.Attributes()))

	for _, pair := range order.PairItems(before, after) {
		switch {
		case pair.Before == nil:
			entries = append(entries, batch.Record(history.TargetOrderItem, pair.After.ID(), after.ID(),
				history.EventCreated, history.Diff(nil, pair.After.Attributes()))...)
		case pair.After == nil:
			entries = append(entries, batch.Record(history.TargetOrderItem, pair.Before.ID(), after.ID(),
				history.EventDeleted, history.Diff(pair.Before.Attributes(), nil))...)
		default:
			entries = append(entries, batch.Record(history.TargetOrderItem, pair.After.ID(), after.ID(),
				history.EventUpdated, history.Diff(pair.Before.Attributes(), pair.After.Attributes()))...)
		}
	}
	return entries
}

type eventPayload struct {
	OrderID    int64    `json:"order_id"`
	BatchID    string   `json:"batch_id"`
	ActorID    string   `json:"actor_id,omitempty"`
	Fields     []string `json:"fields,omitempty"`
	FollowupID string   `json:"followup_id,omitempty"`
	FromStatus string   `json:"from_status,omitempty"`
	ToStatus   string   `json:"to_status,omitempty"`
}

// buildEvents derives the outbox events of a mutation: the requested event when
// anything changed, plus follow-up assignment and delivery status events.
func buildEvents(m Mutation, batch *history.Batch, entries []*history.Entry, assigned bool, now time.Time) ([]*outbox.Event, error) {
	base := eventPayload{
		OrderID: m.After.ID(),
		BatchID: batch.ID().String(),
		Fields:  changedFields(entries),
	}
	if m.Actor != nil {
		base.ActorID = m.Actor.String()
	}

	var events []*outbox.Event
	add := func(t outbox.Type, payload eventPayload) error {
		e, err := outbox.NewEvent(t, m.After.ID(), payload, now)
		if err != nil {
			return err
		}
		events = append(events, e)
		return nil
	}

	// delivery status changes always carry their own event with both statuses
	if (m.Before == nil || len(entries) > 0) && m.Event != outbox.OrderDeliveryStatusChanged {
		if err := add(m.Event, base); err != nil {
			return nil, err
		}
	}
	if m.Before != nil && m.Before.DeliveryStatus() != m.After.DeliveryStatus() {
		payload := base
		payload.FromStatus = m.Before.DeliveryStatus().String()
		payload.ToStatus = m.After.DeliveryStatus().String()
		if err := add(outbox.OrderDeliveryStatusChanged, payload); err != nil {
			return nil, err
		}
	}
	if assigned {
		payload := base
		payload.FollowupID = m.After.FollowupID().String()
		if err := add(outbox.OrderFollowupAssigned, payload); err != nil {
			return nil, err
		}
	}
	return events, nil
}

func changedFields(entries []*history.Entry) []string {
	fields := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.TargetType() != history.TargetOrder {
			if _, ok := seen[string(order.FieldItems)]; !ok {
				seen[string(order.FieldItems)] = struct{}{}
				fields = append(fields, string(order.FieldItems))
			}
			continue
		}
		if _, ok := seen[e.Field()]; ok {
			continue
		}
		seen[e.Field()] = struct{}{}
		fields = append(fields, e.Field())
	}
	return fields
}

func sameVariant(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
