package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/outbox"
)

type ApplyDeliveryStatusResult struct {
	OrderID   int64
	OldStatus order.DeliveryStatus
	NewStatus order.DeliveryStatus
}

// ApplyDeliveryStatusCommandHandler applies provider status notifications on
// behalf of the system. Repeating a notification that is already applied
// changes nothing and writes no history.
type ApplyDeliveryStatusCommandHandler struct {
	uowFactory UoWFactory
	pipeline   *MutationPipeline
	statuses   ProviderStatusMap
}

func NewApplyDeliveryStatusCommandHandler(
	uowFactory UoWFactory,
	pipeline *MutationPipeline,
	statuses ProviderStatusMap,
) ApplyDeliveryStatusCommandHandler {
	return ApplyDeliveryStatusCommandHandler{
		uowFactory: uowFactory,
		pipeline:   pipeline,
		statuses:   statuses,
	}
}

func (h *ApplyDeliveryStatusCommandHandler) Handle(
	ctx context.Context,
	cmd ApplyDeliveryStatusCommand,
) (ApplyDeliveryStatusResult, error) {
	if err := cmd.Validate(); err != nil {
		return ApplyDeliveryStatusResult{}, err
	}
	ctx = context.WithoutCancel(ctx)

	status, err := h.statuses.Resolve(cmd.StatusCode())
	if err != nil {
		return ApplyDeliveryStatusResult{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return ApplyDeliveryStatusResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	before, err := uow.OrderRepository().FindByProviderCode(ctx, h.pipeline.ProviderID(), cmd.OrderCode())
	if err != nil {
		return ApplyDeliveryStatusResult{}, err
	}

	result := ApplyDeliveryStatusResult{
		OrderID:   before.ID(),
		OldStatus: before.DeliveryStatus(),
		NewStatus: status,
	}

	patch := order.Patch{
		Fields:         []order.Field{order.FieldDeliveryStatus},
		DeliveryStatus: status,
	}
	reason := cmd.ReturnReason()
	if reason != nil {
		patch.Fields = append(patch.Fields, order.FieldReturnReason)
		patch.ReturnReason = *reason
	}

	if before.DeliveryStatus() == status && (reason == nil || before.ReturnReason() == *reason) {
		return result, uow.Commit(ctx)
	}

	after := before.Clone()
	if err = after.Apply(patch, order.RoleSystem, h.pipeline.Now()); err != nil {
		return ApplyDeliveryStatusResult{}, err
	}

	event := outbox.OrderUpdated
	if before.DeliveryStatus() != status {
		event = outbox.OrderDeliveryStatusChanged
	}

	mutation, err := h.pipeline.Run(ctx, uow, Mutation{
		Before: before,
		After:  after,
		Event:  event,
	})
	if err != nil {
		return ApplyDeliveryStatusResult{}, err
	}

	if err = h.pipeline.Commit(ctx, uow, mutation); err != nil {
		return ApplyDeliveryStatusResult{}, err
	}

	return result, nil
}
