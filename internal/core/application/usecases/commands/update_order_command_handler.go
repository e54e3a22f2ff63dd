package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/outbox"
)

// UpdateOrderCommandHandler applies partial updates. The order row stays locked
// from load to commit, provider calls included.
type UpdateOrderCommandHandler struct {
	uowFactory UoWFactory
	pipeline   *MutationPipeline
}

func NewUpdateOrderCommandHandler(uowFactory UoWFactory, pipeline *MutationPipeline) UpdateOrderCommandHandler {
	return UpdateOrderCommandHandler{
		uowFactory: uowFactory,
		pipeline:   pipeline,
	}
}

func (h *UpdateOrderCommandHandler) Handle(ctx context.Context, cmd UpdateOrderCommand) (MutationResult, error) {
	if err := cmd.Validate(); err != nil {
		return MutationResult{}, err
	}
	ctx = context.WithoutCancel(ctx)

	patch := cmd.Patch()
	if patch.Declares(order.FieldItems) {
		items, err := h.pipeline.PriceItems(ctx, patch.Items)
		if err != nil {
			return MutationResult{}, err
		}
		patch.Items = items
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return MutationResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	before, err := uow.OrderRepository().GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return MutationResult{}, err
	}

	after := before.Clone()
	if err = after.Apply(patch, cmd.Role(), h.pipeline.Now()); err != nil {
		return MutationResult{}, err
	}

	actor := cmd.Actor()
	result, err := h.pipeline.Run(ctx, uow, Mutation{
		Before: before,
		After:  after,
		Actor:  &actor,
		Event:  outbox.OrderUpdated,
	})
	if err != nil {
		return MutationResult{}, err
	}

	if err = h.pipeline.Commit(ctx, uow, result); err != nil {
		return MutationResult{}, err
	}

	return result, nil
}
