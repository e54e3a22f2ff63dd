package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/outbox"
)

// CreateOrderCommandHandler registers new orders. A new order goes through the
// full pipeline: it may be confirmed on creation, in which case it is handed to
// a follow-up worker and registered with the integrated provider before commit.
type CreateOrderCommandHandler struct {
	uowFactory UoWFactory
	pipeline   *MutationPipeline
}

func NewCreateOrderCommandHandler(uowFactory UoWFactory, pipeline *MutationPipeline) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		pipeline:   pipeline,
	}
}

// Handle processes the order creation command.
// Cancellation of ctx is ignored once the handler starts.
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (MutationResult, error) {
	if err := cmd.Validate(); err != nil {
		return MutationResult{}, err
	}
	ctx = context.WithoutCancel(ctx)

	draft := cmd.Draft()
	items, err := h.pipeline.PriceItems(ctx, draft.Items)
	if err != nil {
		return MutationResult{}, err
	}
	draft.Items = items

	created, err := order.NewOrder(draft, h.pipeline.Now())
	if err != nil {
		return MutationResult{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return MutationResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	result, err := h.pipeline.Run(ctx, uow, Mutation{
		After: created,
		Actor: cmd.Actor(),
		Event: outbox.OrderCreated,
	})
	if err != nil {
		return MutationResult{}, err
	}

	if err = h.pipeline.Commit(ctx, uow, result); err != nil {
		return MutationResult{}, err
	}

	return result, nil
}
