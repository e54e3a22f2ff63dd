package commands

import (
	"context"

	"orderflow/internal/core/domain/model/outbox"
)

type LogContactAttemptCommandHandler struct {
	uowFactory UoWFactory
	pipeline   *MutationPipeline
}

func NewLogContactAttemptCommandHandler(uowFactory UoWFactory, pipeline *MutationPipeline) LogContactAttemptCommandHandler {
	return LogContactAttemptCommandHandler{
		uowFactory: uowFactory,
		pipeline:   pipeline,
	}
}

func (h *LogContactAttemptCommandHandler) Handle(ctx context.Context, cmd LogContactAttemptCommand) (MutationResult, error) {
	if err := cmd.Validate(); err != nil {
		return MutationResult{}, err
	}
	ctx = context.WithoutCancel(ctx)

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
	if err = after.RecordContact(cmd.Role()); err != nil {
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
