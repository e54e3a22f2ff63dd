package commands

import (
	"context"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/outbox"

	"go.uber.org/zap"
)

type ReconcileResult struct {
	Attempted  int
	Registered int
	Failed     int
}

// ReconcileProviderRegistrationsCommandHandler re-runs the registration step for
// orders stuck without a provider order code. Each order is handled in its own
// transaction; a failing order is logged and left for the next run.
type ReconcileProviderRegistrationsCommandHandler struct {
	uowFactory UoWFactory
	pipeline   *MutationPipeline
	logger     *zap.Logger
}

func NewReconcileProviderRegistrationsCommandHandler(
	uowFactory UoWFactory,
	pipeline *MutationPipeline,
	log *zap.Logger,
) ReconcileProviderRegistrationsCommandHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return ReconcileProviderRegistrationsCommandHandler{
		uowFactory: uowFactory,
		pipeline:   pipeline,
		logger:     log.With(zap.String("component", "provider_reconciliation")),
	}
}

func (h *ReconcileProviderRegistrationsCommandHandler) Handle(
	ctx context.Context,
	cmd ReconcileProviderRegistrationsCommand,
) (ReconcileResult, error) {
	if err := cmd.Validate(); err != nil {
		return ReconcileResult{}, err
	}

	ids, err := h.pending(ctx, cmd.BatchSize())
	if err != nil {
		return ReconcileResult{}, err
	}

	var result ReconcileResult
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		result.Attempted++
		registered, regErr := h.register(ctx, id)
		if regErr != nil {
			result.Failed++
			h.logger.Warn("registration retry failed", zap.Int64("order_id", id), zap.Error(regErr))
			continue
		}
		if registered {
			result.Registered++
		}
	}
	return result, nil
}

func (h *ReconcileProviderRegistrationsCommandHandler) pending(ctx context.Context, limit int) ([]int64, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	ids, err := uow.OrderRepository().ListAwaitingRegistration(ctx, h.pipeline.ProviderID(), limit)
	if err != nil {
		return nil, err
	}
	return ids, uow.Commit(ctx)
}

func (h *ReconcileProviderRegistrationsCommandHandler) register(ctx context.Context, id int64) (bool, error) {
	ctx = context.WithoutCancel(ctx)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	current, err := uow.OrderRepository().GetForUpdate(ctx, id)
	if err != nil {
		return false, err
	}

	// another mutation may have registered or moved the order since listing
	before := current.Clone()
	if current.ProviderSync(before, h.pipeline.ProviderID()) != order.SyncRegister {
		return false, uow.Commit(ctx)
	}

	mutation, err := h.pipeline.Run(ctx, uow, Mutation{
		Before: before,
		After:  current,
		Event:  outbox.OrderUpdated,
	})
	if err != nil {
		return false, err
	}

	if err = h.pipeline.Commit(ctx, uow, mutation); err != nil {
		return false, err
	}
	return true, nil
}
