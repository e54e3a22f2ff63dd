package commands

import (
	"context"
	"errors"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/outbox"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/metrics"
)

// ClaimOutcome tells the agent what the claim queue did.
type ClaimOutcome int

const (
	ClaimNoneAvailable ClaimOutcome = iota
	ClaimAlreadyHeld
	ClaimClaimed
)

func (o ClaimOutcome) String() string {
	switch o {
	case ClaimAlreadyHeld:
		return "already_held"
	case ClaimClaimed:
		return "claimed"
	case ClaimNoneAvailable:
		return "none_available"
	}
	return "none_available"
}

type ClaimResult struct {
	Outcome ClaimOutcome
	// Order is nil when Outcome is ClaimNoneAvailable.
	Order *order.Order
}

// ClaimNextOrderCommandHandler hands out orders one at a time. An agent keeps
// the order it holds until it leaves the new status; otherwise the oldest
// unowned new order is claimed atomically, skipping rows other agents are
// claiming at the same moment.
type ClaimNextOrderCommandHandler struct {
	uowFactory UoWFactory
	pipeline   *MutationPipeline
	metrics    *metrics.EngineMetrics
}

func NewClaimNextOrderCommandHandler(
	uowFactory UoWFactory,
	pipeline *MutationPipeline,
	engineMetrics *metrics.EngineMetrics,
) ClaimNextOrderCommandHandler {
	return ClaimNextOrderCommandHandler{
		uowFactory: uowFactory,
		pipeline:   pipeline,
		metrics:    engineMetrics,
	}
}

func (h *ClaimNextOrderCommandHandler) Handle(ctx context.Context, cmd ClaimNextOrderCommand) (ClaimResult, error) {
	if err := cmd.Validate(); err != nil {
		return ClaimResult{}, err
	}
	ctx = context.WithoutCancel(ctx)
	agent := cmd.AgentID()

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ClaimResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OrderRepository()

	held, err := repo.FindActiveForAgent(ctx, agent)
	switch {
	case err == nil:
		if err = uow.Commit(ctx); err != nil {
			return ClaimResult{}, err
		}
		h.metrics.IncClaim(ClaimAlreadyHeld.String())
		return ClaimResult{Outcome: ClaimAlreadyHeld, Order: held}, nil
	case !errors.Is(err, errs.ErrObjectNotFound):
		return ClaimResult{}, err
	}

	claimed, err := repo.ClaimNextUnassigned(ctx, agent)
	if errors.Is(err, errs.ErrObjectNotFound) {
		if err = uow.Commit(ctx); err != nil {
			return ClaimResult{}, err
		}
		h.metrics.IncClaim(ClaimNoneAvailable.String())
		return ClaimResult{Outcome: ClaimNoneAvailable}, nil
	}
	if err != nil {
		return ClaimResult{}, err
	}

	// the claim already wrote agent_id; the pipeline sees the unowned row as before
	state := claimed.Snapshot()
	state.AgentID = nil
	before := order.Restore(state)

	result, err := h.pipeline.Run(ctx, uow, Mutation{
		Before: before,
		After:  claimed,
		Actor:  &agent,
		Event:  outbox.OrderClaimed,
	})
	if err != nil {
		return ClaimResult{}, err
	}

	if err = h.pipeline.Commit(ctx, uow, result); err != nil {
		return ClaimResult{}, err
	}

	h.metrics.IncClaim(ClaimClaimed.String())
	return ClaimResult{Outcome: ClaimClaimed, Order: result.Order}, nil
}
