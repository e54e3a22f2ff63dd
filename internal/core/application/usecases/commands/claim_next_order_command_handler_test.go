package commands_test

import (
	"errors"
	"testing"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/history"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/outbox"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newClaimCommand(t *testing.T, agent kernel.UUID) commands.ClaimNextOrderCommand {
	t.Helper()
	cmd, err := commands.NewClaimNextOrderCommand(agent, order.RoleAgent, []string{commands.CapabilityUpdateOrders})
	require.NoError(t, err)
	return cmd
}

func TestClaimNextOrderCommandHandler_Handle_AlreadyHeld(t *testing.T) {
	ctx := t.Context()
	agent := kernel.NewUUID()
	held := storedOrder(func(s *order.State) { s.AgentID = &agent })

	d := newDeps()
	mock.InOrder(
		d.factory.On("Create").Return(d.uow).Once(),
		d.uow.On("Begin", mock.Anything).Return(nil).Once(),
		d.uow.On("OrderRepository").Return(d.repo).Once(),
		d.repo.On("FindActiveForAgent", mock.Anything, agent).Return(held, nil).Once(),
		d.uow.On("Commit", mock.Anything).Return(nil).Once(),
		d.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	h := commands.NewClaimNextOrderCommandHandler(d.factory, d.pipeline, nil)
	result, err := h.Handle(ctx, newClaimCommand(t, agent))

	require.NoError(t, err)
	assert.Equal(t, commands.ClaimAlreadyHeld, result.Outcome)
	assert.Same(t, held, result.Order)
	d.repo.AssertNotCalled(t, "ClaimNextUnassigned", mock.Anything, mock.Anything)
	d.assertExpectations(t)
}

func TestClaimNextOrderCommandHandler_Handle_NoneAvailable(t *testing.T) {
	ctx := t.Context()
	agent := kernel.NewUUID()
	reg := prometheus.NewRegistry()

	d := newDeps()
	mock.InOrder(
		d.factory.On("Create").Return(d.uow).Once(),
		d.uow.On("Begin", mock.Anything).Return(nil).Once(),
		d.uow.On("OrderRepository").Return(d.repo).Once(),
		d.repo.On("FindActiveForAgent", mock.Anything, agent).
			Return(nil, errs.NewObjectNotFoundError("order", agent.String())).Once(),
		d.repo.On("ClaimNextUnassigned", mock.Anything, agent).
			Return(nil, errs.NewObjectNotFoundError("order", "unassigned")).Once(),
		d.uow.On("Commit", mock.Anything).Return(nil).Once(),
		d.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	h := commands.NewClaimNextOrderCommandHandler(d.factory, d.pipeline, metrics.NewEngineMetrics(reg))
	result, err := h.Handle(ctx, newClaimCommand(t, agent))

	require.NoError(t, err)
	assert.Equal(t, commands.ClaimNoneAvailable, result.Outcome)
	assert.Nil(t, result.Order)

	count, err := testutil.GatherAndCount(reg, "orderflow_claims_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	d.assertExpectations(t)
}

func TestClaimNextOrderCommandHandler_Handle_Claimed(t *testing.T) {
	ctx := t.Context()
	agent := kernel.NewUUID()
	claimed := storedOrder(func(s *order.State) { s.AgentID = &agent })

	d := newDeps()
	var appended []*history.Entry
	mock.InOrder(
		d.factory.On("Create").Return(d.uow).Once(),
		d.uow.On("Begin", mock.Anything).Return(nil).Once(),
		d.uow.On("OrderRepository").Return(d.repo).Once(),
		d.repo.On("FindActiveForAgent", mock.Anything, agent).
			Return(nil, errs.NewObjectNotFoundError("order", agent.String())).Once(),
		d.repo.On("ClaimNextUnassigned", mock.Anything, agent).Return(claimed, nil).Once(),
		d.uow.On("OrderRepository").Return(d.repo).Once(),
		d.repo.On("Update", mock.Anything, claimed).Return(nil).Once(),
		d.uow.On("HistoryRepository").Return(d.history).Once(),
		d.history.On("Append", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			appended = args.Get(1).([]*history.Entry)
		}).Return(nil).Once(),
		d.uow.On("OutboxRepository").Return(d.outbox).Once(),
		d.outbox.On("Enqueue", mock.Anything, eventsOf(outbox.OrderClaimed)).Return(nil).Once(),
		d.uow.On("Commit", mock.Anything).Return(nil).Once(),
		d.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	h := commands.NewClaimNextOrderCommandHandler(d.factory, d.pipeline, nil)
	result, err := h.Handle(ctx, newClaimCommand(t, agent))

	require.NoError(t, err)
	assert.Equal(t, commands.ClaimClaimed, result.Outcome)
	assert.True(t, result.Order.AgentID().IsEqual(agent))

	require.Len(t, appended, 1)
	assert.Equal(t, "agent_id", appended[0].Field())
	assert.Empty(t, appended[0].OldValue())
	assert.Equal(t, agent.String(), appended[0].NewValue())
	assert.Equal(t, history.EventUpdated, appended[0].Event())
	assert.True(t, appended[0].ActorID().IsEqual(agent))
	d.assertExpectations(t)
}

func TestClaimNextOrderCommandHandler_Handle_RepositoryError(t *testing.T) {
	ctx := t.Context()
	agent := kernel.NewUUID()

	d := newDeps()
	mock.InOrder(
		d.factory.On("Create").Return(d.uow).Once(),
		d.uow.On("Begin", mock.Anything).Return(nil).Once(),
		d.uow.On("OrderRepository").Return(d.repo).Once(),
		d.repo.On("FindActiveForAgent", mock.Anything, agent).Return(nil, errors.New("connection reset")).Once(),
		d.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	h := commands.NewClaimNextOrderCommandHandler(d.factory, d.pipeline, nil)
	_, err := h.Handle(ctx, newClaimCommand(t, agent))

	require.EqualError(t, err, "connection reset")
	d.assertExpectations(t)
}

func TestClaimOutcome_String(t *testing.T) {
	assert.Equal(t, "already_held", commands.ClaimAlreadyHeld.String())
	assert.Equal(t, "claimed", commands.ClaimClaimed.String())
	assert.Equal(t, "none_available", commands.ClaimNoneAvailable.String())
}
