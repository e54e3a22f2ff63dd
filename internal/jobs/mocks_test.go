package jobs_test

import (
	"context"
	"time"

	"orderflow/internal/core/application/usecases/commands"

	"github.com/stretchr/testify/mock"
)

type MockJobLock struct{ mock.Mock }

func (m *MockJobLock) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	args := m.Called(ctx, key, ttl)
	release, _ := args.Get(0).(func(context.Context) error)
	return release, args.Bool(1), args.Error(2)
}

type MockReconcileHandler struct{ mock.Mock }

func (m *MockReconcileHandler) Handle(
	ctx context.Context,
	cmd commands.ReconcileProviderRegistrationsCommand,
) (commands.ReconcileResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.ReconcileResult), args.Error(1)
}

type MockRelayHandler struct{ mock.Mock }

func (m *MockRelayHandler) Handle(ctx context.Context, cmd commands.RelayOutboxEventsCommand) (commands.RelayResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.RelayResult), args.Error(1)
}

func anyRelayCommand() any {
	return mock.AnythingOfType("commands.RelayOutboxEventsCommand")
}
