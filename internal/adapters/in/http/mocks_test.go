package http

import (
	"context"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"

	"github.com/stretchr/testify/mock"
)

type MockCreateOrderHandler struct{ mock.Mock }

func (m *MockCreateOrderHandler) Handle(ctx context.Context, cmd commands.CreateOrderCommand) (commands.MutationResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.MutationResult), args.Error(1)
}

type MockUpdateOrderHandler struct{ mock.Mock }

func (m *MockUpdateOrderHandler) Handle(ctx context.Context, cmd commands.UpdateOrderCommand) (commands.MutationResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.MutationResult), args.Error(1)
}

type MockClaimNextOrderHandler struct{ mock.Mock }

func (m *MockClaimNextOrderHandler) Handle(ctx context.Context, cmd commands.ClaimNextOrderCommand) (commands.ClaimResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.ClaimResult), args.Error(1)
}

type MockLogContactAttemptHandler struct{ mock.Mock }

func (m *MockLogContactAttemptHandler) Handle(ctx context.Context, cmd commands.LogContactAttemptCommand) (commands.MutationResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.MutationResult), args.Error(1)
}

type MockApplyDeliveryStatusHandler struct{ mock.Mock }

func (m *MockApplyDeliveryStatusHandler) Handle(
	ctx context.Context,
	cmd commands.ApplyDeliveryStatusCommand,
) (commands.ApplyDeliveryStatusResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.ApplyDeliveryStatusResult), args.Error(1)
}

type MockResetFollowupRotationHandler struct{ mock.Mock }

func (m *MockResetFollowupRotationHandler) Handle(ctx context.Context, cmd commands.ResetFollowupRotationCommand) error {
	args := m.Called(ctx, cmd)
	return args.Error(0)
}

type MockGetOrderHandler struct{ mock.Mock }

func (m *MockGetOrderHandler) Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.OrderView), args.Error(1)
}

type MockGetOrderHistoryHandler struct{ mock.Mock }

func (m *MockGetOrderHistoryHandler) Handle(ctx context.Context, query queries.GetOrderHistoryQuery) (queries.HistoryPage, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.HistoryPage), args.Error(1)
}

type MockSearchHistoryHandler struct{ mock.Mock }

func (m *MockSearchHistoryHandler) Handle(ctx context.Context, query queries.SearchHistoryQuery) (queries.HistoryPage, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.HistoryPage), args.Error(1)
}
