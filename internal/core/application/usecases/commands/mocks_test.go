package commands_test

import (
	"context"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/history"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/outbox"
	"orderflow/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const integratedProvider int64 = 7

var fixedNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) GetForUpdate(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) FindActiveForAgent(ctx context.Context, agentID kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, agentID)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ClaimNextUnassigned(ctx context.Context, agentID kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, agentID)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) FindByProviderCode(ctx context.Context, providerID int64, code string) (*order.Order, error) {
	args := m.Called(ctx, providerID, code)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) ListAwaitingRegistration(ctx context.Context, providerID int64, limit int) ([]int64, error) {
	args := m.Called(ctx, providerID, limit)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

type MockHistoryRepository struct{ mock.Mock }

func (m *MockHistoryRepository) Append(ctx context.Context, entries []*history.Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

type MockRotationRepository struct{ mock.Mock }

func (m *MockRotationRepository) LockPointer(ctx context.Context) (*kernel.UUID, error) {
	args := m.Called(ctx)
	last, _ := args.Get(0).(*kernel.UUID)
	return last, args.Error(1)
}

func (m *MockRotationRepository) SavePointer(ctx context.Context, worker kernel.UUID) error {
	args := m.Called(ctx, worker)
	return args.Error(0)
}

func (m *MockRotationRepository) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Enqueue(ctx context.Context, events ...*outbox.Event) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

func (m *MockOutboxRepository) FetchPending(ctx context.Context, limit int) ([]*outbox.Event, error) {
	args := m.Called(ctx, limit)
	events, _ := args.Get(0).([]*outbox.Event)
	return events, args.Error(1)
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	args := m.Called(ctx, ids, at)
	return args.Error(0)
}

type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) HistoryRepository() ports.HistoryRepository {
	args := m.Called()
	return args.Get(0).(ports.HistoryRepository)
}

func (m *MockUoW) RotationRepository() ports.RotationRepository {
	args := m.Called()
	return args.Get(0).(ports.RotationRepository)
}

func (m *MockUoW) OutboxRepository() ports.OutboxRepository {
	args := m.Called()
	return args.Get(0).(ports.OutboxRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockRotationUoWFactory struct{ mock.Mock }

func (m *MockRotationUoWFactory) Create() commands.RotationUoW {
	args := m.Called()
	return args.Get(0).(commands.RotationUoW)
}

type MockOutboxUoWFactory struct{ mock.Mock }

func (m *MockOutboxUoWFactory) Create() commands.OutboxUoW {
	args := m.Called()
	return args.Get(0).(commands.OutboxUoW)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, event *outbox.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) Product(ctx context.Context, id int64) (ports.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.Product), args.Error(1)
}

func (m *MockCatalog) LocationExists(ctx context.Context, city, area string) (bool, error) {
	args := m.Called(ctx, city, area)
	return args.Bool(0), args.Error(1)
}

type MockDirectory struct{ mock.Mock }

func (m *MockDirectory) ActiveFollowupWorkers(ctx context.Context) ([]kernel.UUID, error) {
	args := m.Called(ctx)
	roster, _ := args.Get(0).([]kernel.UUID)
	return roster, args.Error(1)
}

type MockDeliveryProvider struct {
	mock.Mock
	id int64
}

func (m *MockDeliveryProvider) ID() int64 { return m.id }

func (m *MockDeliveryProvider) Register(ctx context.Context, o *order.Order) (ports.RegisterResult, error) {
	args := m.Called(ctx, o)
	return args.Get(0).(ports.RegisterResult), args.Error(1)
}

func (m *MockDeliveryProvider) Deregister(ctx context.Context, code string) (ports.DeregisterResult, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(ports.DeregisterResult), args.Error(1)
}

// deps bundles the collaborators of one handler test.
type deps struct {
	repo      *MockOrderRepository
	history   *MockHistoryRepository
	rotation  *MockRotationRepository
	outbox    *MockOutboxRepository
	uow       *MockUoW
	factory   *MockUoWFactory
	catalog   *MockCatalog
	directory *MockDirectory
	provider  *MockDeliveryProvider
	pipeline  *commands.MutationPipeline
}

func newDeps() *deps {
	d := &deps{
		repo:      new(MockOrderRepository),
		history:   new(MockHistoryRepository),
		rotation:  new(MockRotationRepository),
		outbox:    new(MockOutboxRepository),
		uow:       new(MockUoW),
		factory:   new(MockUoWFactory),
		catalog:   new(MockCatalog),
		directory: new(MockDirectory),
		provider:  &MockDeliveryProvider{id: integratedProvider},
	}
	d.pipeline = commands.NewMutationPipeline(d.catalog, d.directory, d.provider, nil, zap.NewNop(),
		func() time.Time { return fixedNow })
	return d
}

func (d *deps) assertExpectations(t mock.TestingT) {
	d.repo.AssertExpectations(t)
	d.history.AssertExpectations(t)
	d.rotation.AssertExpectations(t)
	d.outbox.AssertExpectations(t)
	d.uow.AssertExpectations(t)
	d.factory.AssertExpectations(t)
	d.catalog.AssertExpectations(t)
	d.directory.AssertExpectations(t)
	d.provider.AssertExpectations(t)
}

// wireRepositories lets the unit of work hand out its repositories any number of times.
func (d *deps) wireRepositories() {
	d.uow.On("OrderRepository").Return(d.repo).Maybe()
	d.uow.On("HistoryRepository").Return(d.history).Maybe()
	d.uow.On("RotationRepository").Return(d.rotation).Maybe()
	d.uow.On("OutboxRepository").Return(d.outbox).Maybe()
}

func product(id int64, price int64) ports.Product {
	return ports.Product{ID: id, Price: decimal.NewFromInt(price)}
}

// storedOrder returns an order as loaded from storage: id 42 with one line 420.
func storedOrder(mutate func(s *order.State)) *order.Order {
	s := order.State{
		ID:             42,
		Customer:       order.Customer{Name: "Nadia", Phone: "0551234567", City: "Oran", Area: "Bir El Djir"},
		AgentStatus:    order.AgentNew,
		FollowupStatus: order.FollowupNew,
		DeliveryStatus: order.DeliveryNew,
		CreatedAt:      fixedNow.Add(-time.Hour),
		Items:          []*order.Item{order.RestoreItem(420, 1, nil, decimal.NewFromInt(1500), 1)},
	}
	if mutate != nil {
		mutate(&s)
	}
	return order.Restore(s)
}

// assignIDs mimics the database issuing ids on insert.
func assignIDs(args mock.Arguments) {
	o := args.Get(1).(*order.Order)
	_ = o.AssignIdentity(1)
	for i, it := range o.Items() {
		_ = it.AssignIdentity(int64(100 + i))
	}
}

func entriesWith(field string) any {
	return mock.MatchedBy(func(entries []*history.Entry) bool {
		for _, e := range entries {
			if e.Field() == field {
				return true
			}
		}
		return false
	})
}

func eventsOf(types ...outbox.Type) any {
	return mock.MatchedBy(func(events []*outbox.Event) bool {
		if len(events) != len(types) {
			return false
		}
		for i, e := range events {
			if e.Type() != types[i] {
				return false
			}
		}
		return true
	})
}
