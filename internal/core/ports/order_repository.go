package ports

import (
	"context"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
)

// OrderRepository defines the persistence contract for order aggregates and
// their line items.
type OrderRepository interface {
	// Add persists a new order with its items and assigns the generated ids
	// to the aggregate.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update persists the order row and reconciles its items: new lines are
	// inserted and receive ids, changed lines are updated, missing lines are
	// removed.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get retrieves an order with its items.
	Get(ctx context.Context, id int64) (*order.Order, error)

	// GetForUpdate retrieves an order and locks its row until the end of the
	// transaction.
	GetForUpdate(ctx context.Context, id int64) (*order.Order, error)

	// FindActiveForAgent returns the oldest order the agent owns in agent
	// status new. It serializes claims by the same agent for the rest of the
	// transaction. Returns errs.ErrObjectNotFound when there is none.
	FindActiveForAgent(ctx context.Context, agentID kernel.UUID) (*order.Order, error)

	// ClaimNextUnassigned atomically hands the oldest unowned new order to the
	// agent, skipping rows locked by concurrent claims. The returned order
	// already carries the agent. Returns errs.ErrObjectNotFound when the queue
	// is empty.
	ClaimNextUnassigned(ctx context.Context, agentID kernel.UUID) (*order.Order, error)

	// FindByProviderCode locks and returns the order registered with the
	// provider under code.
	FindByProviderCode(ctx context.Context, providerID int64, code string) (*order.Order, error)

	// ListAwaitingRegistration returns ids of orders assigned to the provider
	// that carry no provider order code, oldest first.
	ListAwaitingRegistration(ctx context.Context, providerID int64, limit int) ([]int64, error)
}
