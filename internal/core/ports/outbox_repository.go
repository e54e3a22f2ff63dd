package ports

import (
	"context"
	"time"

	"orderflow/internal/core/domain/model/outbox"

	"github.com/google/uuid"
)

// OutboxRepository stores domain events inside the mutation transaction until
// the relay publishes them.
type OutboxRepository interface {
	Enqueue(ctx context.Context, events ...*outbox.Event) error

	// FetchPending locks up to limit unpublished events, oldest first, skipping
	// events locked by another relay.
	FetchPending(ctx context.Context, limit int) ([]*outbox.Event, error)

	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// EventPublisher delivers outbox events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, event *outbox.Event) error
}
