package commands

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/core/ports"

	"github.com/google/uuid"
)

type RelayResult struct {
	Fetched   int
	Published int
}

// RelayOutboxEventsCommandHandler moves committed outbox events to the broker.
// Events are published oldest first; the first publish failure stops the batch,
// the events published before it are marked and the rest stay pending.
type RelayOutboxEventsCommandHandler struct {
	uowFactory OutboxUoWFactory
	publisher  ports.EventPublisher
	clock      Clock
}

func NewRelayOutboxEventsCommandHandler(
	uowFactory OutboxUoWFactory,
	publisher ports.EventPublisher,
	clock Clock,
) RelayOutboxEventsCommandHandler {
	if clock == nil {
		clock = time.Now
	}
	return RelayOutboxEventsCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		clock:      clock,
	}
}

func (h *RelayOutboxEventsCommandHandler) Handle(ctx context.Context, cmd RelayOutboxEventsCommand) (RelayResult, error) {
	if err := cmd.Validate(); err != nil {
		return RelayResult{}, err
	}
	ctx = context.WithoutCancel(ctx)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return RelayResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	events, err := uow.OutboxRepository().FetchPending(ctx, cmd.BatchSize())
	if err != nil {
		return RelayResult{}, err
	}

	result := RelayResult{Fetched: len(events)}
	published := make([]uuid.UUID, 0, len(events))
	var publishErr error
	for _, event := range events {
		if err = h.publisher.Publish(ctx, event); err != nil {
			publishErr = fmt.Errorf("publish event %s: %w", event.ID(), err)
			break
		}
		published = append(published, event.ID())
	}

	if len(published) > 0 {
		if err = uow.OutboxRepository().MarkPublished(ctx, published, h.clock().UTC()); err != nil {
			return RelayResult{}, err
		}
	}
	if err = uow.Commit(ctx); err != nil {
		return RelayResult{}, err
	}

	result.Published = len(published)
	return result, publishErr
}
