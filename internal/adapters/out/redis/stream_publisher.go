package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"orderflow/internal/core/domain/model/outbox"
	"orderflow/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

const DefaultStream = "orderflow:order-events"

type streamStore interface {
	XAdd(ctx context.Context, a *goredis.XAddArgs) *goredis.StringCmd
}

// StreamPublisher appends outbox events to a Redis stream. Consumers dedupe
// on event_id since a relay crash between XADD and MarkPublished republishes.
type StreamPublisher struct {
	store  streamStore
	stream string
	maxLen int64
}

var _ ports.EventPublisher = (*StreamPublisher)(nil)

// NewStreamPublisher trims the stream to roughly maxLen entries; zero keeps
// every entry.
func NewStreamPublisher(store streamStore, stream string, maxLen int64) (*StreamPublisher, error) {
	if store == nil {
		return nil, errors.New("redis client required for stream publisher")
	}
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPublisher{store: store, stream: stream, maxLen: maxLen}, nil
}

func (p *StreamPublisher) Publish(ctx context.Context, event *outbox.Event) error {
	if event == nil {
		return errors.New("event is nil")
	}

	args := &goredis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event_id":    event.ID().String(),
			"type":        string(event.Type()),
			"order_id":    strconv.FormatInt(event.OrderID(), 10),
			"payload":     string(event.Payload()),
			"occurred_at": event.OccurredAt().UTC().Format(time.RFC3339Nano),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.store.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}
	return nil
}
