package outbox

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
)

// Type names a domain event published to the broker.
type Type string

const (
	OrderCreated               Type = "order.created"
	OrderUpdated               Type = "order.updated"
	OrderClaimed               Type = "order.claimed"
	OrderFollowupAssigned      Type = "order.followup_assigned"
	OrderDeliveryStatusChanged Type = "order.delivery_status_changed"
)

func (t Type) Validate() error {
	switch t {
	case OrderCreated, OrderUpdated, OrderClaimed, OrderFollowupAssigned, OrderDeliveryStatusChanged:
		return nil
	}
	return errs.NewValueIsInvalidErrorWithCause("event type", fmt.Errorf("%q is not a known event", string(t)))
}

// Event is a domain event waiting in the outbox.
type Event struct {
	id          uuid.UUID
	eventType   Type
	orderID     int64
	payload     []byte
	occurredAt  time.Time
	publishedAt *time.Time
}

// NewEvent marshals payload and stamps the event.
func NewEvent(eventType Type, orderID int64, payload any, now time.Time) (*Event, error) {
	if err := eventType.Validate(); err != nil {
		return nil, err
	}
	if orderID <= 0 {
		return nil, errs.NewValueIsRequiredError("order id")
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Join(errs.NewValueIsInvalidError("payload"), err)
	}

	return &Event{
		id:         uuid.New(),
		eventType:  eventType,
		orderID:    orderID,
		payload:    raw,
		occurredAt: now.UTC(),
	}, nil
}

// RestoreEvent rebuilds an event read from storage.
func RestoreEvent(id uuid.UUID, eventType Type, orderID int64, payload []byte, occurredAt time.Time, publishedAt *time.Time) *Event {
	return &Event{
		id:          id,
		eventType:   eventType,
		orderID:     orderID,
		payload:     payload,
		occurredAt:  occurredAt,
		publishedAt: publishedAt,
	}
}

func (e *Event) ID() uuid.UUID           { return e.id }
func (e *Event) Type() Type              { return e.eventType }
func (e *Event) OrderID() int64          { return e.orderID }
func (e *Event) Payload() []byte         { return e.payload }
func (e *Event) OccurredAt() time.Time   { return e.occurredAt }
func (e *Event) PublishedAt() *time.Time { return e.publishedAt }
