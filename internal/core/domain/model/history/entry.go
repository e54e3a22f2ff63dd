package history

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

var ErrEntryIsNotConstructed = errors.New("Entry must be created via a Batch or RestoreEntry")

// Entry is one immutable audit row: a single field transition of one entity.
type Entry struct {
	id         uuid.UUID
	batchID    uuid.UUID
	position   int
	targetType TargetType
	targetID   int64
	orderID    int64
	field      string
	oldValue   string
	newValue   string
	actorID    *kernel.UUID
	event      Event
	createdAt  time.Time

	isConstructed bool
}

// RestoreEntry rebuilds an entry read from storage.
func RestoreEntry(
	id, batchID uuid.UUID,
	position int,
	targetType TargetType,
	targetID, orderID int64,
	change Change,
	actorID *kernel.UUID,
	event Event,
	createdAt time.Time,
) (*Entry, error) {
	if err := errors.Join(targetType.Validate(), event.Validate()); err != nil {
		return nil, err
	}
	return &Entry{
		id:            id,
		batchID:       batchID,
		position:      position,
		targetType:    targetType,
		targetID:      targetID,
		orderID:       orderID,
		field:         change.Field,
		oldValue:      change.Old,
		newValue:      change.New,
		actorID:       actorID,
		event:         event,
		createdAt:     createdAt,
		isConstructed: true,
	}, nil
}

func (e *Entry) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEntryIsNotConstructed
	}
	return nil
}

func (e *Entry) ID() uuid.UUID          { return e.id }
func (e *Entry) BatchID() uuid.UUID     { return e.batchID }
func (e *Entry) Position() int          { return e.position }
func (e *Entry) TargetType() TargetType { return e.targetType }
func (e *Entry) TargetID() int64        { return e.targetID }
func (e *Entry) OrderID() int64         { return e.orderID }
func (e *Entry) Field() string          { return e.field }
func (e *Entry) OldValue() string       { return e.oldValue }
func (e *Entry) NewValue() string       { return e.newValue }
func (e *Entry) ActorID() *kernel.UUID  { return e.actorID }
func (e *Entry) Event() Event           { return e.event }
func (e *Entry) CreatedAt() time.Time   { return e.createdAt }
