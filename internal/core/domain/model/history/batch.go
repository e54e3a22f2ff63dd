package history

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// Batch collects the entries written by one mutation. It is not safe for
// concurrent use; a mutation runs on a single goroutine.
type Batch struct {
	id        uuid.UUID
	actorID   *kernel.UUID
	createdAt time.Time
	position  int
}

// NewBatch starts a batch for actor; a nil actor marks a system action.
func NewBatch(actorID *kernel.UUID, now time.Time) *Batch {
	return &Batch{
		id:        uuid.New(),
		actorID:   actorID,
		createdAt: now.UTC(),
	}
}

func (b *Batch) ID() uuid.UUID { return b.id }

// Record turns changes of one entity into entries, continuing the batch positions.
func (b *Batch) Record(
	targetType TargetType,
	targetID, orderID int64,
	event Event,
	changes []Change,
) []*Entry {
	entries := make([]*Entry, 0, len(changes))
	for _, change := range changes {
		b.position++
		entries = append(entries, &Entry{
			id:            uuid.New(),
			batchID:       b.id,
			position:      b.position,
			targetType:    targetType,
			targetID:      targetID,
			orderID:       orderID,
			field:         change.Field,
			oldValue:      change.Old,
			newValue:      change.New,
			actorID:       b.actorID,
			event:         event,
			createdAt:     b.createdAt,
			isConstructed: true,
		})
	}
	return entries
}
