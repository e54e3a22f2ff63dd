// Package historyrepo appends audit entries to the order_history table.
package historyrepo

import (
	"time"

	"orderflow/internal/core/domain/model/history"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// EntryDTO is the row of the order_history table.
type EntryDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BatchID    uuid.UUID `gorm:"type:uuid"`
	Position   int
	TargetType string
	TargetID   int64
	OrderID    int64
	Field      string
	OldValue   string
	NewValue   string
	ActorID    *uuid.UUID `gorm:"type:uuid"`
	Event      string
	CreatedAt  time.Time `gorm:"autoCreateTime:false"`
}

func (EntryDTO) TableName() string {
	return "order_history"
}

func fromDomain(e *history.Entry) EntryDTO {
	return EntryDTO{
		ID:         e.ID(),
		BatchID:    e.BatchID(),
		Position:   e.Position(),
		TargetType: string(e.TargetType()),
		TargetID:   e.TargetID(),
		OrderID:    e.OrderID(),
		Field:      e.Field(),
		OldValue:   e.OldValue(),
		NewValue:   e.NewValue(),
		ActorID:    kernel.ToNullable(e.ActorID()),
		Event:      e.Event().String(),
		CreatedAt:  e.CreatedAt(),
	}
}

// ToDomain rebuilds an entry from its row.
func ToDomain(dto EntryDTO) (*history.Entry, error) {
	event, err := history.ParseEvent(dto.Event)
	if err != nil {
		return nil, err
	}
	actor, err := kernel.FromNullable(dto.ActorID)
	if err != nil {
		return nil, err
	}
	return history.RestoreEntry(
		dto.ID, dto.BatchID, dto.Position,
		history.TargetType(dto.TargetType), dto.TargetID, dto.OrderID,
		history.Change{Field: dto.Field, Old: dto.OldValue, New: dto.NewValue},
		actor, event, dto.CreatedAt,
	)
}
