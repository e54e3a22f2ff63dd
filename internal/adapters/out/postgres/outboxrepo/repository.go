// Package outboxrepo stores domain events in the outbox_events table.
package outboxrepo

import (
	"context"
	"time"

	"orderflow/internal/adapters/out/postgres/pgerrs"
	"orderflow/internal/core/domain/model/outbox"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventDTO is the row of the outbox_events table.
type EventDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	EventType   string
	OrderID     int64
	Payload     []byte `gorm:"type:jsonb"`
	OccurredAt  time.Time
	PublishedAt *time.Time
}

func (EventDTO) TableName() string {
	return "outbox_events"
}

// GormOutboxRepository implements OutboxRepository using GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

func (r *GormOutboxRepository) Enqueue(ctx context.Context, events ...*outbox.Event) error {
	if len(events) == 0 {
		return nil
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventDTO{
			ID:         e.ID(),
			EventType:  string(e.Type()),
			OrderID:    e.OrderID(),
			Payload:    e.Payload(),
			OccurredAt: e.OccurredAt(),
		})
	}
	return pgerrs.Translate("outbox_events", r.db.WithContext(ctx).Create(&dtos).Error)
}

// FetchPending locks pending events; other relays skip them until commit.
func (r *GormOutboxRepository) FetchPending(ctx context.Context, limit int) ([]*outbox.Event, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("limit", limit, 1, nil)
	}

	var dtos []EventDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate, Options: clause.LockingOptionsSkipLocked}).
		Where("published_at IS NULL").
		Order("occurred_at, id").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, pgerrs.Translate("outbox_events", err)
	}

	events := make([]*outbox.Event, 0, len(dtos))
	for _, dto := range dtos {
		events = append(events, outbox.RestoreEvent(
			dto.ID, outbox.Type(dto.EventType), dto.OrderID, dto.Payload, dto.OccurredAt, dto.PublishedAt,
		))
	}
	return events, nil
}

func (r *GormOutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&EventDTO{}).
		Where("id IN ?", ids).
		Update("published_at", at.UTC()).Error
	return pgerrs.Translate("outbox_events", err)
}
