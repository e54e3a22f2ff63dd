// Package rotationrepo stores the follow-up rotation pointer in a single
// locked row.
package rotationrepo

import (
	"context"
	"fmt"
	"time"

	"orderflow/internal/adapters/out/postgres/pgerrs"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	pointerID = 1
	resource  = "followup_rotation"
)

// PointerDTO is the only row of the followup_rotation table.
type PointerDTO struct {
	ID           int16      `gorm:"primaryKey"`
	LastWorkerID *uuid.UUID `gorm:"type:uuid"`
	UpdatedAt    time.Time
}

func (PointerDTO) TableName() string {
	return resource
}

// GormRotationRepository implements RotationRepository using GORM. It must run
// inside a transaction: the lock lives until commit or rollback.
type GormRotationRepository struct {
	db          *gorm.DB
	lockTimeout time.Duration
}

func NewGormRotationRepository(db *gorm.DB, lockTimeout time.Duration) *GormRotationRepository {
	return &GormRotationRepository{db: db, lockTimeout: lockTimeout}
}

// LockPointer upserts the pointer row, bounds the lock wait and locks it.
func (r *GormRotationRepository) LockPointer(ctx context.Context) (*kernel.UUID, error) {
	db := r.db.WithContext(ctx)

	if r.lockTimeout > 0 {
		stmt := fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())
		if err := db.Exec(stmt).Error; err != nil {
			return nil, pgerrs.Translate(resource, err)
		}
	}

	err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&PointerDTO{ID: pointerID, UpdatedAt: time.Now().UTC()}).Error
	if err != nil {
		return nil, pgerrs.Translate(resource, err)
	}

	var dto PointerDTO
	err = db.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate}).
		Where("id = ?", pointerID).
		Take(&dto).Error
	if err != nil {
		return nil, pgerrs.Translate(resource, err)
	}

	return kernel.FromNullable(dto.LastWorkerID)
}

func (r *GormRotationRepository) SavePointer(ctx context.Context, worker kernel.UUID) error {
	if err := worker.Validate(); err != nil {
		return err
	}
	id := worker.Google()
	return r.write(ctx, &id)
}

func (r *GormRotationRepository) Reset(ctx context.Context) error {
	return r.write(ctx, nil)
}

func (r *GormRotationRepository) write(ctx context.Context, worker *uuid.UUID) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_worker_id", "updated_at"}),
		}).
		Create(&PointerDTO{ID: pointerID, LastWorkerID: worker, UpdatedAt: time.Now().UTC()}).Error
	return pgerrs.Translate(resource, err)
}
