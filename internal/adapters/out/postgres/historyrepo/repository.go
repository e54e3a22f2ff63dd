package historyrepo

import (
	"context"

	"orderflow/internal/adapters/out/postgres/pgerrs"
	"orderflow/internal/core/domain/model/history"

	"gorm.io/gorm"
)

const insertBatchSize = 100

// GormHistoryRepository implements HistoryRepository using GORM.
type GormHistoryRepository struct {
	db *gorm.DB
}

func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append inserts entries. It never updates existing rows.
func (r *GormHistoryRepository) Append(ctx context.Context, entries []*history.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	dtos := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		if err := e.Validate(); err != nil {
			return err
		}
		dtos = append(dtos, fromDomain(e))
	}

	err := r.db.WithContext(ctx).CreateInBatches(&dtos, insertBatchSize).Error
	return pgerrs.Translate("order_history", err)
}
