package queries

import (
	"context"

	"gorm.io/gorm"
)

type SearchHistoryQueryHandler struct {
	db *gorm.DB
}

func NewSearchHistoryQueryHandler(db *gorm.DB) SearchHistoryQueryHandler {
	return SearchHistoryQueryHandler{db: db}
}

func (h SearchHistoryQueryHandler) Handle(
	ctx context.Context,
	query SearchHistoryQuery,
) (HistoryPage, error) {
	if err := query.Validate(); err != nil {
		return HistoryPage{}, err
	}

	scope := h.filtered(ctx, query.Filter())

	var total int64
	if err := scope.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return HistoryPage{}, err
	}

	rows, err := scope.Session(&gorm.Session{}).
		Select(historyColumns).
		Order("created_at DESC").
		Order("position DESC").
		Limit(query.Limit()).
		Offset((query.Page() - 1) * query.Limit()).
		Rows()
	if err != nil {
		return HistoryPage{}, err
	}
	defer rows.Close()

	entries, err := scanHistory(rows)
	if err != nil {
		return HistoryPage{}, err
	}
	return HistoryPage{
		Entries: entries,
		Page:    query.Page(),
		Limit:   query.Limit(),
		Total:   total,
	}, nil
}

func (h SearchHistoryQueryHandler) filtered(ctx context.Context, f HistoryFilter) *gorm.DB {
	tx := h.db.WithContext(ctx).
		Table("order_history").
		Where("target_type = ? AND field = ?", f.TargetType, f.Field)
	if f.NewValue != nil {
		tx = tx.Where("new_value = ?", *f.NewValue)
	}
	if f.From != nil {
		tx = tx.Where("created_at >= ?", *f.From)
	}
	if f.To != nil {
		tx = tx.Where("created_at < ?", *f.To)
	}
	return tx
}
