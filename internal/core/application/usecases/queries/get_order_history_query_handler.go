package queries

import (
	"context"

	"gorm.io/gorm"
)

type GetOrderHistoryQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderHistoryQueryHandler(db *gorm.DB) GetOrderHistoryQueryHandler {
	return GetOrderHistoryQueryHandler{db: db}
}

// Handle returns an empty page for an unknown order.
func (h GetOrderHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderHistoryQuery,
) (HistoryPage, error) {
	if err := query.Validate(); err != nil {
		return HistoryPage{}, err
	}

	var total int64
	err := h.db.WithContext(ctx).
		Raw(`SELECT COUNT(*) FROM order_history WHERE order_id = ?`, query.OrderID()).
		Scan(&total).Error
	if err != nil {
		return HistoryPage{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT`+historyColumns+`
		FROM order_history
		WHERE order_id = ?
		ORDER BY created_at DESC, position DESC
		LIMIT ? OFFSET ?
	`, query.OrderID(), query.Limit(), (query.Page()-1)*query.Limit()).Rows()
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
