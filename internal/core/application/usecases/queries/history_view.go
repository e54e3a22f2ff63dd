package queries

import (
	"database/sql"
	"math"
	"time"

	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type HistoryEntryView struct {
	ID         uuid.UUID
	BatchID    uuid.UUID
	Position   int
	TargetType string
	TargetID   int64
	OrderID    int64
	Field      string
	OldValue   string
	NewValue   string
	ActorID    *uuid.UUID
	Event      string
	CreatedAt  time.Time
}

// HistoryPage is one page of history entries, newest first.
type HistoryPage struct {
	Entries []HistoryEntryView
	Page    int
	Limit   int
	Total   int64
}

func validatePage(page, limit int) error {
	if page < 1 {
		return errs.NewValueIsOutOfRangeError("page", page, 1, math.MaxInt)
	}
	if limit < 1 || limit > MaxPageLimit {
		return errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxPageLimit)
	}
	return nil
}

func scanHistory(rows *sql.Rows) ([]HistoryEntryView, error) {
	entries := make([]HistoryEntryView, 0)
	for rows.Next() {
		var e HistoryEntryView
		err := rows.Scan(
			&e.ID,
			&e.BatchID,
			&e.Position,
			&e.TargetType,
			&e.TargetID,
			&e.OrderID,
			&e.Field,
			&e.OldValue,
			&e.NewValue,
			&e.ActorID,
			&e.Event,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const historyColumns = `
	id,
	batch_id,
	position,
	target_type,
	target_id,
	order_id,
	field,
	old_value,
	new_value,
	actor_id,
	event,
	created_at`
