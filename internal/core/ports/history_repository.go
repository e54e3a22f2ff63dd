package ports

import (
	"context"

	"orderflow/internal/core/domain/model/history"
)

// HistoryRepository appends audit entries. Entries are never updated or
// deleted.
type HistoryRepository interface {
	Append(ctx context.Context, entries []*history.Entry) error
}
