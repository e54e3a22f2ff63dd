package queries

import (
	"errors"
	"strings"
	"time"

	"orderflow/internal/core/domain/model/history"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrSearchHistoryQueryIsNotConstructed = errors.New(
	"SearchHistoryQuery must be created via NewSearchHistoryQuery constructor",
)

// HistoryFilter selects entries by what changed. TargetType and Field are
// required; the rest narrow the search when set.
type HistoryFilter struct {
	TargetType string
	Field      string
	NewValue   *string
	From       *time.Time
	To         *time.Time
}

// SearchHistoryQuery answers questions like "which orders moved to
// delivered last week" across all orders.
type SearchHistoryQuery struct {
	filter HistoryFilter
	page   int
	limit  int

	guard guard.ConstructorGuard
}

func NewSearchHistoryQuery(filter HistoryFilter, page, limit int) (SearchHistoryQuery, error) {
	filter.TargetType = strings.TrimSpace(filter.TargetType)
	filter.Field = strings.TrimSpace(filter.Field)

	if filter.TargetType == "" {
		return SearchHistoryQuery{}, errs.NewValueIsRequiredError("target_type")
	}
	if err := history.TargetType(filter.TargetType).Validate(); err != nil {
		return SearchHistoryQuery{}, err
	}
	if filter.Field == "" {
		return SearchHistoryQuery{}, errs.NewValueIsRequiredError("field")
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return SearchHistoryQuery{}, errs.NewValueIsInvalidError("to")
	}
	if err := validatePage(page, limit); err != nil {
		return SearchHistoryQuery{}, err
	}

	return SearchHistoryQuery{
		filter: filter,
		page:   page,
		limit:  limit,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (q SearchHistoryQuery) Validate() error {
	return q.guard.Validate(ErrSearchHistoryQueryIsNotConstructed)
}

func (q SearchHistoryQuery) Filter() HistoryFilter { return q.filter }
func (q SearchHistoryQuery) Page() int             { return q.page }
func (q SearchHistoryQuery) Limit() int            { return q.limit }
