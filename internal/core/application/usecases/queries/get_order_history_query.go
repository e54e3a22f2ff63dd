package queries

import (
	"errors"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"
)

var ErrGetOrderHistoryQueryIsNotConstructed = errors.New(
	"GetOrderHistoryQuery must be created via NewGetOrderHistoryQuery constructor",
)

// GetOrderHistoryQuery pages through every history entry of one order,
// item entries included.
type GetOrderHistoryQuery struct {
	orderID int64
	page    int
	limit   int

	guard guard.ConstructorGuard
}

func NewGetOrderHistoryQuery(orderID int64, page, limit int) (GetOrderHistoryQuery, error) {
	if orderID <= 0 {
		return GetOrderHistoryQuery{}, errs.NewValueIsInvalidError("order id")
	}
	if err := validatePage(page, limit); err != nil {
		return GetOrderHistoryQuery{}, err
	}
	return GetOrderHistoryQuery{
		orderID: orderID,
		page:    page,
		limit:   limit,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

func (q GetOrderHistoryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderHistoryQueryIsNotConstructed)
}

func (q GetOrderHistoryQuery) OrderID() int64 { return q.orderID }
func (q GetOrderHistoryQuery) Page() int       { return q.page }
func (q GetOrderHistoryQuery) Limit() int      { return q.limit }
