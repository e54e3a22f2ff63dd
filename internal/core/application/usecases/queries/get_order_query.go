package queries

import (
	"errors"
	"time"

	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/guard"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order with its line items.
//
// Example:
//
//	query, err := NewGetOrderQuery(42)
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
type GetOrderQuery struct {
	orderID int64

	guard guard.ConstructorGuard
}

func NewGetOrderQuery(orderID int64) (GetOrderQuery, error) {
	if orderID <= 0 {
		return GetOrderQuery{}, errs.NewValueIsInvalidError("order id")
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() int64 {
	return q.orderID
}

// OrderView is the read model of an order. Status axes are reported by code.
type OrderView struct {
	ID                 int64
	CustomerName       string
	CustomerPhone      string
	CustomerAddress    string
	City               string
	Area               string
	Notes              string
	AgentStatus        string
	FollowupStatus     string
	DeliveryStatus     string
	AgentID            *uuid.UUID
	FollowupID         *uuid.UUID
	DeliveryProviderID *int64
	ProviderOrderCode  *string
	Calls              int
	FollowupCalls      int
	CancellationReason string
	CancellationNotes  string
	ReturnReason       string
	CreatedAt          time.Time
	FollowupAssignedAt *time.Time
	ReconfirmedAt      *time.Time
	OrderSentAt        *time.Time
	OrderDeliveredAt   *time.Time
	CreatedBy          *uuid.UUID
	ImportBatchID      *int64
	Items              []OrderItemView
	Total              decimal.Decimal
}

type OrderItemView struct {
	ID        int64
	ProductID int64
	VariantID *int64
	UnitPrice decimal.Decimal
	Quantity  int
	Total     decimal.Decimal
}
