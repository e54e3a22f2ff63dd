package queries

import (
	"context"
	"strconv"

	"orderflow/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GetOrderQueryHandler reads orders straight from the tables, bypassing the
// aggregate.
type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

// Handle returns the order or an ObjectNotFoundError.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (OrderView, error) {
	if err := query.Validate(); err != nil {
		return OrderView{}, err
	}

	view, found, err := h.order(ctx, query.OrderID())
	if err != nil {
		return OrderView{}, err
	}
	if !found {
		return OrderView{}, errs.NewObjectNotFoundError("order", strconv.FormatInt(query.OrderID(), 10))
	}

	if view.Items, err = h.items(ctx, view.ID); err != nil {
		return OrderView{}, err
	}
	view.Total = decimal.Zero
	for _, it := range view.Items {
		view.Total = view.Total.Add(it.Total)
	}
	return view, nil
}

func (h GetOrderQueryHandler) order(ctx context.Context, id int64) (OrderView, bool, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			customer_name,
			customer_phone,
			customer_address,
			city,
			area,
			notes,
			agent_status,
			followup_status,
			delivery_status,
			agent_id,
			followup_id,
			delivery_provider_id,
			provider_order_code,
			calls,
			followup_calls,
			cancellation_reason,
			cancellation_notes,
			return_reason,
			created_at,
			followup_assigned_at,
			reconfirmed_at,
			order_sent_at,
			order_delivered_at,
			created_by,
			import_batch_id
		FROM orders
		WHERE id = ?
	`, id).Rows()
	if err != nil {
		return OrderView{}, false, err
	}
	defer rows.Close()

	if !rows.Next() {
		return OrderView{}, false, rows.Err()
	}

	var v OrderView
	err = rows.Scan(
		&v.ID,
		&v.CustomerName,
		&v.CustomerPhone,
		&v.CustomerAddress,
		&v.City,
		&v.Area,
		&v.Notes,
		&v.AgentStatus,
		&v.FollowupStatus,
		&v.DeliveryStatus,
		&v.AgentID,
		&v.FollowupID,
		&v.DeliveryProviderID,
		&v.ProviderOrderCode,
		&v.Calls,
		&v.FollowupCalls,
		&v.CancellationReason,
		&v.CancellationNotes,
		&v.ReturnReason,
		&v.CreatedAt,
		&v.FollowupAssignedAt,
		&v.ReconfirmedAt,
		&v.OrderSentAt,
		&v.OrderDeliveredAt,
		&v.CreatedBy,
		&v.ImportBatchID,
	)
	if err != nil {
		return OrderView{}, false, err
	}
	return v, true, nil
}

func (h GetOrderQueryHandler) items(ctx context.Context, orderID int64) ([]OrderItemView, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			product_id,
			variant_id,
			unit_price,
			quantity
		FROM order_items
		WHERE order_id = ?
		ORDER BY id
	`, orderID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]OrderItemView, 0)
	for rows.Next() {
		var it OrderItemView
		if err = rows.Scan(&it.ID, &it.ProductID, &it.VariantID, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, err
		}
		it.Total = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		items = append(items, it)
	}
	return items, rows.Err()
}
