// Package orderrepo persists order aggregates and their line items with GORM.
package orderrepo

import (
	"errors"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is the row of the orders table. Status axes and the cancellation
// reason are stored as their codes.
type OrderDTO struct {
	ID                 int64 `gorm:"primaryKey;autoIncrement"`
	CustomerName       string
	CustomerPhone      string
	CustomerAddress    string
	City               string
	Area               string
	Notes              string
	AgentStatus        string
	FollowupStatus     string
	DeliveryStatus     string
	AgentID            *uuid.UUID `gorm:"type:uuid"`
	FollowupID         *uuid.UUID `gorm:"type:uuid"`
	DeliveryProviderID *int64
	ProviderOrderCode  *string
	Calls              int
	FollowupCalls      int
	CancellationReason string
	CancellationNotes  string
	ReturnReason       string
	CreatedAt          time.Time `gorm:"autoCreateTime:false"`
	FollowupAssignedAt *time.Time
	ReconfirmedAt      *time.Time
	OrderSentAt        *time.Time
	OrderDeliveredAt   *time.Time
	CreatedBy          *uuid.UUID `gorm:"type:uuid"`
	ImportBatchID      *int64
}

func (OrderDTO) TableName() string {
	return "orders"
}

// ItemDTO is the row of the order_items table.
type ItemDTO struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	OrderID   int64
	ProductID int64
	VariantID *int64
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2)"`
	Quantity  int
}

func (ItemDTO) TableName() string {
	return "order_items"
}

func fromDomain(o *order.Order) OrderDTO {
	s := o.Snapshot()
	return OrderDTO{
		ID:                 s.ID,
		CustomerName:       s.Customer.Name,
		CustomerPhone:      s.Customer.Phone,
		CustomerAddress:    s.Customer.Address,
		City:               s.Customer.City,
		Area:               s.Customer.Area,
		Notes:              s.Notes,
		AgentStatus:        s.AgentStatus.String(),
		FollowupStatus:     s.FollowupStatus.String(),
		DeliveryStatus:     s.DeliveryStatus.String(),
		AgentID:            kernel.ToNullable(s.AgentID),
		FollowupID:         kernel.ToNullable(s.FollowupID),
		DeliveryProviderID: s.DeliveryProviderID,
		ProviderOrderCode:  s.ProviderOrderCode,
		Calls:              s.Calls,
		FollowupCalls:      s.FollowupCalls,
		CancellationReason: s.CancellationReason.String(),
		CancellationNotes:  s.CancellationNotes,
		ReturnReason:       s.ReturnReason,
		CreatedAt:          s.CreatedAt,
		FollowupAssignedAt: s.FollowupAssignedAt,
		ReconfirmedAt:      s.ReconfirmedAt,
		OrderSentAt:        s.OrderSentAt,
		OrderDeliveredAt:   s.OrderDeliveredAt,
		CreatedBy:          kernel.ToNullable(s.CreatedBy),
		ImportBatchID:      s.ImportBatchID,
	}
}

func itemFromDomain(orderID int64, it *order.Item) ItemDTO {
	return ItemDTO{
		ID:        it.ID(),
		OrderID:   orderID,
		ProductID: it.ProductID(),
		VariantID: it.VariantID(),
		UnitPrice: it.UnitPrice(),
		Quantity:  it.Quantity(),
	}
}

func toDomain(dto OrderDTO, items []ItemDTO) (*order.Order, error) {
	agentStatus, agentErr := order.ParseConfirmationStatus(dto.AgentStatus)
	followupStatus, followupErr := order.ParseFollowupStatus(dto.FollowupStatus)
	deliveryStatus, deliveryErr := order.ParseDeliveryStatus(dto.DeliveryStatus)
	reason, reasonErr := order.ParseCancellationReason(dto.CancellationReason)
	agentID, agentIDErr := kernel.FromNullable(dto.AgentID)
	followupID, followupIDErr := kernel.FromNullable(dto.FollowupID)
	createdBy, createdByErr := kernel.FromNullable(dto.CreatedBy)
	if err := errors.Join(
		agentErr, followupErr, deliveryErr, reasonErr,
		agentIDErr, followupIDErr, createdByErr,
	); err != nil {
		return nil, err
	}

	domainItems := make([]*order.Item, 0, len(items))
	for _, it := range items {
		domainItems = append(domainItems,
			order.RestoreItem(it.ID, it.ProductID, it.VariantID, it.UnitPrice, it.Quantity))
	}

	return order.Restore(order.State{
		ID: dto.ID,
		Customer: order.Customer{
			Name:    dto.CustomerName,
			Phone:   dto.CustomerPhone,
			Address: dto.CustomerAddress,
			City:    dto.City,
			Area:    dto.Area,
		},
		Notes:              dto.Notes,
		AgentStatus:        agentStatus,
		FollowupStatus:     followupStatus,
		DeliveryStatus:     deliveryStatus,
		AgentID:            agentID,
		FollowupID:         followupID,
		DeliveryProviderID: dto.DeliveryProviderID,
		ProviderOrderCode:  dto.ProviderOrderCode,
		Calls:              dto.Calls,
		FollowupCalls:      dto.FollowupCalls,
		CancellationReason: reason,
		CancellationNotes:  dto.CancellationNotes,
		ReturnReason:       dto.ReturnReason,
		CreatedAt:          dto.CreatedAt,
		FollowupAssignedAt: dto.FollowupAssignedAt,
		ReconfirmedAt:      dto.ReconfirmedAt,
		OrderSentAt:        dto.OrderSentAt,
		OrderDeliveredAt:   dto.OrderDeliveredAt,
		CreatedBy:          createdBy,
		ImportBatchID:      dto.ImportBatchID,
		Items:              domainItems,
	}), nil
}
