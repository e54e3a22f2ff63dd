package order

import (
	"time"

	"orderflow/internal/core/domain/model/kernel"
)

// State is the flat form of an Order used by storage adapters.
type State struct {
	ID                 int64
	Customer           Customer
	Notes              string
	AgentStatus        ConfirmationStatus
	FollowupStatus     FollowupStatus
	DeliveryStatus     DeliveryStatus
	AgentID            *kernel.UUID
	FollowupID         *kernel.UUID
	DeliveryProviderID *int64
	ProviderOrderCode  *string
	Calls              int
	FollowupCalls      int
	CancellationReason CancellationReason
	CancellationNotes  string
	ReturnReason       string
	CreatedAt          time.Time
	FollowupAssignedAt *time.Time
	ReconfirmedAt      *time.Time
	OrderSentAt        *time.Time
	OrderDeliveredAt   *time.Time
	CreatedBy          *kernel.UUID
	ImportBatchID      *int64
	Items              []*Item
}

// Restore rebuilds an order read from storage. Stored rows are trusted.
func Restore(s State) *Order {
	items := make([]*Item, len(s.Items))
	copy(items, s.Items)

	var code *string
	if s.ProviderOrderCode != nil {
		c := *s.ProviderOrderCode
		code = &c
	}

	return &Order{
		id:                 s.ID,
		customer:           s.Customer,
		notes:              s.Notes,
		agentStatus:        s.AgentStatus,
		followupStatus:     s.FollowupStatus,
		deliveryStatus:     s.DeliveryStatus,
		agentID:            cloneUUID(s.AgentID),
		followupID:         cloneUUID(s.FollowupID),
		deliveryProviderID: cloneInt64(s.DeliveryProviderID),
		providerOrderCode:  code,
		calls:              s.Calls,
		followupCalls:      s.FollowupCalls,
		cancellationReason: s.CancellationReason,
		cancellationNotes:  s.CancellationNotes,
		returnReason:       s.ReturnReason,
		createdAt:          s.CreatedAt,
		followupAssignedAt: cloneTime(s.FollowupAssignedAt),
		reconfirmedAt:      cloneTime(s.ReconfirmedAt),
		orderSentAt:        cloneTime(s.OrderSentAt),
		orderDeliveredAt:   cloneTime(s.OrderDeliveredAt),
		createdBy:          cloneUUID(s.CreatedBy),
		importBatchID:      cloneInt64(s.ImportBatchID),
		items:              items,
		isConstructed:      true,
	}
}

// Snapshot returns the flat form of the order.
func (o *Order) Snapshot() State {
	return State{
		ID:                 o.id,
		Customer:           o.customer,
		Notes:              o.notes,
		AgentStatus:        o.agentStatus,
		FollowupStatus:     o.followupStatus,
		DeliveryStatus:     o.deliveryStatus,
		AgentID:            o.AgentID(),
		FollowupID:         o.FollowupID(),
		DeliveryProviderID: o.DeliveryProviderID(),
		ProviderOrderCode:  o.ProviderOrderCode(),
		Calls:              o.calls,
		FollowupCalls:      o.followupCalls,
		CancellationReason: o.cancellationReason,
		CancellationNotes:  o.cancellationNotes,
		ReturnReason:       o.returnReason,
		CreatedAt:          o.createdAt,
		FollowupAssignedAt: o.FollowupAssignedAt(),
		ReconfirmedAt:      o.ReconfirmedAt(),
		OrderSentAt:        o.OrderSentAt(),
		OrderDeliveredAt:   o.OrderDeliveredAt(),
		CreatedBy:          o.CreatedBy(),
		ImportBatchID:      o.ImportBatchID(),
		Items:              o.Items(),
	}
}

// Clone returns a deep copy, items included. Mutations on the copy never reach
// the original.
func (o *Order) Clone() *Order {
	s := o.Snapshot()
	items := make([]*Item, len(s.Items))
	for i, it := range s.Items {
		items[i] = it.clone()
	}
	s.Items = items
	return Restore(s)
}

// ItemPair holds one line item as it was and as it is. A side is nil when the
// line was added or removed.
type ItemPair struct {
	Before *Item
	After  *Item
}

// PairItems matches the lines of before and after by id. Added lines come last,
// in the order they appear on after.
func PairItems(before, after *Order) []ItemPair {
	var pairs []ItemPair
	afterByID := make(map[int64]*Item)
	if after != nil {
		for _, it := range after.items {
			if it.id != 0 {
				afterByID[it.id] = it
			}
		}
	}
	if before != nil {
		for _, it := range before.items {
			pairs = append(pairs, ItemPair{Before: it, After: afterByID[it.id]})
		}
	}
	if after != nil {
		for _, it := range after.items {
			if it.id == 0 || before == nil || !before.hasItem(it.id) {
				pairs = append(pairs, ItemPair{After: it})
			}
		}
	}
	return pairs
}

func (o *Order) hasItem(id int64) bool {
	for _, it := range o.items {
		if it.id == id {
			return true
		}
	}
	return false
}
