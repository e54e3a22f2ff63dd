package http

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

type itemRequest struct {
	ID        *int64 `json:"id,omitempty"   validate:"omitempty,gt=0"`
	ProductID int64  `json:"product_id"     validate:"required,gt=0"`
	VariantID *int64 `json:"variant_id"     validate:"omitempty,gt=0"`
	Quantity  int    `json:"quantity"       validate:"required,gt=0"`
}

type createOrderRequest struct {
	CustomerName       string        `json:"customer_name"        validate:"required,max=255"`
	CustomerPhone      string        `json:"customer_phone"       validate:"required,max=32"`
	CustomerAddress    string        `json:"customer_address"     validate:"max=500"`
	City               string        `json:"city"                 validate:"max=100"`
	Area               string        `json:"area"                 validate:"max=100"`
	Notes              string        `json:"notes"`
	AgentStatus        string        `json:"agent_status"`
	AgentID            *string       `json:"agent_id"             validate:"omitempty,uuid"`
	DeliveryProviderID *int64        `json:"delivery_provider_id" validate:"omitempty,gt=0"`
	CancellationReason string        `json:"cancellation_reason"`
	CancellationNotes  string        `json:"cancellation_notes"`
	ImportBatchID      *int64        `json:"import_batch_id"      validate:"omitempty,gt=0"`
	Items              []itemRequest `json:"items"                validate:"required,min=1,dive"`
}

func (r createOrderRequest) toDraft(actor kernel.UUID) (order.Draft, error) {
	draft := order.Draft{
		Customer: order.Customer{
			Name:    r.CustomerName,
			Phone:   r.CustomerPhone,
			Address: r.CustomerAddress,
			City:    r.City,
			Area:    r.Area,
		},
		Notes:              r.Notes,
		DeliveryProviderID: r.DeliveryProviderID,
		CancellationNotes:  r.CancellationNotes,
		CreatedBy:          &actor,
		ImportBatchID:      r.ImportBatchID,
		Items:              toItemDrafts(r.Items),
	}

	if strings.TrimSpace(r.AgentStatus) != "" {
		status, err := order.ParseConfirmationStatus(strings.TrimSpace(r.AgentStatus))
		if err != nil {
			return order.Draft{}, err
		}
		draft.AgentStatus = status
	}

	reason, err := order.ParseCancellationReason(strings.TrimSpace(r.CancellationReason))
	if err != nil {
		return order.Draft{}, err
	}
	draft.CancellationReason = reason

	if draft.AgentID, err = parseOptionalUUID(string(order.FieldAgentID), r.AgentID); err != nil {
		return order.Draft{}, err
	}
	return draft, nil
}

func toItemDrafts(items []itemRequest) []order.ItemDraft {
	drafts := make([]order.ItemDraft, 0, len(items))
	for _, it := range items {
		drafts = append(drafts, order.ItemDraft{
			ID:        it.ID,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			Quantity:  it.Quantity,
		})
	}
	return drafts
}

func parseOptionalUUID(field string, raw *string) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.ParseUUID(strings.TrimSpace(*raw))
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(field, err)
	}
	return &id, nil
}

// decodePatch turns a JSON object into a Patch declaring exactly the keys
// present in it. A null value clears a nullable field.
func decodePatch(raw map[string]json.RawMessage) (order.Patch, error) {
	if len(raw) == 0 {
		return order.Patch{}, errs.NewValueIsRequiredError("body")
	}

	var p order.Patch
	for _, key := range slices.Sorted(maps.Keys(raw)) {
		field, err := order.ParseField(key)
		if err != nil {
			return order.Patch{}, err
		}
		if err = decodePatchField(&p, field, raw[key]); err != nil {
			return order.Patch{}, err
		}
		p.Fields = append(p.Fields, field)
	}
	return p, nil
}

func decodePatchField(p *order.Patch, field order.Field, value json.RawMessage) error {
	var err error
	switch field {
	case order.FieldCustomerName:
		p.Customer.Name, err = decodeString(field, value)
	case order.FieldCustomerPhone:
		p.Customer.Phone, err = decodeString(field, value)
	case order.FieldCustomerAddress:
		p.Customer.Address, err = decodeString(field, value)
	case order.FieldCity:
		p.Customer.City, err = decodeString(field, value)
	case order.FieldArea:
		p.Customer.Area, err = decodeString(field, value)
	case order.FieldNotes:
		p.Notes, err = decodeString(field, value)
	case order.FieldCancellationNotes:
		p.CancellationNotes, err = decodeString(field, value)
	case order.FieldReturnReason:
		p.ReturnReason, err = decodeString(field, value)
	case order.FieldAgentStatus:
		var code string
		if code, err = decodeString(field, value); err == nil {
			p.AgentStatus, err = order.ParseConfirmationStatus(code)
		}
	case order.FieldFollowupStatus:
		var code string
		if code, err = decodeString(field, value); err == nil {
			p.FollowupStatus, err = order.ParseFollowupStatus(code)
		}
	case order.FieldDeliveryStatus:
		var code string
		if code, err = decodeString(field, value); err == nil {
			p.DeliveryStatus, err = order.ParseDeliveryStatus(code)
		}
	case order.FieldCancellationReason:
		var code string
		if code, err = decodeString(field, value); err == nil {
			p.CancellationReason, err = order.ParseCancellationReason(code)
		}
	case order.FieldAgentID:
		p.AgentID, err = decodeNullableUUID(field, value)
	case order.FieldFollowupID:
		p.FollowupID, err = decodeNullableUUID(field, value)
	case order.FieldDeliveryProviderID:
		var id *int64
		if err = json.Unmarshal(value, &id); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(string(field), err)
		}
		p.DeliveryProviderID = id
	case order.FieldItems:
		var items []itemRequest
		if err = json.Unmarshal(value, &items); err != nil {
			return errs.NewValueIsInvalidErrorWithCause(string(field), err)
		}
		if len(items) == 0 {
			return errs.NewValueIsRequiredError(string(field))
		}
		p.Items = toItemDrafts(items)
	default:
		return errs.NewValueIsInvalidErrorWithCause(string(field), fmt.Errorf("%q is not an updatable field", field))
	}
	return err
}

func decodeString(field order.Field, value json.RawMessage) (string, error) {
	var s *string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", errs.NewValueIsInvalidErrorWithCause(string(field), err)
	}
	if s == nil {
		return "", nil
	}
	return strings.TrimSpace(*s), nil
}

func decodeNullableUUID(field order.Field, value json.RawMessage) (*kernel.UUID, error) {
	var s *string
	if err := json.Unmarshal(value, &s); err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(string(field), err)
	}
	return parseOptionalUUID(string(field), s)
}

type deliveryStatusRequest struct {
	OrderCode    string  `json:"order_code"     validate:"required"`
	ToStatusCode *int    `json:"to_status_code" validate:"required"`
	ReturnReason *string `json:"return_reason"`
}

type deliveryStatusResponse struct {
	OrderID   int64  `json:"order_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

type itemResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	VariantID *int64 `json:"variant_id"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total"`
}

type orderResponse struct {
	ID                 int64          `json:"id"`
	CustomerName       string         `json:"customer_name"`
	CustomerPhone      string         `json:"customer_phone"`
	CustomerAddress    string         `json:"customer_address"`
	City               string         `json:"city"`
	Area               string         `json:"area"`
	Notes              string         `json:"notes"`
	AgentStatus        string         `json:"agent_status"`
	FollowupStatus     string         `json:"followup_status"`
	DeliveryStatus     string         `json:"delivery_status"`
	AgentID            *uuid.UUID     `json:"agent_id"`
	FollowupID         *uuid.UUID     `json:"followup_id"`
	DeliveryProviderID *int64         `json:"delivery_provider_id"`
	ProviderOrderCode  *string        `json:"provider_order_code"`
	Calls              int            `json:"calls"`
	FollowupCalls      int            `json:"followup_calls"`
	CancellationReason string         `json:"cancellation_reason"`
	CancellationNotes  string         `json:"cancellation_notes"`
	ReturnReason       string         `json:"return_reason"`
	CreatedAt          time.Time      `json:"created_at"`
	FollowupAssignedAt *time.Time     `json:"followup_assigned_at"`
	ReconfirmedAt      *time.Time     `json:"reconfirmed_at"`
	OrderSentAt        *time.Time     `json:"order_sent_at"`
	OrderDeliveredAt   *time.Time     `json:"order_delivered_at"`
	CreatedBy          *uuid.UUID     `json:"created_by"`
	ImportBatchID      *int64         `json:"import_batch_id"`
	Items              []itemResponse `json:"items"`
	Total              string         `json:"total"`
	FollowupSkipped    bool           `json:"followup_skipped,omitempty"`
}

func newOrderResponse(o *order.Order) orderResponse {
	c := o.Customer()
	resp := orderResponse{
		ID:                 o.ID(),
		CustomerName:       c.Name,
		CustomerPhone:      c.Phone,
		CustomerAddress:    c.Address,
		City:               c.City,
		Area:               c.Area,
		Notes:              o.Notes(),
		AgentStatus:        o.AgentStatus().String(),
		FollowupStatus:     o.FollowupStatus().String(),
		DeliveryStatus:     o.DeliveryStatus().String(),
		AgentID:            kernel.ToNullable(o.AgentID()),
		FollowupID:         kernel.ToNullable(o.FollowupID()),
		DeliveryProviderID: o.DeliveryProviderID(),
		ProviderOrderCode:  o.ProviderOrderCode(),
		Calls:              o.Calls(),
		FollowupCalls:      o.FollowupCalls(),
		CancellationReason: o.CancellationReason().String(),
		CancellationNotes:  o.CancellationNotes(),
		ReturnReason:       o.ReturnReason(),
		CreatedAt:          o.CreatedAt(),
		FollowupAssignedAt: o.FollowupAssignedAt(),
		ReconfirmedAt:      o.ReconfirmedAt(),
		OrderSentAt:        o.OrderSentAt(),
		OrderDeliveredAt:   o.OrderDeliveredAt(),
		CreatedBy:          kernel.ToNullable(o.CreatedBy()),
		ImportBatchID:      o.ImportBatchID(),
		Items:              make([]itemResponse, 0, len(o.Items())),
	}

	total := decimal.Zero
	for _, it := range o.Items() {
		resp.Items = append(resp.Items, itemResponse{
			ID:        it.ID(),
			ProductID: it.ProductID(),
			VariantID: it.VariantID(),
			UnitPrice: money(it.UnitPrice()),
			Quantity:  it.Quantity(),
			Total:     money(it.Total()),
		})
		total = total.Add(it.Total())
	}
	resp.Total = money(total)
	return resp
}

func newMutationResponse(res commands.MutationResult) orderResponse {
	resp := newOrderResponse(res.Order)
	resp.FollowupSkipped = res.FollowupSkipped
	return resp
}

func newOrderViewResponse(v queries.OrderView) orderResponse {
	resp := orderResponse{
		ID:                 v.ID,
		CustomerName:       v.CustomerName,
		CustomerPhone:      v.CustomerPhone,
		CustomerAddress:    v.CustomerAddress,
		City:               v.City,
		Area:               v.Area,
		Notes:              v.Notes,
		AgentStatus:        v.AgentStatus,
		FollowupStatus:     v.FollowupStatus,
		DeliveryStatus:     v.DeliveryStatus,
		AgentID:            v.AgentID,
		FollowupID:         v.FollowupID,
		DeliveryProviderID: v.DeliveryProviderID,
		ProviderOrderCode:  v.ProviderOrderCode,
		Calls:              v.Calls,
		FollowupCalls:      v.FollowupCalls,
		CancellationReason: v.CancellationReason,
		CancellationNotes:  v.CancellationNotes,
		ReturnReason:       v.ReturnReason,
		CreatedAt:          v.CreatedAt,
		FollowupAssignedAt: v.FollowupAssignedAt,
		ReconfirmedAt:      v.ReconfirmedAt,
		OrderSentAt:        v.OrderSentAt,
		OrderDeliveredAt:   v.OrderDeliveredAt,
		CreatedBy:          v.CreatedBy,
		ImportBatchID:      v.ImportBatchID,
		Items:              make([]itemResponse, 0, len(v.Items)),
		Total:              money(v.Total),
	}
	for _, it := range v.Items {
		resp.Items = append(resp.Items, itemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			VariantID: it.VariantID,
			UnitPrice: money(it.UnitPrice),
			Quantity:  it.Quantity,
			Total:     money(it.Total),
		})
	}
	return resp
}

type claimResponse struct {
	Outcome string         `json:"outcome"`
	Order   *orderResponse `json:"order,omitempty"`
}

func newClaimResponse(res commands.ClaimResult) claimResponse {
	resp := claimResponse{Outcome: res.Outcome.String()}
	if res.Order != nil {
		o := newOrderResponse(res.Order)
		resp.Order = &o
	}
	return resp
}

type historyEntryResponse struct {
	ID         uuid.UUID  `json:"id"`
	BatchID    uuid.UUID  `json:"batch_id"`
	Position   int        `json:"position"`
	TargetType string     `json:"target_type"`
	TargetID   int64      `json:"target_id"`
	OrderID    int64      `json:"order_id"`
	Field      string     `json:"field"`
	OldValue   string     `json:"old_value"`
	NewValue   string     `json:"new_value"`
	ActorID    *uuid.UUID `json:"actor_id"`
	Event      string     `json:"event"`
	CreatedAt  time.Time  `json:"created_at"`
}

type historyPageResponse struct {
	Entries []historyEntryResponse `json:"entries"`
	Page    int                    `json:"page"`
	Limit   int                    `json:"limit"`
	Total   int64                  `json:"total"`
}

func newHistoryPageResponse(p queries.HistoryPage) historyPageResponse {
	resp := historyPageResponse{
		Entries: make([]historyEntryResponse, 0, len(p.Entries)),
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   p.Total,
	}
	for _, e := range p.Entries {
		resp.Entries = append(resp.Entries, historyEntryResponse(e))
	}
	return resp
}
