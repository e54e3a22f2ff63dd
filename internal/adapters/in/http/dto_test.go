package http

import (
	"encoding/json"
	"testing"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawPatch(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	return raw
}

func TestDecodePatch(t *testing.T) {
	t.Run("should decode declared fields in stable order", func(t *testing.T) {
		worker := kernel.NewUUID()

		p, err := decodePatch(rawPatch(t, `{
			"followup_status": "reconfirmed",
			"followup_id": "`+worker.String()+`",
			"city": "  Setif ",
			"delivery_provider_id": 3,
			"items": [{"id": 9, "product_id": 2, "quantity": 3}]
		}`))

		require.NoError(t, err)
		assert.Equal(t, []order.Field{
			order.FieldCity,
			order.FieldDeliveryProviderID,
			order.FieldFollowupID,
			order.FieldFollowupStatus,
			order.FieldItems,
		}, p.Fields)
		assert.Equal(t, order.FollowupReconfirmed, p.FollowupStatus)
		require.NotNil(t, p.FollowupID)
		assert.True(t, p.FollowupID.IsEqual(worker))
		assert.Equal(t, "Setif", p.Customer.City)
		assert.Equal(t, int64(3), *p.DeliveryProviderID)
		require.Len(t, p.Items, 1)
		assert.Equal(t, int64(9), *p.Items[0].ID)
		assert.Equal(t, 3, p.Items[0].Quantity)
	})

	t.Run("should clear nullable fields", func(t *testing.T) {
		p, err := decodePatch(rawPatch(t, `{"agent_id": null, "delivery_provider_id": null}`))

		require.NoError(t, err)
		assert.True(t, p.Declares(order.FieldAgentID))
		assert.Nil(t, p.AgentID)
		assert.Nil(t, p.DeliveryProviderID)
	})

	t.Run("should reject empty body", func(t *testing.T) {
		_, err := decodePatch(map[string]json.RawMessage{})
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject engine maintained field", func(t *testing.T) {
		_, err := decodePatch(rawPatch(t, `{"calls": 3}`))
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, "calls", errs.FieldOf(err))
	})

	t.Run("should reject malformed user id", func(t *testing.T) {
		_, err := decodePatch(rawPatch(t, `{"agent_id": "not-a-uuid"}`))
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, "agent_id", errs.FieldOf(err))
	})

	t.Run("should reject empty item list", func(t *testing.T) {
		_, err := decodePatch(rawPatch(t, `{"items": []}`))
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject wrong json type", func(t *testing.T) {
		_, err := decodePatch(rawPatch(t, `{"notes": 12}`))
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Equal(t, "notes", errs.FieldOf(err))
	})
}

func TestCreateOrderRequest_ToDraft(t *testing.T) {
	actor := kernel.NewUUID()

	t.Run("should default agent status", func(t *testing.T) {
		d, err := createOrderRequest{
			CustomerName:  "Amina",
			CustomerPhone: "0550123456",
			Items:         []itemRequest{{ProductID: 1, Quantity: 1}},
		}.toDraft(actor)

		require.NoError(t, err)
		assert.Equal(t, order.AgentUnknown, d.AgentStatus)
		assert.Equal(t, order.CancelNone, d.CancellationReason)
		require.NotNil(t, d.CreatedBy)
		assert.True(t, d.CreatedBy.IsEqual(actor))
	})

	t.Run("should parse cancellation", func(t *testing.T) {
		d, err := createOrderRequest{
			AgentStatus:        "canceled",
			CancellationReason: "price_too_high",
		}.toDraft(actor)

		require.NoError(t, err)
		assert.Equal(t, order.AgentCanceled, d.AgentStatus)
		assert.Equal(t, order.CancelPriceTooHigh, d.CancellationReason)
	})

	t.Run("should reject unknown reason", func(t *testing.T) {
		_, err := createOrderRequest{CancellationReason: "bored"}.toDraft(actor)
		require.Error(t, err)
	})
}
