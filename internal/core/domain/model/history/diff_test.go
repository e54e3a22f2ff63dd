package history_test

import (
	"testing"
	"time"

	"orderflow/internal/core/domain/model/history"
	"orderflow/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff(t *testing.T) {
	before := []history.Attribute{
		{Name: "agent_status", Value: "new"},
		{Name: "delivery_provider_id", Value: ""},
		{Name: "city", Value: "Casablanca"},
		{Name: "reconfirmed_at", Value: "", Timestamp: true},
	}

	t.Run("should report only changed fields", func(t *testing.T) {
		after := []history.Attribute{
			{Name: "agent_status", Value: "confirmed"},
			{Name: "delivery_provider_id", Value: "3"},
			{Name: "city", Value: "Casablanca"},
			{Name: "reconfirmed_at", Value: "", Timestamp: true},
		}

		changes := history.Diff(before, after)

		assert.Equal(t, []history.Change{
			{Field: "agent_status", Old: "new", New: "confirmed"},
			{Field: "delivery_provider_id", Old: "", New: "3"},
		}, changes)
	})

	t.Run("should never track timestamps", func(t *testing.T) {
		after := []history.Attribute{
			{Name: "agent_status", Value: "new"},
			{Name: "delivery_provider_id", Value: ""},
			{Name: "city", Value: "Casablanca"},
			{Name: "reconfirmed_at", Value: "2026-01-02T10:00:00Z", Timestamp: true},
		}

		assert.Empty(t, history.Diff(before, after))
	})

	t.Run("should describe creation from nothing", func(t *testing.T) {
		changes := history.Diff(nil, []history.Attribute{
			{Name: "quantity", Value: "2"},
			{Name: "variant_id", Value: ""},
		})

		assert.Equal(t, []history.Change{{Field: "quantity", New: "2"}}, changes)
	})

	t.Run("should describe removal", func(t *testing.T) {
		changes := history.Diff([]history.Attribute{
			{Name: "quantity", Value: "2"},
			{Name: "variant_id", Value: ""},
		}, nil)

		assert.Equal(t, []history.Change{{Field: "quantity", Old: "2"}}, changes)
	})

	t.Run("should detect touched fields", func(t *testing.T) {
		changes := []history.Change{{Field: "city", Old: "a", New: "b"}}

		assert.True(t, history.Touched(changes, "area", "city"))
		assert.False(t, history.Touched(changes, "agent_status"))
	})
}

func TestBatch_Record(t *testing.T) {
	actor := kernel.NewUUID()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	batch := history.NewBatch(&actor, now)

	first := batch.Record(history.TargetOrder, 10, 10, history.EventUpdated, []history.Change{
		{Field: "agent_status", Old: "new", New: "confirmed"},
		{Field: "delivery_provider_id", Old: "", New: "3"},
	})
	second := batch.Record(history.TargetOrder, 10, 10, history.EventUpdated, []history.Change{
		{Field: "provider_order_code", Old: "", New: "PRV-1"},
	})

	require.Len(t, first, 2)
	require.Len(t, second, 1)

	t.Run("should continue positions across steps", func(t *testing.T) {
		assert.Equal(t, 1, first[0].Position())
		assert.Equal(t, 2, first[1].Position())
		assert.Equal(t, 3, second[0].Position())
	})

	t.Run("should share batch metadata", func(t *testing.T) {
		for _, e := range append(first, second...) {
			require.NoError(t, e.Validate())
			assert.Equal(t, batch.ID(), e.BatchID())
			assert.True(t, e.ActorID().IsEqual(actor))
			assert.Equal(t, now, e.CreatedAt())
			assert.Equal(t, history.EventUpdated, e.Event())
		}
		assert.NotEqual(t, first[0].ID(), first[1].ID())
	})

	t.Run("should produce nothing for no changes", func(t *testing.T) {
		assert.Empty(t, batch.Record(history.TargetOrderItem, 1, 10, history.EventUpdated, nil))
	})
}

func TestEvent(t *testing.T) {
	t.Run("should parse known codes", func(t *testing.T) {
		for _, code := range []string{"created", "updated", "deleted", "restored"} {
			e, err := history.ParseEvent(code)
			require.NoError(t, err)
			assert.Equal(t, code, e.String())
		}
	})

	t.Run("should reject unknown", func(t *testing.T) {
		_, err := history.ParseEvent("purged")
		require.Error(t, err)
		require.Error(t, history.EventUnknown.Validate())
		require.Error(t, history.TargetType("company").Validate())
	})
}
