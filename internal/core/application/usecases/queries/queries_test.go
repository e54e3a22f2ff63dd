package queries_test

import (
	"testing"
	"time"

	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetOrderQuery(t *testing.T) {
	t.Run("should build query", func(t *testing.T) {
		q, err := queries.NewGetOrderQuery(42)

		require.NoError(t, err)
		require.NoError(t, q.Validate())
		assert.Equal(t, int64(42), q.OrderID())
	})

	t.Run("should reject non positive id", func(t *testing.T) {
		_, err := queries.NewGetOrderQuery(0)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject zero value query", func(t *testing.T) {
		require.ErrorIs(t, queries.GetOrderQuery{}.Validate(), queries.ErrGetOrderQueryIsNotConstructed)
	})
}

func TestNewGetOrderHistoryQuery(t *testing.T) {
	tests := []struct {
		name    string
		orderID int64
		page    int
		limit   int
		field   string
	}{
		{name: "should reject missing order", orderID: 0, page: 1, limit: 10, field: "order id"},
		{name: "should reject page zero", orderID: 1, page: 0, limit: 10, field: "page"},
		{name: "should reject zero limit", orderID: 1, page: 1, limit: 0, field: "limit"},
		{name: "should reject oversized limit", orderID: 1, page: 1, limit: queries.MaxPageLimit + 1, field: "limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := queries.NewGetOrderHistoryQuery(tt.orderID, tt.page, tt.limit)
			require.Error(t, err)
			assert.Equal(t, tt.field, errs.FieldOf(err))
		})
	}

	t.Run("should build query", func(t *testing.T) {
		q, err := queries.NewGetOrderHistoryQuery(7, 2, queries.MaxPageLimit)

		require.NoError(t, err)
		require.NoError(t, q.Validate())
		assert.Equal(t, int64(7), q.OrderID())
		assert.Equal(t, 2, q.Page())
		assert.Equal(t, queries.MaxPageLimit, q.Limit())
	})

	t.Run("should reject zero value query", func(t *testing.T) {
		require.ErrorIs(t, queries.GetOrderHistoryQuery{}.Validate(), queries.ErrGetOrderHistoryQueryIsNotConstructed)
	})
}

func TestNewSearchHistoryQuery(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)

	t.Run("should trim and keep filter", func(t *testing.T) {
		value := "delivered"
		q, err := queries.NewSearchHistoryQuery(queries.HistoryFilter{
			TargetType: " order ",
			Field:      "delivery_status ",
			NewValue:   &value,
		}, 1, queries.DefaultPageLimit)

		require.NoError(t, err)
		require.NoError(t, q.Validate())
		assert.Equal(t, "order", q.Filter().TargetType)
		assert.Equal(t, "delivery_status", q.Filter().Field)
		assert.Equal(t, &value, q.Filter().NewValue)
	})

	tests := []struct {
		name   string
		filter queries.HistoryFilter
		target error
		field  string
	}{
		{
			name:   "should require target type",
			filter: queries.HistoryFilter{Field: "city"},
			target: errs.ErrValueIsRequired,
			field:  "target_type",
		},
		{
			name:   "should reject unknown target type",
			filter: queries.HistoryFilter{TargetType: "customer", Field: "city"},
			target: errs.ErrValueIsInvalid,
			field:  "target_type",
		},
		{
			name:   "should require field",
			filter: queries.HistoryFilter{TargetType: "order_item"},
			target: errs.ErrValueIsRequired,
			field:  "field",
		},
		{
			name:   "should reject inverted range",
			filter: queries.HistoryFilter{TargetType: "order", Field: "city", From: &from, To: &to},
			target: errs.ErrValueIsInvalid,
			field:  "to",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := queries.NewSearchHistoryQuery(tt.filter, 1, 10)
			require.ErrorIs(t, err, tt.target)
			assert.Equal(t, tt.field, errs.FieldOf(err))
		})
	}

	t.Run("should reject zero value query", func(t *testing.T) {
		require.ErrorIs(t, queries.SearchHistoryQuery{}.Validate(), queries.ErrSearchHistoryQueryIsNotConstructed)
	})
}
