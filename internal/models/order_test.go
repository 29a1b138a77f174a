package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_Lifecycle(t *testing.T) {
	order := &Order{Status: OrderStatusPending}

	require.NoError(t, order.TransitionTo(OrderStatusShipped))
	assert.Equal(t, OrderStatusShipped, order.Status)

	require.NoError(t, order.TransitionTo(OrderStatusDelivered))
	assert.Equal(t, OrderStatusDelivered, order.Status)

	_, ok := order.Status.Next()
	assert.False(t, ok, "Delivered is terminal")
}

func TestOrderStatus_RejectsSkipsAndReversals(t *testing.T) {
	tests := []struct {
		name string
		from OrderStatus
		to   OrderStatus
	}{
		{"skip shipped", OrderStatusPending, OrderStatusDelivered},
		{"backwards", OrderStatusShipped, OrderStatusPending},
		{"same state", OrderStatusPending, OrderStatusPending},
		{"from terminal", OrderStatusDelivered, OrderStatusShipped},
		{"unknown target", OrderStatusPending, OrderStatus("Lost")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			order := &Order{Status: tc.from}
			assert.Error(t, order.TransitionTo(tc.to))
			assert.Equal(t, tc.from, order.Status)
		})
	}
}

func TestOrderLines_ScanAndTotal(t *testing.T) {
	var lines OrderLines
	raw := `[{"product_name":"Pen","product_quantity":2,"product_price":5,"totalPrice":10,"product_pictures":["a.png"]},
	         {"product_name":"Ink","product_quantity":1,"product_price":7.5,"totalPrice":7.5}]`

	require.NoError(t, lines.Scan([]byte(raw)))
	require.Len(t, lines, 2)
	assert.Equal(t, "Pen", lines[0].Name)
	assert.Equal(t, []string{"a.png"}, lines[0].Pictures)
	assert.InDelta(t, 17.5, lines.Total(), 1e-9)

	assert.Error(t, lines.Scan(42))
}

func TestOrderLines_CloneIsDeep(t *testing.T) {
	lines := OrderLines{{Name: "Pen", Pictures: []string{"a.png"}}}
	clone := lines.Clone()
	clone[0].Pictures[0] = "b.png"
	clone[0].Name = "Pencil"

	assert.Equal(t, "a.png", lines[0].Pictures[0])
	assert.Equal(t, "Pen", lines[0].Name)
}
