package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_Next(t *testing.T) {
	tests := []struct {
		from     OrderStatus
		next     OrderStatus
		terminal bool
		ok       bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, false, true},
		{OrderStatusConfirmed, OrderStatusShipped, false, true},
		{OrderStatusShipped, OrderStatusDelivered, false, true},
		{OrderStatusDelivered, OrderStatusDelivered, true, true},
		{OrderStatusCancelled, OrderStatusCancelled, false, false},
		{OrderStatus("lost"), OrderStatus("lost"), false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			next, terminal, ok := tt.from.Next()
			assert.Equal(t, tt.next, next)
			assert.Equal(t, tt.terminal, terminal)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestOrderStatus_Cancellable(t *testing.T) {
	assert.True(t, OrderStatusPending.Cancellable())
	assert.True(t, OrderStatusConfirmed.Cancellable())
	assert.False(t, OrderStatusShipped.Cancellable())
	assert.False(t, OrderStatusDelivered.Cancellable())
	assert.False(t, OrderStatusCancelled.Cancellable())
}

func TestOrder_Clone(t *testing.T) {
	o := Order{ID: "ORD-2024-001", Items: []OrderItem{{ProductID: "P001", Quantity: 1}}}

	c := o.Clone()
	c.Items[0].Quantity = 9

	assert.Equal(t, 1, o.Items[0].Quantity)
}
