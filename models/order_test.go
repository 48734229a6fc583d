package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderNumber(t *testing.T) {
	n := NewOrderNumber()
	assert.True(t, strings.HasPrefix(n, "ORD-"))
	assert.Len(t, n, 12)
	assert.NotEqual(t, n, NewOrderNumber())
}

func TestCanCancel(t *testing.T) {
	cases := map[string]bool{
		OrderStatusPlaced:         true,
		OrderStatusConfirmed:      true,
		OrderStatusPacked:         false,
		OrderStatusShipped:        false,
		OrderStatusOutForDelivery: false,
		OrderStatusDelivered:      false,
		OrderStatusCompleted:      false,
		OrderStatusCancelled:      false,
	}
	for status, want := range cases {
		o := Order{OrderStatus: status}
		assert.Equal(t, want, o.CanCancel(), "status %s", status)
	}
}

func TestCanComplete(t *testing.T) {
	assert.True(t, (&Order{OrderStatus: OrderStatusDelivered}).CanComplete())
	assert.True(t, (&Order{OrderStatus: OrderStatusCompleted}).CanComplete())
	assert.False(t, (&Order{OrderStatus: OrderStatusShipped}).CanComplete())
	assert.False(t, (&Order{OrderStatus: OrderStatusPlaced}).CanComplete())
}

func TestValidStatusTransition(t *testing.T) {
	assert.True(t, ValidStatusTransition(OrderStatusPlaced, OrderStatusConfirmed))
	assert.True(t, ValidStatusTransition(OrderStatusConfirmed, OrderStatusPacked))
	assert.True(t, ValidStatusTransition(OrderStatusPacked, OrderStatusShipped))
	assert.True(t, ValidStatusTransition(OrderStatusShipped, OrderStatusOutForDelivery))
	assert.True(t, ValidStatusTransition(OrderStatusOutForDelivery, OrderStatusDelivered))
	assert.True(t, ValidStatusTransition(OrderStatusDelivered, OrderStatusCompleted))

	// No skipping steps
	assert.False(t, ValidStatusTransition(OrderStatusPlaced, OrderStatusShipped))
	assert.False(t, ValidStatusTransition(OrderStatusConfirmed, OrderStatusDelivered))

	// No moving backwards
	assert.False(t, ValidStatusTransition(OrderStatusShipped, OrderStatusPacked))

	// Terminal states go nowhere
	assert.False(t, ValidStatusTransition(OrderStatusCompleted, OrderStatusPlaced))
	assert.False(t, ValidStatusTransition(OrderStatusCancelled, OrderStatusConfirmed))

	// Cancellation is not part of the vendor flow
	assert.False(t, ValidStatusTransition(OrderStatusPlaced, OrderStatusCancelled))
}
