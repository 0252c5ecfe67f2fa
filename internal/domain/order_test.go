package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []OrderItem
		want  string
	}{
		{
			name:  "no items",
			items: nil,
			want:  "0.00",
		},
		{
			name: "quantities multiply price snapshots",
			items: []OrderItem{
				{MenuItemID: "m-1", Quantity: 2, PriceAtPurchase: decimal.RequireFromString("10.00")},
				{MenuItemID: "m-2", Quantity: 1, PriceAtPurchase: decimal.RequireFromString("5.00")},
			},
			want: "25.00",
		},
		{
			name: "cents do not drift",
			items: []OrderItem{
				{MenuItemID: "m-1", Quantity: 3, PriceAtPurchase: decimal.RequireFromString("0.10")},
				{MenuItemID: "m-2", Quantity: 1, PriceAtPurchase: decimal.RequireFromString("0.20")},
			},
			want: "0.50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OrderTotal(tt.items).StringFixed(2))
		})
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusCreated, OrderStatusConfirmed, OrderStatusPreparing,
		OrderStatusReady, OrderStatusCompleted, OrderStatusCancelled,
	} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("pending").Valid())
	assert.False(t, OrderStatus("").Valid())
}
