package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreatedEvent is published once a checkout has been committed.
// CartID and CartVersion identify the exact cart snapshot that was
// consumed so a reconciler can tell it apart from a newer cart.
type OrderCreatedEvent struct {
	OrderID      string          `json:"order_id"`
	UserID       string          `json:"user_id"`
	RestaurantID string          `json:"restaurant_id,omitempty"`
	Items        []OrderItem     `json:"items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CartID       string          `json:"cart_id"`
	CartVersion  int64           `json:"cart_version"`
	Timestamp    time.Time       `json:"timestamp"`
}
