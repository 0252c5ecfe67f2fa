package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Restaurant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Cuisine   string    `json:"cuisine,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// MenuItem is owned by the catalog. Carts and orders only ever read it.
type MenuItem struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurantId"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	IsAvailable  bool            `json:"isAvailable"`
	Category     string          `json:"category,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
}
