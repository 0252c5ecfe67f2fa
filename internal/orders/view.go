package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/dineahead/internal/catalog"
	"github.com/joao-fontenele/dineahead/internal/domain"
)

type ItemView struct {
	MenuItemID      string           `json:"menuItemId"`
	Quantity        int              `json:"quantity"`
	PriceAtPurchase decimal.Decimal  `json:"priceAtPurchase"`
	MenuItem        *domain.MenuItem `json:"menuItem"`
}

// View is an order with its lines joined to the current catalog entries.
// The catalog data is informational only; prices come from the snapshot.
type View struct {
	ID           string             `json:"id"`
	OwnerUserID  string             `json:"ownerUserId"`
	Items        []ItemView         `json:"items"`
	TotalAmount  decimal.Decimal    `json:"totalAmount"`
	Status       domain.OrderStatus `json:"status"`
	RestaurantID string             `json:"restaurantId,omitempty"`
	CreatedAt    time.Time          `json:"createdAt"`
}

// resolver caches catalog lookups for the lifetime of one request.
type resolver struct {
	catalog catalog.Reader
	cache   map[string]*domain.MenuItem
}

func newResolver(reader catalog.Reader) *resolver {
	return &resolver{catalog: reader, cache: make(map[string]*domain.MenuItem)}
}

func (r *resolver) menuItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	if item, ok := r.cache[id]; ok {
		return item, nil
	}
	item, err := r.catalog.GetMenuItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve menu item %s: %w", id, err)
	}
	r.cache[id] = item
	return item, nil
}

func (r *resolver) order(ctx context.Context, order *domain.Order) (*View, error) {
	view := &View{
		ID:           order.ID,
		OwnerUserID:  order.OwnerUserID,
		Items:        make([]ItemView, 0, len(order.Items)),
		TotalAmount:  order.TotalAmount,
		Status:       order.Status,
		RestaurantID: order.RestaurantID,
		CreatedAt:    order.CreatedAt,
	}

	for _, item := range order.Items {
		menuItem, err := r.menuItem(ctx, item.MenuItemID)
		if err != nil {
			return nil, err
		}
		view.Items = append(view.Items, ItemView{
			MenuItemID:      item.MenuItemID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase,
			MenuItem:        menuItem,
		})
	}

	return view, nil
}
