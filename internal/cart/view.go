package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/joao-fontenele/dineahead/internal/domain"
)

type ItemView struct {
	MenuItemID string           `json:"menuItemId"`
	Quantity   int              `json:"quantity"`
	MenuItem   *domain.MenuItem `json:"menuItem"`
}

// View is the cart as returned to clients: every line joined with the
// current catalog entry. MenuItem is nil for items the catalog no longer has.
type View struct {
	OwnerUserID  string     `json:"ownerUserId"`
	RestaurantID string     `json:"restaurantId,omitempty"`
	Items        []ItemView `json:"items"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

func (s *Store) Resolve(ctx context.Context, cart *domain.Cart) (*View, error) {
	view := &View{
		OwnerUserID:  cart.OwnerUserID,
		RestaurantID: cart.RestaurantID,
		Items:        make([]ItemView, 0, len(cart.Items)),
	}
	if !cart.UpdatedAt.IsZero() {
		updatedAt := cart.UpdatedAt
		view.UpdatedAt = &updatedAt
	}

	for _, item := range cart.Items {
		menuItem, err := s.catalog.GetMenuItem(ctx, item.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("resolve menu item %s: %w", item.MenuItemID, err)
		}
		view.Items = append(view.Items, ItemView{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			MenuItem:   menuItem,
		})
	}

	return view, nil
}
