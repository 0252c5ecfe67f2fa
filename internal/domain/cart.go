package domain

import "time"

type CartItem struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

// Cart is the single mutable staging area a user fills before checkout.
// ID and Version are concurrency bookkeeping: ID is fixed when the cart is
// created, Version grows with every persisted write. A zero Version means
// the cart has never been stored.
type Cart struct {
	ID           string     `json:"-"`
	Version      int64      `json:"-"`
	OwnerUserID  string     `json:"ownerUserId"`
	RestaurantID string     `json:"restaurantId,omitempty"`
	Items        []CartItem `json:"items"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// EmptyCart is what a user without a stored cart sees.
func EmptyCart(userID string) *Cart {
	return &Cart{OwnerUserID: userID, Items: []CartItem{}}
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) indexOf(menuItemID string) int {
	for i, item := range c.Items {
		if item.MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

// Add puts quantity units of item into the cart, merging with an existing
// line for the same menu item. The cart is left untouched on error.
func (c *Cart) Add(item *MenuItem, quantity int, now time.Time) error {
	if quantity < 1 {
		quantity = 1
	}

	if c.RestaurantID == "" {
		c.RestaurantID = item.RestaurantID
	} else if c.RestaurantID != item.RestaurantID {
		return ErrCrossRestaurant
	}

	if i := c.indexOf(item.ID); i >= 0 {
		c.Items[i].Quantity += quantity
	} else {
		c.Items = append(c.Items, CartItem{MenuItemID: item.ID, Quantity: quantity})
	}

	c.UpdatedAt = now
	return nil
}

// SetQuantity replaces the quantity of an existing line. Zero or less
// drops the line.
func (c *Cart) SetQuantity(menuItemID string, quantity int, now time.Time) error {
	i := c.indexOf(menuItemID)
	if i < 0 {
		return ErrItemNotInCart
	}

	if quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	} else {
		c.Items[i].Quantity = quantity
	}

	c.UpdatedAt = now
	return nil
}

// Remove drops the line for menuItemID if present.
func (c *Cart) Remove(menuItemID string, now time.Time) {
	if i := c.indexOf(menuItemID); i >= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}
	c.UpdatedAt = now
}

// Clone returns a deep copy so stores never share item slices with callers.
func (c *Cart) Clone() *Cart {
	clone := *c
	clone.Items = make([]CartItem, len(c.Items))
	copy(clone.Items, c.Items)
	return &clone
}
