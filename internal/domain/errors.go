package domain

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrItemUnavailable = errors.New("menu item not available")
	ErrCrossRestaurant = errors.New("you can only add items from one restaurant per cart, clear cart to switch restaurants")
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotInCart   = errors.New("item not found in cart")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrOrderNotFound   = errors.New("order not found")

	// ErrConflict reports a lost optimistic-concurrency race on a cart.
	// Callers may retry the whole operation.
	ErrConflict = errors.New("concurrent cart modification, please retry")
)
