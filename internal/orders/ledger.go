package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/joao-fontenele/dineahead/internal/domain"
)

// Ledger is the read side of a user's order history.
type Ledger struct {
	orders Repository
}

func NewLedger(orders Repository) *Ledger {
	return &Ledger{orders: orders}
}

func (l *Ledger) List(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}

	orders, err := l.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// Get returns domain.ErrOrderNotFound both for unknown orders and for
// orders owned by someone else.
func (l *Ledger) Get(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, domain.ErrOrderNotFound
	}

	order, err := l.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil || order.OwnerUserID != userID {
		return nil, domain.ErrOrderNotFound
	}
	return order, nil
}
