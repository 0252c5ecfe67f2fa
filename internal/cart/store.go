package cart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/dineahead/internal/catalog"
	"github.com/joao-fontenele/dineahead/internal/domain"
)

var meter = otel.Meter("dineahead/cart")

// Store owns the one cart each user may have. Every mutation is a
// read-modify-write guarded by the repository's version check and retried
// once on conflict.
type Store struct {
	repo      Repository
	catalog   catalog.Reader
	logger    *slog.Logger
	now       func() time.Time
	conflicts metric.Int64Counter
}

func NewStore(repo Repository, reader catalog.Reader, logger *slog.Logger) (*Store, error) {
	conflicts, err := meter.Int64Counter("dineahead.cart.conflicts",
		metric.WithDescription("Cart writes that lost a concurrent update after retrying"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cart conflicts counter: %w", err)
	}

	return &Store{
		repo:      repo,
		catalog:   reader,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		conflicts: conflicts,
	}, nil
}

// Get returns the user's cart, or an empty cart value when none is stored.
func (s *Store) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}

	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if cart == nil {
		return domain.EmptyCart(userID), nil
	}
	return cart, nil
}

func (s *Store) AddItem(ctx context.Context, userID, menuItemID string, quantity int) (*domain.Cart, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}
	if menuItemID == "" {
		return nil, fmt.Errorf("%w: menuItemId required", domain.ErrInvalidInput)
	}

	item, err := s.catalog.GetMenuItem(ctx, menuItemID)
	if err != nil {
		return nil, fmt.Errorf("resolve menu item: %w", err)
	}
	if item == nil || !item.IsAvailable {
		return nil, domain.ErrItemUnavailable
	}

	var saved *domain.Cart
	err = RetryOnConflict(func() error {
		cart, err := s.repo.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if cart == nil {
			cart = &domain.Cart{ID: uuid.NewString(), OwnerUserID: userID, Items: []domain.CartItem{}}
		}

		if err := cart.Add(item, quantity, s.now()); err != nil {
			return err
		}

		if err := s.repo.Save(ctx, cart); err != nil {
			return err
		}
		saved = cart
		return nil
	})
	if err != nil {
		return nil, s.observe(ctx, "add", err)
	}

	s.logger.Info("cart item added", "user_id", userID, "menu_item_id", menuItemID, "restaurant_id", saved.RestaurantID)
	return saved, nil
}

func (s *Store) UpdateItemQuantity(ctx context.Context, userID, menuItemID string, quantity int) (*domain.Cart, error) {
	return s.mutate(ctx, "update", userID, menuItemID, func(cart *domain.Cart) error {
		return cart.SetQuantity(menuItemID, quantity, s.now())
	})
}

// RemoveItem is a no-op on the items when menuItemID is not in the cart.
func (s *Store) RemoveItem(ctx context.Context, userID, menuItemID string) (*domain.Cart, error) {
	return s.mutate(ctx, "remove", userID, menuItemID, func(cart *domain.Cart) error {
		cart.Remove(menuItemID, s.now())
		return nil
	})
}

// Clear deletes the cart itself. Clearing a missing cart succeeds.
func (s *Store) Clear(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.logger.Info("cart cleared", "user_id", userID)
	return nil
}

func (s *Store) mutate(ctx context.Context, op, userID, menuItemID string, apply func(*domain.Cart) error) (*domain.Cart, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}
	if menuItemID == "" {
		return nil, fmt.Errorf("%w: menu item id required", domain.ErrInvalidInput)
	}

	var saved *domain.Cart
	err := RetryOnConflict(func() error {
		cart, err := s.repo.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if cart == nil {
			return domain.ErrCartNotFound
		}

		if err := apply(cart); err != nil {
			return err
		}

		if err := s.repo.Save(ctx, cart); err != nil {
			return err
		}
		saved = cart
		return nil
	})
	if err != nil {
		return nil, s.observe(ctx, op, err)
	}

	s.logger.Info("cart updated", "op", op, "user_id", userID, "menu_item_id", menuItemID, "items", len(saved.Items))
	return saved, nil
}

func (s *Store) observe(ctx context.Context, op string, err error) error {
	if errors.Is(err, domain.ErrConflict) {
		s.conflicts.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
		s.logger.Warn("cart write conflict after retry", "op", op, "error", err)
	}
	return err
}
