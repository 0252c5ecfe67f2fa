package cart

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/joao-fontenele/dineahead/internal/domain"
)

// Repository persists carts with optimistic concurrency. Save and
// DeleteVersion return domain.ErrConflict when the stored cart is not the
// one the caller read.
type Repository interface {
	// Get returns nil, nil when the user has no cart.
	Get(ctx context.Context, userID string) (*domain.Cart, error)
	// Save inserts a cart with Version 0 or replaces the stored cart whose
	// ID and Version match. On success Version is incremented in place.
	Save(ctx context.Context, cart *domain.Cart) error
	// Delete removes the user's cart if there is one.
	Delete(ctx context.Context, userID string) error
	// DeleteVersion removes the cart only if it is still the given snapshot.
	DeleteVersion(ctx context.Context, userID, cartID string, version int64) error
}

const uniqueViolation = "23505"

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	cart := &domain.Cart{OwnerUserID: userID, Items: []domain.CartItem{}}
	var restaurantID sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, version, restaurant_id, updated_at
		FROM dineahead.carts
		WHERE user_id = $1
	`, userID).Scan(&cart.ID, &cart.Version, &restaurantID, &cart.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	cart.RestaurantID = restaurantID.String

	rows, err := r.db.QueryContext(ctx, `
		SELECT menu_item_id, quantity
		FROM dineahead.cart_items
		WHERE user_id = $1
		ORDER BY position
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.MenuItemID, &item.Quantity); err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return cart, nil
}

func (r *PostgresRepository) Save(ctx context.Context, cart *domain.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	restaurantID := sql.NullString{String: cart.RestaurantID, Valid: cart.RestaurantID != ""}

	if cart.Version == 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO dineahead.carts (user_id, id, restaurant_id, version, updated_at)
			VALUES ($1, $2, $3, 1, $4)
		`, cart.OwnerUserID, cart.ID, restaurantID, cart.UpdatedAt)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
				return domain.ErrConflict
			}
			return err
		}
	} else {
		result, err := tx.ExecContext(ctx, `
			UPDATE dineahead.carts
			SET restaurant_id = $3, updated_at = $4, version = version + 1
			WHERE user_id = $1 AND id = $2 AND version = $5
		`, cart.OwnerUserID, cart.ID, restaurantID, cart.UpdatedAt, cart.Version)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rowsAffected == 0 {
			return domain.ErrConflict
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM dineahead.cart_items WHERE user_id = $1`, cart.OwnerUserID); err != nil {
			return err
		}
	}

	for i, item := range cart.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO dineahead.cart_items (user_id, menu_item_id, quantity, position)
			VALUES ($1, $2, $3, $4)
		`, cart.OwnerUserID, item.MenuItemID, item.Quantity, i)
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	cart.Version++
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM dineahead.carts WHERE user_id = $1`, userID)
	return err
}

func (r *PostgresRepository) DeleteVersion(ctx context.Context, userID, cartID string, version int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := DeleteVersionTx(ctx, tx, userID, cartID, version); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteVersionTx is DeleteVersion inside a caller-owned transaction, so a
// checkout can drop the cart in the same commit that stores the order.
func DeleteVersionTx(ctx context.Context, tx *sql.Tx, userID, cartID string, version int64) error {
	result, err := tx.ExecContext(ctx, `
		DELETE FROM dineahead.carts
		WHERE user_id = $1 AND id = $2 AND version = $3
	`, userID, cartID, version)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrConflict
	}

	return nil
}
