package catalog

import (
	"context"
	"database/sql"

	"github.com/joao-fontenele/dineahead/internal/domain"
)

// Reader resolves menu items for the cart and order core. A nil item with a
// nil error means the id is unknown.
type Reader interface {
	GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error)
}

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, address, cuisine, created_at
		FROM catalog.restaurants
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	restaurants := []domain.Restaurant{}
	for rows.Next() {
		var rest domain.Restaurant
		if err := rows.Scan(&rest.ID, &rest.Name, &rest.Address, &rest.Cuisine, &rest.CreatedAt); err != nil {
			return nil, err
		}
		restaurants = append(restaurants, rest)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return restaurants, nil
}

func (r *Repository) GetRestaurant(ctx context.Context, id string) (*domain.Restaurant, error) {
	rest := &domain.Restaurant{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, address, cuisine, created_at
		FROM catalog.restaurants
		WHERE id = $1
	`, id).Scan(&rest.ID, &rest.Name, &rest.Address, &rest.Cuisine, &rest.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return rest, nil
}

// ListMenu returns every menu item of a restaurant, available or not.
func (r *Repository) ListMenu(ctx context.Context, restaurantID string) ([]domain.MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, restaurant_id, name, description, price, is_available, category, created_at
		FROM catalog.menu_items
		WHERE restaurant_id = $1
		ORDER BY category, name
	`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	items := []domain.MenuItem{}
	for rows.Next() {
		var item domain.MenuItem
		if err := rows.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description,
			&item.Price, &item.IsAvailable, &item.Category, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *Repository) GetMenuItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	item := &domain.MenuItem{}

	err := r.db.QueryRowContext(ctx, `
		SELECT id, restaurant_id, name, description, price, is_available, category, created_at
		FROM catalog.menu_items
		WHERE id = $1
	`, id).Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description,
		&item.Price, &item.IsAvailable, &item.Category, &item.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return item, nil
}
