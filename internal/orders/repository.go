package orders

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/joao-fontenele/dineahead/internal/cart"
	"github.com/joao-fontenele/dineahead/internal/domain"
)

// Repository is the append-only order store.
type Repository interface {
	// Create stores a new order and assigns its ID.
	Create(ctx context.Context, order *domain.Order) error
	// GetByID returns nil, nil for unknown ids.
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	// ListByUser returns the user's orders, most recent first.
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
}

// AtomicCheckout is implemented by repositories that can store an order and
// delete the cart snapshot it was built from in a single transaction. It
// returns domain.ErrConflict, storing nothing, when the cart changed.
type AtomicCheckout interface {
	CreateFromCart(ctx context.Context, order *domain.Order, source *domain.Cart) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := insertOrder(ctx, tx, order); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *PostgresRepository) CreateFromCart(ctx context.Context, order *domain.Order, source *domain.Cart) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := cart.DeleteVersionTx(ctx, tx, source.OwnerUserID, source.ID, source.Version); err != nil {
		return err
	}

	if err := insertOrder(ctx, tx, order); err != nil {
		return err
	}

	return tx.Commit()
}

func insertOrder(ctx context.Context, tx *sql.Tx, order *domain.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}

	restaurantID := sql.NullString{String: order.RestaurantID, Valid: order.RestaurantID != ""}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO dineahead.orders (id, user_id, restaurant_id, status, total_amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, order.ID, order.OwnerUserID, restaurantID, order.Status, order.TotalAmount, order.CreatedAt)
	if err != nil {
		return err
	}

	for i, item := range order.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO dineahead.order_items (id, order_id, menu_item_id, quantity, price_at_purchase, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.New().String(), order.ID, item.MenuItemID, item.Quantity, item.PriceAtPurchase, i)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	order := &domain.Order{}
	var restaurantID sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, restaurant_id, status, total_amount, created_at
		FROM dineahead.orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.OwnerUserID, &restaurantID, &order.Status, &order.TotalAmount, &order.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	order.RestaurantID = restaurantID.String

	rows, err := r.db.QueryContext(ctx, `
		SELECT menu_item_id, quantity, price_at_purchase
		FROM dineahead.order_items
		WHERE order_id = $1
		ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.MenuItemID, &item.Quantity, &item.PriceAtPurchase); err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return order, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, restaurant_id, status, total_amount, created_at
		FROM dineahead.orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	orderMap := make(map[string]*domain.Order)
	var orderIDs []string

	for rows.Next() {
		var order domain.Order
		var restaurantID sql.NullString
		if err := rows.Scan(&order.ID, &order.OwnerUserID, &restaurantID, &order.Status, &order.TotalAmount, &order.CreatedAt); err != nil {
			return nil, err
		}
		order.RestaurantID = restaurantID.String
		order.Items = []domain.OrderItem{}
		orderMap[order.ID] = &order
		orderIDs = append(orderIDs, order.ID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(orderIDs) == 0 {
		return []domain.Order{}, nil
	}

	itemRows, err := r.db.QueryContext(ctx, `
		SELECT order_id, menu_item_id, quantity, price_at_purchase
		FROM dineahead.order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY order_id, position
	`, pq.Array(orderIDs))
	if err != nil {
		return nil, err
	}
	defer func() { _ = itemRows.Close() }()

	for itemRows.Next() {
		var orderID string
		var item domain.OrderItem
		if err := itemRows.Scan(&orderID, &item.MenuItemID, &item.Quantity, &item.PriceAtPurchase); err != nil {
			return nil, err
		}
		order := orderMap[orderID]
		order.Items = append(order.Items, item)
	}

	if err := itemRows.Err(); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(orderIDs))
	for _, id := range orderIDs {
		orders = append(orders, *orderMap[id])
	}

	return orders, nil
}
