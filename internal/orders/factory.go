package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/dineahead/internal/cart"
	"github.com/joao-fontenele/dineahead/internal/catalog"
	"github.com/joao-fontenele/dineahead/internal/domain"
)

var (
	tracer = otel.Tracer("dineahead/orders")
	meter  = otel.Meter("dineahead/orders")
)

// Publisher announces committed checkouts. *messaging.Producer satisfies it.
type Publisher interface {
	Publish(ctx context.Context, key string, event any) error
}

// Factory turns a user's cart into an order with locked prices and then
// removes the cart.
type Factory struct {
	carts     cart.Repository
	orders    Repository
	catalog   catalog.Reader
	publisher Publisher
	logger    *slog.Logger
	now       func() time.Time

	checkouts       metric.Int64Counter
	reconciliations metric.Int64Counter
}

// NewFactory wires a Factory. publisher may be nil.
func NewFactory(carts cart.Repository, orders Repository, reader catalog.Reader, publisher Publisher, logger *slog.Logger) (*Factory, error) {
	checkouts, err := meter.Int64Counter("dineahead.checkouts",
		metric.WithDescription("Committed checkouts"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkouts counter: %w", err)
	}

	reconciliations, err := meter.Int64Counter("dineahead.checkout.reconciliations",
		metric.WithDescription("Checkouts whose order was stored but whose cart could not be deleted"),
	)
	if err != nil {
		return nil, fmt.Errorf("create reconciliations counter: %w", err)
	}

	return &Factory{
		carts:           carts,
		orders:          orders,
		catalog:         reader,
		publisher:       publisher,
		logger:          logger,
		now:             func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		checkouts:       checkouts,
		reconciliations: reconciliations,
	}, nil
}

func (f *Factory) Checkout(ctx context.Context, userID string) (*domain.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required", domain.ErrInvalidInput)
	}

	ctx, span := tracer.Start(ctx, "checkout")
	defer span.End()

	var order *domain.Order
	var source *domain.Cart

	err := cart.RetryOnConflict(func() error {
		c, err := f.carts.Get(ctx, userID)
		if err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if c == nil || c.IsEmpty() {
			return domain.ErrEmptyCart
		}

		o, err := f.build(ctx, c)
		if err != nil {
			return err
		}

		if err := f.commit(ctx, o, c); err != nil {
			return err
		}

		order, source = o, c
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.Int("order.items", len(order.Items)),
	)
	f.checkouts.Add(ctx, 1)
	f.logger.Info("order created", "order_id", order.ID, "user_id", userID, "total", order.TotalAmount.StringFixed(2))

	f.publish(ctx, order, source)
	return order, nil
}

// build snapshots current catalog prices for every cart line.
func (f *Factory) build(ctx context.Context, c *domain.Cart) (*domain.Order, error) {
	items := make([]domain.OrderItem, 0, len(c.Items))
	for _, line := range c.Items {
		menuItem, err := f.catalog.GetMenuItem(ctx, line.MenuItemID)
		if err != nil {
			return nil, fmt.Errorf("resolve menu item %s: %w", line.MenuItemID, err)
		}
		if menuItem == nil || !menuItem.IsAvailable {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemUnavailable, line.MenuItemID)
		}

		items = append(items, domain.OrderItem{
			MenuItemID:      line.MenuItemID,
			Quantity:        line.Quantity,
			PriceAtPurchase: menuItem.Price,
		})
	}

	return &domain.Order{
		OwnerUserID:  c.OwnerUserID,
		Items:        items,
		TotalAmount:  domain.OrderTotal(items),
		Status:       domain.OrderStatusCreated,
		RestaurantID: c.RestaurantID,
		CreatedAt:    f.now(),
	}, nil
}

func (f *Factory) commit(ctx context.Context, order *domain.Order, source *domain.Cart) error {
	if atomic, ok := f.orders.(AtomicCheckout); ok {
		if err := atomic.CreateFromCart(ctx, order, source); err != nil {
			order.ID = ""
			return fmt.Errorf("create order from cart: %w", err)
		}
		return nil
	}

	if err := f.orders.Create(ctx, order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}

	// The order exists from here on, so a failed delete must not fail the
	// checkout or trigger a retry that would store a second order.
	if err := f.carts.DeleteVersion(ctx, source.OwnerUserID, source.ID, source.Version); err != nil {
		f.reconciliations.Add(ctx, 1)
		f.logger.Error("checkout reconciliation needed: order stored but cart not deleted",
			"error", err,
			"order_id", order.ID,
			"user_id", source.OwnerUserID,
			"cart_id", source.ID,
			"cart_version", source.Version,
		)
	}
	return nil
}

func (f *Factory) publish(ctx context.Context, order *domain.Order, source *domain.Cart) {
	if f.publisher == nil {
		return
	}

	event := domain.OrderCreatedEvent{
		OrderID:      order.ID,
		UserID:       order.OwnerUserID,
		RestaurantID: order.RestaurantID,
		Items:        order.Items,
		TotalAmount:  order.TotalAmount,
		CartID:       source.ID,
		CartVersion:  source.Version,
		Timestamp:    order.CreatedAt,
	}
	if err := f.publisher.Publish(ctx, order.OwnerUserID, event); err != nil {
		f.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
	}
}
