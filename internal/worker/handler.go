package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/dineahead/internal/cart"
	"github.com/joao-fontenele/dineahead/internal/domain"
)

var meter = otel.Meter("dineahead/worker")

// ReconcileHandler removes carts that survived the checkout that consumed
// them. It only deletes a cart that is still exactly the snapshot named in
// the event; anything the user changed afterwards is left alone.
type ReconcileHandler struct {
	carts   cart.Repository
	logger  *slog.Logger
	deleted metric.Int64Counter
}

func NewReconcileHandler(carts cart.Repository, logger *slog.Logger) (*ReconcileHandler, error) {
	deleted, err := meter.Int64Counter("dineahead.reconciler.carts",
		metric.WithDescription("Order created events processed by the reconciler, by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("create reconciler counter: %w", err)
	}

	return &ReconcileHandler{
		carts:   carts,
		logger:  logger,
		deleted: deleted,
	}, nil
}

func (h *ReconcileHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	if event.UserID == "" || event.CartID == "" {
		h.logger.Warn("skipping order created event without cart reference", "order_id", event.OrderID)
		h.count(ctx, "skipped")
		return nil
	}

	err := h.carts.DeleteVersion(ctx, event.UserID, event.CartID, event.CartVersion)
	switch {
	case err == nil:
		h.logger.Info("stale cart removed after checkout", "order_id", event.OrderID, "user_id", event.UserID, "cart_id", event.CartID)
		h.count(ctx, "deleted")
		return nil
	case errors.Is(err, domain.ErrConflict):
		h.count(ctx, "clean")
		return nil
	default:
		return fmt.Errorf("delete cart %s for order %s: %w", event.CartID, event.OrderID, err)
	}
}

func (h *ReconcileHandler) count(ctx context.Context, outcome string) {
	h.deleted.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
