package orders

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/dineahead/internal/auth"
	"github.com/joao-fontenele/dineahead/internal/catalog"
	"github.com/joao-fontenele/dineahead/internal/domain"
)

type Handler struct {
	factory *Factory
	ledger  *Ledger
	catalog catalog.Reader
	logger  *slog.Logger
}

func NewHandler(factory *Factory, ledger *Ledger, reader catalog.Reader, logger *slog.Logger) *Handler {
	return &Handler{
		factory: factory,
		ledger:  ledger,
		catalog: reader,
		logger:  logger,
	}
}

func (h *Handler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	order, err := h.factory.Checkout(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			h.writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrEmptyCart):
			h.writeError(w, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, domain.ErrItemUnavailable):
			h.writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrConflict):
			h.writeError(w, http.StatusConflict, domain.ErrConflict.Error())
		default:
			h.logger.Error("failed to create order", "error", err, "user_id", userID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	view, err := newResolver(h.catalog).order(r.Context(), order)
	if err != nil {
		// The order is committed; fall back to the bare snapshot.
		h.logger.Error("failed to resolve order items", "error", err, "order_id", order.ID)
		h.writeJSON(w, http.StatusCreated, order)
		return
	}

	h.writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	orders, err := h.ledger.List(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to list orders", "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	res := newResolver(h.catalog)
	views := make([]*View, 0, len(orders))
	for i := range orders {
		view, err := res.order(r.Context(), &orders[i])
		if err != nil {
			h.logger.Error("failed to resolve order items", "error", err, "order_id", orders[i].ID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		views = append(views, view)
	}

	h.logger.Info("orders listed", "user_id", userID, "count", len(views))
	h.writeJSON(w, http.StatusOK, views)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	userID := auth.UserID(r.Context())
	order, err := h.ledger.Get(r.Context(), userID, id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			h.writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, domain.ErrInvalidInput):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to get order", "error", err, "id", id)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	view, err := newResolver(h.catalog).order(r.Context(), order)
	if err != nil {
		h.logger.Error("failed to resolve order items", "error", err, "order_id", order.ID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("order retrieved", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
