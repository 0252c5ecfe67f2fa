package cart

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/dineahead/internal/auth"
	"github.com/joao-fontenele/dineahead/internal/domain"
)

const crossRestaurantMessage = "You can only add items from one restaurant per cart. Clear cart to switch restaurants."

type Handler struct {
	store  *Store
	logger *slog.Logger
}

func NewHandler(store *Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  store,
		logger: logger,
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	cart, err := h.store.Get(r.Context(), userID)
	if err != nil {
		h.writeStoreError(w, err, "failed to get cart", userID)
		return
	}

	h.writeCart(w, r, cart)
}

type addItemRequest struct {
	MenuItemID string `json:"menuItemId"`
	Quantity   int    `json:"quantity"`
}

func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.MenuItemID == "" {
		h.writeError(w, http.StatusBadRequest, "menuItemId required")
		return
	}

	userID := auth.UserID(r.Context())
	cart, err := h.store.AddItem(r.Context(), userID, req.MenuItemID, req.Quantity)
	if err != nil {
		h.writeStoreError(w, err, "failed to add cart item", userID)
		return
	}

	h.writeCart(w, r, cart)
}

type updateItemRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemId")
	if itemID == "" {
		h.writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Quantity == nil {
		h.writeError(w, http.StatusBadRequest, "quantity required")
		return
	}

	userID := auth.UserID(r.Context())
	cart, err := h.store.UpdateItemQuantity(r.Context(), userID, itemID, *req.Quantity)
	if err != nil {
		h.writeStoreError(w, err, "failed to update cart item", userID)
		return
	}

	h.writeCart(w, r, cart)
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	itemID := r.PathValue("itemId")
	if itemID == "" {
		h.writeError(w, http.StatusBadRequest, "missing item id")
		return
	}

	userID := auth.UserID(r.Context())
	cart, err := h.store.RemoveItem(r.Context(), userID, itemID)
	if err != nil {
		h.writeStoreError(w, err, "failed to remove cart item", userID)
		return
	}

	h.writeCart(w, r, cart)
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	if err := h.store.Clear(r.Context(), userID); err != nil {
		h.writeStoreError(w, err, "failed to clear cart", userID)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Cart cleared"})
}

func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, cart *domain.Cart) {
	view, err := h.store.Resolve(r.Context(), cart)
	if err != nil {
		h.logger.Error("failed to resolve cart", "error", err, "user_id", cart.OwnerUserID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, view)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error, msg, userID string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrCrossRestaurant):
		h.writeError(w, http.StatusBadRequest, crossRestaurantMessage)
	case errors.Is(err, domain.ErrItemUnavailable):
		h.writeError(w, http.StatusNotFound, domain.ErrItemUnavailable.Error())
	case errors.Is(err, domain.ErrCartNotFound):
		h.writeError(w, http.StatusNotFound, domain.ErrCartNotFound.Error())
	case errors.Is(err, domain.ErrItemNotInCart):
		h.writeError(w, http.StatusNotFound, domain.ErrItemNotInCart.Error())
	case errors.Is(err, domain.ErrConflict):
		h.writeError(w, http.StatusConflict, domain.ErrConflict.Error())
	default:
		h.logger.Error(msg, "error", err, "user_id", userID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
	}
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
