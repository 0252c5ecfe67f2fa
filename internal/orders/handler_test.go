package orders

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joao-fontenele/dineahead/internal/auth"
)

func newHandlerMux(f *fixture) *http.ServeMux {
	handler := NewHandler(f.factory, f.ledger, f.catalog, discardLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/orders/create", handler.HandleCheckout)
	mux.HandleFunc("GET /api/orders", handler.HandleList)
	mux.HandleFunc("GET /api/orders/{id}", handler.HandleGet)
	return mux
}

func serve(mux *http.ServeMux, userID, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(auth.WithUserID(req.Context(), userID))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandler_HandleCheckout(t *testing.T) {
	t.Run("creates order from cart", func(t *testing.T) {
		f := newFixture(t, nil)
		f.add(t, "u-1", "pizza", 2)
		f.add(t, "u-1", "salad", 1)
		mux := newHandlerMux(f)

		rec := serve(mux, "u-1", http.MethodPost, "/api/orders/create")

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var view View
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if view.ID == "" {
			t.Error("expected order id")
		}
		if view.TotalAmount.StringFixed(2) != "25.00" {
			t.Errorf("expected total 25.00, got %s", view.TotalAmount.StringFixed(2))
		}
		if len(view.Items) != 2 || view.Items[0].MenuItem == nil {
			t.Errorf("expected two resolved items, got %+v", view.Items)
		}

		cart := serve(mux, "u-1", http.MethodPost, "/api/orders/create")
		if cart.Code != http.StatusBadRequest {
			t.Errorf("expected second checkout to see an empty cart, got %d", cart.Code)
		}
	})

	t.Run("empty cart", func(t *testing.T) {
		mux := newHandlerMux(newFixture(t, nil))

		rec := serve(mux, "u-1", http.MethodPost, "/api/orders/create")

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", rec.Code)
		}
		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "cart is empty" {
			t.Errorf("expected 'cart is empty', got %q", resp["error"])
		}
	})

	t.Run("unavailable item", func(t *testing.T) {
		f := newFixture(t, nil)
		f.add(t, "u-1", "pizza", 1)
		f.catalog.put("pizza", "r-1", "10.00", false)

		rec := serve(newHandlerMux(f), "u-1", http.MethodPost, "/api/orders/create")

		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", rec.Code)
		}
	})
}

func TestHandler_HandleList(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, "u-1", "pizza", 1)
	if _, err := f.factory.Checkout(t.Context(), "u-1"); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	mux := newHandlerMux(f)

	rec := serve(mux, "u-1", http.MethodGet, "/api/orders")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var views []View
	if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(views) != 1 {
		t.Errorf("expected 1 order, got %d", len(views))
	}

	rec = serve(mux, "u-2", http.MethodGet, "/api/orders")
	if rec.Body.String() != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", rec.Body.String())
	}
}

func TestHandler_HandleGet(t *testing.T) {
	f := newFixture(t, nil)
	f.add(t, "u-1", "pizza", 1)
	order, err := f.factory.Checkout(t.Context(), "u-1")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	mux := newHandlerMux(f)

	tests := []struct {
		name       string
		userID     string
		path       string
		wantStatus int
	}{
		{name: "owner", userID: "u-1", path: "/api/orders/" + order.ID, wantStatus: http.StatusOK},
		{name: "other user", userID: "u-2", path: "/api/orders/" + order.ID, wantStatus: http.StatusNotFound},
		{name: "unknown id", userID: "u-1", path: "/api/orders/6a1f9c1e-1d2b-4e3f-8a9b-0c1d2e3f4a5b", wantStatus: http.StatusNotFound},
		{name: "malformed id", userID: "u-1", path: "/api/orders/abc", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(mux, tt.userID, http.MethodGet, tt.path)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}
