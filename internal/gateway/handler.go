package gateway

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// apiRoutes are served by the api process under the same path.
var apiRoutes = []string{
	"GET /api/cart",
	"POST /api/cart/add",
	"PUT /api/cart/update/{itemId}",
	"DELETE /api/cart/remove/{itemId}",
	"DELETE /api/cart/clear",
	"POST /api/orders/create",
	"GET /api/orders",
	"GET /api/orders/{id}",
}

// catalogRoutes are served by the catalog process without the /api prefix.
var catalogRoutes = []string{
	"GET /api/restaurants",
	"GET /api/restaurants/{id}",
	"GET /api/restaurants/{id}/menu",
	"GET /api/menu-items/{id}",
}

type Handler struct {
	apiProxy     *ServiceProxy
	catalogProxy *ServiceProxy
	logger       *slog.Logger
}

func NewHandler(apiProxy, catalogProxy *ServiceProxy, logger *slog.Logger) *Handler {
	return &Handler{
		apiProxy:     apiProxy,
		catalogProxy: catalogProxy,
		logger:       logger,
	}
}

// Register mounts every public route on mux, passing each handler through
// wrap first.
func (h *Handler) Register(mux *http.ServeMux, wrap func(http.HandlerFunc) http.HandlerFunc) {
	for _, pattern := range apiRoutes {
		mux.HandleFunc(pattern, wrap(h.HandleAPI))
	}
	for _, pattern := range catalogRoutes {
		mux.HandleFunc(pattern, wrap(h.HandleCatalog))
	}
}

func (h *Handler) HandleAPI(w http.ResponseWriter, r *http.Request) {
	h.proxyRequest(w, r, h.apiProxy, r.URL.Path)
}

func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	h.proxyRequest(w, r, h.catalogProxy, strings.TrimPrefix(r.URL.Path, "/api"))
}

func (h *Handler) proxyRequest(w http.ResponseWriter, r *http.Request, proxy *ServiceProxy, path string) {
	resp, err := proxy.ForwardRequest(r.Context(), r, path)
	if err != nil {
		h.logger.Error("failed to forward request", "error", err, "method", r.Method, "path", path)
		h.writeError(w, http.StatusBadGateway, "service unavailable")
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		h.logger.Error("failed to copy response body", "error", err, "path", path)
		return
	}

	h.logger.Info("request proxied", "method", r.Method, "path", path, "status", resp.StatusCode)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		h.logger.Error("failed to encode error response", "error", err)
	}
}
