package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joao-fontenele/dineahead/internal/auth"
	"github.com/joao-fontenele/dineahead/internal/cart"
	"github.com/joao-fontenele/dineahead/internal/catalog"
	"github.com/joao-fontenele/dineahead/internal/config"
	"github.com/joao-fontenele/dineahead/internal/messaging"
	"github.com/joao-fontenele/dineahead/internal/orders"
	"github.com/joao-fontenele/dineahead/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load("8081")
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.PostgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET environment variable is required")
		os.Exit(1)
	}

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, "api", cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize tracer", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(ctx) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider("api", cfg.ServiceVersion)
	if err != nil {
		logger.Error("failed to initialize meter", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(ctx) }()

	db, err := telemetry.OpenDB(cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	var reader catalog.Reader = catalog.NewRepository(db)
	if cfg.CatalogServiceURL != "" {
		reader = catalog.NewClient(cfg.CatalogServiceURL, telemetry.NewClient(5*time.Second))
	}

	var publisher orders.Publisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.OrderCreatedTopic)
		defer func() { _ = producer.Close() }()
		publisher = producer
	}

	carts := cart.NewPostgresRepository(db)
	store, err := cart.NewStore(carts, reader, logger)
	if err != nil {
		logger.Error("failed to create cart store", "error", err)
		os.Exit(1)
	}

	orderRepo := orders.NewPostgresRepository(db)
	factory, err := orders.NewFactory(carts, orderRepo, reader, publisher, logger)
	if err != nil {
		logger.Error("failed to create order factory", "error", err)
		os.Exit(1)
	}
	ledger := orders.NewLedger(orderRepo)

	cartHandler := cart.NewHandler(store, logger)
	orderHandler := orders.NewHandler(factory, ledger, reader, logger)
	verifier := auth.NewVerifier(cfg.JWTSecret)

	route := func(h http.HandlerFunc) http.HandlerFunc {
		return telemetry.WithHTTPRoute(verifier.Require(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cart", route(cartHandler.HandleGet))
	mux.HandleFunc("POST /api/cart/add", route(cartHandler.HandleAdd))
	mux.HandleFunc("PUT /api/cart/update/{itemId}", route(cartHandler.HandleUpdate))
	mux.HandleFunc("DELETE /api/cart/remove/{itemId}", route(cartHandler.HandleRemove))
	mux.HandleFunc("DELETE /api/cart/clear", route(cartHandler.HandleClear))
	mux.HandleFunc("POST /api/orders/create", route(orderHandler.HandleCheckout))
	mux.HandleFunc("GET /api/orders", route(orderHandler.HandleList))
	mux.HandleFunc("GET /api/orders/{id}", route(orderHandler.HandleGet))
	mux.HandleFunc("GET /healthz", telemetry.HandleHealth)
	mux.Handle("GET /metrics", metricsHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      telemetry.NewHandler(mux, "api"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting api service", "port", cfg.Port, "catalog", cfg.CatalogServiceURL, "kafka", publisher != nil)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
