package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"

	"github.com/dejobratic/sales/internal/config"
	"github.com/dejobratic/sales/internal/database"
	"github.com/dejobratic/sales/internal/events"
	idemmemory "github.com/dejobratic/sales/internal/idempotency/memory"
	idempostgres "github.com/dejobratic/sales/internal/idempotency/postgres"
	"github.com/dejobratic/sales/internal/sales/adapters"
	httpadapter "github.com/dejobratic/sales/internal/sales/adapters/http"
	salesmemory "github.com/dejobratic/sales/internal/sales/adapters/memory"
	salespostgres "github.com/dejobratic/sales/internal/sales/adapters/postgres"
	"github.com/dejobratic/sales/internal/sales/app"
	"github.com/dejobratic/sales/internal/sales/domain"
	salesmetrics "github.com/dejobratic/sales/internal/sales/metrics"
	"github.com/dejobratic/sales/internal/sales/ports"
	"github.com/dejobratic/sales/internal/telemetry"
)

func main() {
	bootstrapLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(bootstrapLogger)

	cfg, err := config.Load()
	if err != nil {
		bootstrapLogger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := initTelemetry(ctx, cfg)
	if err != nil {
		bootstrapLogger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	logger := telemetry.NewLogger(parseLogLevel(cfg.Telemetry.LogLevel))
	slog.SetDefault(logger)

	backend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage backend", "error", err, "backend", cfg.Storage.Backend)
		os.Exit(1)
	}
	defer backend.Close()

	meter := otel.Meter("github.com/dejobratic/sales")

	dbMetrics, err := database.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to initialize database metrics", "error", err)
		os.Exit(1)
	}

	eventMetrics, err := events.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to initialize event metrics", "error", err)
		os.Exit(1)
	}

	orderMetrics, err := salesmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to initialize order metrics", "error", err)
		os.Exit(1)
	}

	httpMetrics, err := httpadapter.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to initialize http metrics", "error", err)
		os.Exit(1)
	}

	customers := adapters.NewObservableRepository(backend.customers, "customer", dbMetrics)
	products := adapters.NewObservableRepository(backend.products, "product", dbMetrics)
	orders := adapters.NewObservableRepository(backend.orders, "order", dbMetrics)
	eventBus := adapters.NewObservableEventBus(events.NewNoopBus(), eventMetrics)

	customerService := app.NewCustomerService(customers)
	productService := app.NewProductService(products)

	var orderService app.OrderAPI = app.NewOrderService(orders, customers, products, eventBus)
	orderService = app.NewObservableOrderService(orderService, logger, orderMetrics)

	if cfg.Service.SeedDemoData {
		if err := seedDemoData(ctx, customerService, productService, orderService); err != nil {
			logger.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
		logger.Info("demo data seeded")
	}

	handler := httpadapter.NewHandler(customerService, productService, orderService, backend.idemStore)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if backend.pool != nil {
			if err := database.CheckHealth(r.Context(), backend.pool); err != nil {
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.HandleFunc(cfg.HTTP.MetricsPath, func(w http.ResponseWriter, _ *http.Request) {
		// Metrics are pushed over OTLP; this endpoint only confirms liveness
		// of the scrape path for probes that expect one.
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("# metrics are exported via OTLP\n"))
	})

	handler.Register(mux)

	root := withRecovery(withLogging(httpadapter.WithMetrics(mux, httpMetrics)))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port, "backend", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
}

// backend bundles the repositories and idempotency store for whichever
// storage the configuration selected.
type backend struct {
	customers ports.CustomerRepository
	products  ports.ProductRepository
	orders    ports.OrderRepository
	idemStore ports.IdempotencyStore
	pool      *pgxpool.Pool
}

func (b *backend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}

func openBackend(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backend, error) {
	if cfg.Storage.Backend == config.BackendMemory {
		return &backend{
			customers: salesmemory.NewCustomerRepository(),
			products:  salesmemory.NewProductRepository(),
			orders:    salesmemory.NewOrderRepository(),
			idemStore: idemmemory.NewStore(),
		}, nil
	}

	if cfg.Storage.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.Storage.MigrationsPath)
		if err := database.RunMigrations(cfg.Storage.URL, cfg.Storage.MigrationsPath); err != nil {
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations completed successfully")
	}

	pool, err := database.NewPool(ctx, cfg.Storage.URL)
	if err != nil {
		return nil, fmt.Errorf("create database pool: %w", err)
	}

	return &backend{
		customers: salespostgres.NewCustomerRepository(pool),
		products:  salespostgres.NewProductRepository(pool),
		orders:    salespostgres.NewOrderRepository(pool),
		idemStore: idempostgres.NewStore(pool),
		pool:      pool,
	}, nil
}

func initTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Telemetry, error) {
	telCfg := telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	}

	// Without a collector endpoint, exporters would block on connection
	// attempts. Fall back to noop exporters so local runs stay quiet.
	if cfg.Telemetry.OTelEndpoint == "" {
		return telemetry.Initialize(ctx, telCfg,
			telemetry.WithTraceExporter(telemetry.NewNoopTraceExporter()),
			telemetry.WithMetricExporter(telemetry.NewNoopMetricExporter()),
		)
	}

	return telemetry.Initialize(ctx, telCfg)
}

// seedDemoData loads the sample sales scenario: one customer, two products,
// one order with two lines totalling 239.50.
func seedDemoData(ctx context.Context, customers *app.CustomerService, products *app.ProductService, orders app.OrderAPI) error {
	if _, err := customers.CreateCustomer(ctx, &domain.Customer{ID: "cli-001", Name: "Joao Silva", Email: "joao@example.com"}); err != nil {
		return fmt.Errorf("seed customer: %w", err)
	}

	if _, err := products.CreateProduct(ctx, &domain.Product{SKU: "sku-001", Name: "Cafeteira", UnitPrice: 199.90}); err != nil {
		return fmt.Errorf("seed product sku-001: %w", err)
	}
	if _, err := products.CreateProduct(ctx, &domain.Product{SKU: "sku-002", Name: "Xicara", UnitPrice: 9.90}); err != nil {
		return fmt.Errorf("seed product sku-002: %w", err)
	}

	order, err := orders.CreateOrder(ctx, "cli-001")
	if err != nil {
		return fmt.Errorf("seed order: %w", err)
	}
	if _, err := orders.AddLine(ctx, order.ID(), "sku-001", 1); err != nil {
		return fmt.Errorf("seed order line sku-001: %w", err)
	}
	if _, err := orders.AddLine(ctx, order.ID(), "sku-002", 4); err != nil {
		return fmt.Errorf("seed order line sku-002: %w", err)
	}

	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		slog.InfoContext(r.Context(), "http request", "method", r.Method, "path", r.URL.Path, "status", rw.status, "duration", time.Since(start))
	})
}

func withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("panic recovered", "error", rec)
				respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
