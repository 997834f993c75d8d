package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/LQT2201/Book-UIT/internal/backend"
	"github.com/LQT2201/Book-UIT/internal/cart"
	cartredis "github.com/LQT2201/Book-UIT/internal/cart/repository/redis"
	"github.com/LQT2201/Book-UIT/internal/catalog"
	"github.com/LQT2201/Book-UIT/internal/config"
	"github.com/LQT2201/Book-UIT/internal/event"
	handler "github.com/LQT2201/Book-UIT/internal/handler/http"
	"github.com/LQT2201/Book-UIT/internal/order"
	auditpg "github.com/LQT2201/Book-UIT/internal/order/repository/postgres"
	"github.com/LQT2201/Book-UIT/migrations"
	"github.com/LQT2201/Book-UIT/pkg/database"
	"github.com/LQT2201/Book-UIT/pkg/health"
	"github.com/LQT2201/Book-UIT/pkg/httpclient"
	pkgkafka "github.com/LQT2201/Book-UIT/pkg/kafka"
	"github.com/LQT2201/Book-UIT/pkg/middleware"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	rdb        *redis.Client
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Redis backs the cart mirror and the catalog cache.
	rdb, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis", slog.String("addr", cfg.Redis().Addr()))

	// Postgres holds the order status audit trail.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL", slog.String("database", pgCfg.DBName))

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Kafka producer for domain events. Optional: with Kafka disabled the
	// services simply skip publishing.
	var producer *pkgkafka.Producer
	var cartEvents cart.Publisher
	var orderEvents order.Publisher
	if cfg.KafkaEnabled {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		events := event.NewProducer(producer, logger)
		cartEvents = events
		orderEvents = events
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Backend client behind a circuit breaker.
	clientCfg := httpclient.DefaultConfig()
	clientCfg.Timeout = cfg.BackendTimeout
	breaker := httpclient.NewCircuitBreakerClient(
		httpclient.New(clientCfg),
		httpclient.DefaultCircuitBreakerConfig("bookstore-backend"),
		logger,
	)
	backendClient := backend.New(cfg.BackendBaseURL, breaker, logger)

	// Build the dependency graph.
	mirror := cartredis.NewMirror(rdb, cfg.CartMirrorTTL)
	cartService := cart.NewService(backendClient, mirror, cartEvents, logger)
	auditRepo := auditpg.NewAuditRepository(pool)
	orderService := order.NewService(backendClient, cartService, auditRepo, orderEvents, logger)
	catalogService := catalog.NewService(backendClient, rdb, cfg.CatalogCacheTTL, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins
	corsCfg.Environment = cfg.Environment

	router := handler.NewRouter(handler.RouterConfig{
		CartService:    cartService,
		OrderService:   orderService,
		CatalogService: catalogService,
		HealthHandler:  healthHandler,
		Logger:         logger,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CORS:           corsCfg,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		rdb:        rdb,
		pool:       pool,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		}
	}

	a.pool.Close()

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
