package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LQT2201/Book-UIT/internal/cart"
	"github.com/LQT2201/Book-UIT/internal/catalog"
	"github.com/LQT2201/Book-UIT/internal/order"
	"github.com/LQT2201/Book-UIT/pkg/health"
	"github.com/LQT2201/Book-UIT/pkg/middleware"
)

// RouterConfig bundles the services and settings the router depends on.
type RouterConfig struct {
	CartService    *cart.Service
	OrderService   *order.Service
	CatalogService *catalog.Service
	HealthHandler  *health.Handler
	Logger         *slog.Logger

	RateLimitRPS   int
	RateLimitBurst int
	CORS           middleware.CORSConfig
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	cartHandler := NewCartHandler(cfg.CartService, cfg.Logger)
	orderHandler := NewOrderHandler(cfg.OrderService, cfg.Logger)
	adminHandler := NewAdminHandler(cfg.OrderService, cfg.Logger)
	catalogHandler := NewCatalogHandler(cfg.CatalogService, cfg.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimitRPS > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, cfg.Logger))
		}
		r.Use(SessionFromRequest)

		// Public catalog
		r.Get("/books", catalogHandler.ListBooks)
		r.Get("/books/search", catalogHandler.SearchBooks)
		r.Get("/books/{bookId}", catalogHandler.GetBook)
		r.Get("/genres", catalogHandler.ListGenres)

		// Cart. Reads work for anonymous sessions too; the backend decides
		// what an unauthenticated token is allowed to see.
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/refresh", cartHandler.RefreshCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{itemId}", cartHandler.UpdateQuantity)
			r.Post("/items/{itemId}/increment", cartHandler.IncrementItem)
			r.Post("/items/{itemId}/decrement", cartHandler.DecrementItem)
			r.Delete("/items/{itemId}", cartHandler.RemoveItem)
		})

		// Checkout and order history require a signed-in user.
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth)

			r.Post("/checkout", orderHandler.Checkout)
			r.Get("/orders", orderHandler.ListOrders)
			r.Get("/orders/{orderId}", orderHandler.GetOrder)
		})

		// Admin order console.
		r.Route("/admin/orders", func(r chi.Router) {
			r.Use(RequireAdmin)

			r.Get("/", adminHandler.ListOrders)
			r.Get("/{orderId}", adminHandler.GetOrder)
			r.Patch("/{orderId}/status", adminHandler.UpdateStatus)
			r.Delete("/{orderId}", adminHandler.DeleteOrder)
			r.Get("/{orderId}/history", adminHandler.StatusHistory)
		})
	})

	return r
}
