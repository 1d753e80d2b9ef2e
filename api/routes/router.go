package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jvacosta/dailyfish-backend/api/controllers"
	"github.com/jvacosta/dailyfish-backend/api/middleware"
	authsvc "github.com/jvacosta/dailyfish-backend/internal/auth"
	cartsvc "github.com/jvacosta/dailyfish-backend/internal/cart"
	"github.com/jvacosta/dailyfish-backend/internal/catalog"
	checkoutsvc "github.com/jvacosta/dailyfish-backend/internal/checkout"
	feedbacksvc "github.com/jvacosta/dailyfish-backend/internal/feedback"
	messagesvc "github.com/jvacosta/dailyfish-backend/internal/messages"
	ordersvc "github.com/jvacosta/dailyfish-backend/internal/orders"
	"github.com/jvacosta/dailyfish-backend/pkg/config"
	"github.com/jvacosta/dailyfish-backend/pkg/db"
	"github.com/jvacosta/dailyfish-backend/pkg/logger"
	"github.com/jvacosta/dailyfish-backend/pkg/redis"
)

// Services groups the domain services the router exposes.
type Services struct {
	Auth     authsvc.Service
	Catalog  catalog.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   ordersvc.Service
	Feedback feedbacksvc.Service
	Messages messagesvc.Service
}

// NewRouter assembles the full HTTP surface: public catalog browsing,
// authenticated buyer routes, and staff administration.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	database *db.Client,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	services Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// Interface conversions happen once so a nil client disables the
	// redis-backed middleware instead of panicking on a typed nil.
	var idempotencyStore redis.IdempotencyStore
	var dbPinger, cachePinger db.Pinger
	if redisClient != nil {
		idempotencyStore = redisClient
		cachePinger = redisClient
	}
	if database != nil {
		dbPinger = database
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)
	rateLimiter := func(policy middleware.AuthRateLimitPolicy) func(http.Handler) http.Handler {
		if redisClient == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return middleware.AuthRateLimit(policy, redisClient, logg)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbPinger, cachePinger))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(rateLimiter(registerPolicy)).
			Post("/register", controllers.Register(services.Auth, logg))
		r.With(rateLimiter(loginPolicy)).
			Post("/login", controllers.Login(services.Auth, logg))
	})

	// Public storefront. Anonymous visitors can browse; a valid token is
	// still honored so staff-only filters work on the same endpoints.
	r.Route("/api/v1/catalog", func(r chi.Router) {
		r.Use(middleware.AuthOptional(cfg.JWT, logg))
		r.Get("/categories", controllers.ListCategories(services.Catalog, logg))
		r.Get("/products", controllers.ListProducts(services.Catalog, logg))
		r.Get("/products/{productId}", controllers.GetProduct(services.Catalog, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(services.Cart, logg))
			r.Post("/items", controllers.AddCartItem(services.Cart, logg))
			r.Patch("/items/{itemId}", controllers.UpdateCartItem(services.Cart, logg))
			r.Delete("/items/{itemId}", controllers.RemoveCartItem(services.Cart, logg))
			r.Delete("/", controllers.ClearCart(services.Cart, logg))
		})

		r.Post("/checkout", controllers.Checkout(services.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListMyOrders(services.Orders, logg))
			r.Get("/{orderId}", controllers.GetMyOrder(services.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.CancelMyOrder(services.Orders, logg))
			r.Get("/{orderId}/feedback", controllers.GetOrderFeedback(services.Feedback, logg))
		})

		r.Post("/feedback", controllers.CreateFeedback(services.Feedback, logg))

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", controllers.ListMyMessages(services.Messages, logg))
			r.Post("/", controllers.CreateMessage(services.Messages, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireStaff(logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/categories", func(r chi.Router) {
			r.Post("/", controllers.CreateCategory(services.Catalog, logg))
			r.Patch("/{categoryId}", controllers.UpdateCategory(services.Catalog, logg))
			r.Delete("/{categoryId}", controllers.DeleteCategory(services.Catalog, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/", controllers.CreateProduct(services.Catalog, logg))
			r.Patch("/{productId}", controllers.UpdateProduct(services.Catalog, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(services.Catalog, logg))
			r.Put("/{productId}/stock", controllers.SetProductStock(services.Catalog, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminListOrders(services.Orders, logg))
			r.Get("/{orderId}", controllers.AdminGetOrder(services.Orders, logg))
			r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(services.Orders, logg))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/", controllers.AdminListMessages(services.Messages, logg))
			r.Post("/{messageId}/read", controllers.MarkMessageRead(services.Messages, logg))
		})
	})

	return r
}
