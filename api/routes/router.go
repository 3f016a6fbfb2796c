package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/phamiz/ecommerce-backend/api/controllers"
	"github.com/phamiz/ecommerce-backend/api/middleware"
	"github.com/phamiz/ecommerce-backend/internal/addresses"
	"github.com/phamiz/ecommerce-backend/internal/auth"
	"github.com/phamiz/ecommerce-backend/internal/cart"
	"github.com/phamiz/ecommerce-backend/internal/orders"
	"github.com/phamiz/ecommerce-backend/internal/products"
	"github.com/phamiz/ecommerce-backend/internal/reviews"
	"github.com/phamiz/ecommerce-backend/internal/users"
	"github.com/phamiz/ecommerce-backend/pkg/auth/session"
	"github.com/phamiz/ecommerce-backend/pkg/config"
	"github.com/phamiz/ecommerce-backend/pkg/db"
	"github.com/phamiz/ecommerce-backend/pkg/enums"
	"github.com/phamiz/ecommerce-backend/pkg/logger"
	"github.com/phamiz/ecommerce-backend/pkg/metrics"
	"github.com/phamiz/ecommerce-backend/pkg/redis"
)

// Dependencies wires every service the HTTP layer needs.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	DB    *db.Client
	Cache *redis.Client

	Sessions    session.AccessSessionChecker
	HTTPMetrics *metrics.HTTPMetrics
	Registry    *prometheus.Registry

	Register  auth.RegisterService
	Auth      auth.Service
	Users     users.Service
	Products  products.Service
	Cart      cart.Service
	Orders    orders.Service
	Addresses addresses.Service
	Reviews   reviews.Service
}

// New builds the full route tree.
func New(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()

	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.Metrics(deps.HTTPMetrics))
	r.Use(middleware.CORS(cfg.CORS))

	var database, cache controllers.Pinger
	if deps.DB != nil {
		database = deps.DB
	}
	if deps.Cache != nil {
		cache = deps.Cache
	}
	r.Get("/healthz", controllers.HealthLive())
	r.Get("/readyz", controllers.HealthReady(database, cache, logg))
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", controllers.Register(deps.Register, logg))
		r.Post("/login", controllers.Login(deps.Auth, logg))
		r.Post("/refresh", controllers.Refresh(deps.Auth, logg))
	})

	// Public catalog.
	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ListProducts(deps.Products, logg))
		r.Get("/{productID}", controllers.GetProduct(deps.Products, logg))
		r.Get("/{productID}/reviews", controllers.ListReviews(deps.Reviews, logg))
		r.Get("/{productID}/rating", controllers.GetRating(deps.Reviews, logg))
	})

	// Payment collaborator callback, authenticated by signature rather
	// than a bearer token.
	r.Post("/webhooks/payments", controllers.PaymentWebhook(deps.Orders, cfg.Payments, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))

		r.Post("/auth/logout", controllers.Logout(deps.Auth, logg))
		r.Get("/me", controllers.Me(deps.Users, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.GetCart(deps.Cart, logg))
			r.Put("/add", controllers.AddCartItem(deps.Cart, logg))
			r.Put("/items/{itemID}", controllers.UpdateCartItem(deps.Cart, logg))
			r.Delete("/items/{itemID}", controllers.RemoveCartItem(deps.Cart, logg))
			r.Delete("/", controllers.ClearCart(deps.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(deps.Orders, logg))
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/{orderID}", controllers.GetOrder(deps.Orders, logg))
			r.Post("/{orderID}/cancel", controllers.CancelOrder(deps.Orders, logg))
			r.Delete("/{orderID}", controllers.DeleteOrder(deps.Orders, logg))
		})

		r.Route("/addresses", func(r chi.Router) {
			r.Post("/", controllers.CreateAddress(deps.Addresses, logg))
			r.Get("/", controllers.ListAddresses(deps.Addresses, logg))
			r.Put("/{addressID}", controllers.UpdateAddress(deps.Addresses, logg))
			r.Delete("/{addressID}", controllers.DeleteAddress(deps.Addresses, logg))
		})

		r.Route("/products/{productID}", func(r chi.Router) {
			r.Post("/reviews", controllers.CreateReview(deps.Reviews, logg))
			r.Put("/rating", controllers.RateProduct(deps.Reviews, logg))
		})
		r.Delete("/reviews/{reviewID}", controllers.DeleteReview(deps.Reviews, logg))

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, string(enums.UserRoleAdmin)))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.CreateProduct(deps.Products, logg))
				r.Put("/{productID}", controllers.UpdateProduct(deps.Products, logg))
				r.Delete("/{productID}", controllers.DeleteProduct(deps.Products, logg))
			})

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.ListAllOrders(deps.Orders, logg))
				r.Put("/{orderID}/confirm", controllers.UpdateOrderStatus(deps.Orders, enums.OrderStatusConfirmed, logg))
				r.Put("/{orderID}/ship", controllers.UpdateOrderStatus(deps.Orders, enums.OrderStatusShipped, logg))
				r.Put("/{orderID}/deliver", controllers.UpdateOrderStatus(deps.Orders, enums.OrderStatusDelivered, logg))
				r.Put("/{orderID}/cancel", controllers.CancelOrder(deps.Orders, logg))
				r.Put("/{orderID}/confirm-payment", controllers.ConfirmPayment(deps.Orders, logg))
				r.Delete("/{orderID}", controllers.DeleteOrder(deps.Orders, logg))
			})
		})
	})

	return r
}
