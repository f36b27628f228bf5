// Package routes assembles the chi router from the controllers and
// middleware stack.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/svelazco/storeflow-backend/api/controllers"
	"github.com/svelazco/storeflow-backend/api/middleware"
	"github.com/svelazco/storeflow-backend/internal/auth"
	"github.com/svelazco/storeflow-backend/internal/availability"
	"github.com/svelazco/storeflow-backend/internal/orders"
	"github.com/svelazco/storeflow-backend/internal/products"
	"github.com/svelazco/storeflow-backend/internal/reports"
	"github.com/svelazco/storeflow-backend/pkg/config"
	"github.com/svelazco/storeflow-backend/pkg/logger"
	"github.com/svelazco/storeflow-backend/pkg/redis"
)

// Dependencies carries everything the router wires together.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Products *products.Service
	Orders   *orders.Service
	Reports  *reports.Service
	Auth     *auth.Service
	Prober   *availability.Prober
	Redis    *redis.Client
	Registry *prometheus.Registry
}

// New builds the full HTTP surface.
func New(deps Dependencies) http.Handler {
	logg := deps.Logger
	jwtCfg := deps.Config.JWT

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logg))
	r.Use(middleware.Recoverer(logg))

	r.Get("/health/live", controllers.Live())
	r.Get("/health/ready", controllers.Ready(deps.Prober))

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.LoginRateLimit(deps.Redis, deps.Config.AuthRateLimit, logg)).
				Post("/login", controllers.Login(deps.Auth, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(deps.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(deps.Products, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(jwtCfg, logg))
				r.Post("/", controllers.CreateProduct(deps.Products, logg))
				r.Put("/{productId}", controllers.UpdateProduct(deps.Products, logg))
				r.Delete("/{productId}", controllers.DeleteProduct(deps.Products, logg))
				r.Patch("/{productId}/status", controllers.SetProductStatus(deps.Products, logg))
				r.Put("/{productId}/stock/{branch}", controllers.SetBranchStock(deps.Products, logg))
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(deps.Orders, logg))
			r.Get("/{orderId}", controllers.GetOrder(deps.Orders, logg))
			r.Post("/", controllers.CreateOrder(deps.Orders, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(jwtCfg, logg))
				r.Patch("/{orderId}/status", controllers.SetOrderStatus(deps.Orders, logg))
				r.Delete("/{orderId}", controllers.DeleteOrder(deps.Orders, logg))
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(middleware.Auth(jwtCfg, logg))
			r.Get("/inventory", controllers.InventoryReport(deps.Reports, logg))
			r.Get("/sales", controllers.SalesReport(deps.Reports, logg))
		})
	})

	return r
}
