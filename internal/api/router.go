package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/smmops/panel/internal/api/handlers"
	"github.com/smmops/panel/internal/api/middleware"
	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/db"
	"github.com/smmops/panel/internal/importer"
	"github.com/smmops/panel/internal/provider"
	"github.com/smmops/panel/internal/registry"
)

// Dependencies holds all service references needed by the API layer.
type Dependencies struct {
	Config        *config.Config
	DB            *db.DB
	Registry      *registry.Registry
	Balance       *provider.BalanceService
	Catalog       *provider.CatalogService
	Orders        *provider.OrderService
	Importer      *importer.Importer
	Troubleshoot  *provider.Troubleshooter
	HealthChecker *registry.HealthChecker
	Version       string
}

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(deps *Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.RequestLogging)
	r.Use(middleware.CORS)

	slog.Info("router initialized",
		"middleware", []string{"realIP", "recoverer", "requestLogging", "cors"},
	)

	r.Get("/api/health", handlers.HealthHandler(deps.Version))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/providers", func(r chi.Router) {
			r.Get("/", handlers.ListProvidersHandler(deps.Registry))
			r.Post("/", handlers.AddProviderHandler(deps.Registry))
			r.Post("/test", handlers.TestCandidateHandler(deps.Registry))
			r.Get("/health", handlers.ProviderHealthHandler(deps.HealthChecker))
			r.Post("/health/sweep", handlers.RunHealthSweepHandler(deps.HealthChecker))

			r.Route("/{id}", func(r chi.Router) {
				r.Put("/", handlers.UpdateProviderHandler(deps.Registry))
				r.Delete("/", handlers.DeleteProviderHandler(deps.Registry))
				r.Post("/test", handlers.TestProviderHandler(deps.Registry))
				r.Post("/troubleshoot", handlers.TroubleshootProviderHandler(deps.Registry, deps.Troubleshoot))
				r.Get("/balance", handlers.BalanceHandler(deps.Balance))
				r.Get("/services", handlers.FetchServicesHandler(deps.Catalog))
				r.Post("/import", handlers.ImportServicesHandler(deps.Importer, deps.Config))
				r.Post("/orders", handlers.PlaceOrderHandler(deps.Orders))
				r.Get("/orders/{orderID}", handlers.OrderStatusHandler(deps.Orders))
			})
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", handlers.ListCatalogHandler(deps.DB))
			r.Post("/reprice", handlers.RepriceCatalogHandler(deps.DB))
			r.Put("/{id}", handlers.UpdateCatalogServiceHandler(deps.DB))
			r.Delete("/{id}", handlers.DeleteCatalogServiceHandler(deps.DB))
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Get("/", handlers.ListProfilesHandler(deps.DB))
			r.Get("/{id}", handlers.GetProfileHandler(deps.DB))
			r.Put("/{id}", handlers.UpsertProfileHandler(deps.DB))
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", handlers.ListTransactionsHandler(deps.DB))
			r.Post("/", handlers.CreateTransactionHandler(deps.DB))
			r.Post("/{id}/settle", handlers.SettleTransactionHandler(deps.DB))
		})

		r.Route("/payment-options", func(r chi.Router) {
			r.Get("/", handlers.ListPaymentOptionsHandler(deps.DB))
			r.Post("/", handlers.UpsertPaymentOptionHandler(deps.DB))
		})
	})

	return r
}
