package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/antiquestore/antique-store-backend/api/controllers"
	assetcontrollers "github.com/antiquestore/antique-store-backend/api/controllers/assets"
	invoicecontrollers "github.com/antiquestore/antique-store-backend/api/controllers/invoices"
	warrantycontrollers "github.com/antiquestore/antique-store-backend/api/controllers/warranties"
	"github.com/antiquestore/antique-store-backend/api/middleware"
	"github.com/antiquestore/antique-store-backend/internal/assets"
	"github.com/antiquestore/antique-store-backend/internal/invoices"
	"github.com/antiquestore/antique-store-backend/internal/warranties"
	"github.com/antiquestore/antique-store-backend/pkg/config"
	"github.com/antiquestore/antique-store-backend/pkg/logger"
	"github.com/antiquestore/antique-store-backend/pkg/metrics"
)

// Dependencies carries everything the router mounts. Nil services produce
// INTERNAL_ERROR responses on their routes; nil pingers are skipped by the
// readiness check.
type Dependencies struct {
	Config *config.Config
	Logger *logger.Logger

	DB      controllers.Pinger
	Redis   controllers.Pinger
	Storage controllers.Pinger

	LookupLimiter middleware.RateLimiterStore
	HTTPMetrics   *metrics.HTTPMetrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler

	Warranties warranties.Service
	Invoices   invoices.Service
	Assets     assets.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":      deps.DB,
			"redis":   deps.Redis,
			"storage": deps.Storage,
		}))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	lookupPolicy := middleware.NewRateLimitPolicy("warranty-lookup", cfg.Lookup.Window, cfg.Lookup.Limit).
		TrustingProxies(cfg.Lookup.TrustedProxyHops)
	auth := middleware.Auth(cfg.JWT, logg)
	adminOnly := middleware.RequireAdmin(logg)
	maxUpload := cfg.Assets.MaxUploadBytes()

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/warranties", func(r chi.Router) {
			r.With(middleware.RateLimit(lookupPolicy, deps.LookupLimiter, logg)).
				Get("/lookup/{code}", warrantycontrollers.Lookup(deps.Warranties, logg))

			r.Group(func(r chi.Router) {
				r.Use(auth, adminOnly)
				r.Get("/", warrantycontrollers.List(deps.Warranties, logg))
				r.Post("/", warrantycontrollers.Create(deps.Warranties, logg))
				r.Get("/export", warrantycontrollers.Export(deps.Warranties, nil, logg))
				r.Get("/order/{orderId}", warrantycontrollers.ListByOrder(deps.Warranties, logg))
				r.Get("/{id}", warrantycontrollers.Get(deps.Warranties, logg))
				r.Put("/{id}", warrantycontrollers.Update(deps.Warranties, logg))
				r.Put("/{id}/status", warrantycontrollers.UpdateStatus(deps.Warranties, logg))
				r.Delete("/{id}", warrantycontrollers.Delete(deps.Warranties, logg))
			})
		})

		r.Route("/orders/{orderId}/invoice", func(r chi.Router) {
			r.Use(auth)
			r.Get("/", invoicecontrollers.Download(deps.Invoices, logg))
			r.With(adminOnly).Post("/archive", invoicecontrollers.Archive(deps.Invoices, logg))
		})

		r.Route("/assets", func(r chi.Router) {
			r.Use(auth)
			r.Post("/avatars", assetcontrollers.UploadAvatar(deps.Assets, maxUpload, logg))

			r.Group(func(r chi.Router) {
				r.Use(adminOnly)
				r.Post("/products", assetcontrollers.UploadProductImage(deps.Assets, maxUpload, logg))
				r.Get("/metadata", assetcontrollers.Metadata(deps.Assets, logg))
				r.Delete("/", assetcontrollers.Delete(deps.Assets, logg))
				r.Post("/delete", assetcontrollers.DeleteMany(deps.Assets, logg))
				r.Get("/health", assetcontrollers.Health(deps.Assets, logg))
			})
		})
	})

	return r
}
