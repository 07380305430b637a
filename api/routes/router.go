package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omarhegazy/modelbay-backend/api/controllers"
	webhookcontrollers "github.com/omarhegazy/modelbay-backend/api/controllers/webhooks"
	"github.com/omarhegazy/modelbay-backend/api/middleware"
	"github.com/omarhegazy/modelbay-backend/internal/catalog"
	checkoutsvc "github.com/omarhegazy/modelbay-backend/internal/checkout"
	"github.com/omarhegazy/modelbay-backend/internal/entitlements"
	paymobwebhook "github.com/omarhegazy/modelbay-backend/internal/webhooks/paymob"
	"github.com/omarhegazy/modelbay-backend/pkg/config"
	"github.com/omarhegazy/modelbay-backend/pkg/db"
	"github.com/omarhegazy/modelbay-backend/pkg/logger"
	"github.com/omarhegazy/modelbay-backend/pkg/paymob"
	"github.com/omarhegazy/modelbay-backend/pkg/redis"
)

type RouterParams struct {
	Config        *config.Config
	Logger        *logger.Logger
	DBPinger      db.Pinger
	RedisPinger   redis.Pinger
	Catalog       catalog.Service
	Checkout      checkoutsvc.Service
	Entitlements  entitlements.Service
	PaymobClient  *paymob.Client
	WebhookSvc    *paymobwebhook.Service
	WebhookGuard  *paymobwebhook.IdempotencyGuard
	MetricsGather prometheus.Gatherer
}

func NewRouter(p RouterParams) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DBPinger, p.RedisPinger))
	})

	if p.MetricsGather != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.MetricsGather, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/paymob", webhookcontrollers.PaymobWebhook(p.WebhookSvc, p.PaymobClient, p.WebhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.ListProducts(p.Catalog, logg))
			r.Get("/courses", controllers.ListCourses(p.Catalog, logg))
		})

		r.Post("/checkout", controllers.Checkout(p.Checkout, logg))
		r.Get("/access", controllers.Access(p.Entitlements, logg))
		r.Get("/library", controllers.Library(p.Entitlements, logg))
		r.Get("/downloads/{itemId}", controllers.Download(p.Entitlements, logg))
	})

	return r
}
