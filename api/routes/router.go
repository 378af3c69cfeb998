package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vendorhub/vendorhub-backend/api/controllers"
	ordercontrollers "github.com/vendorhub/vendorhub-backend/api/controllers/orders"
	vendorcontrollers "github.com/vendorhub/vendorhub-backend/api/controllers/vendors"
	"github.com/vendorhub/vendorhub-backend/api/middleware"
	"github.com/vendorhub/vendorhub-backend/internal/orders"
	"github.com/vendorhub/vendorhub-backend/internal/performance"
	"github.com/vendorhub/vendorhub-backend/pkg/config"
	"github.com/vendorhub/vendorhub-backend/pkg/enums"
	"github.com/vendorhub/vendorhub-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient controllers.Pinger,
	redisClient controllers.Pinger,
	ordersSvc orders.Service,
	performanceSvc performance.Service,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": dbClient,
			"redis":    redisClient,
		}))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(ordersSvc, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersSvc, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.ActorRoleBuyer, logg))
				r.Post("/", ordercontrollers.Create(ordersSvc, logg))
				r.Put("/{orderId}", ordercontrollers.Update(ordersSvc, logg))
				r.Delete("/{orderId}", ordercontrollers.Delete(ordersSvc, logg))
			})

			r.With(middleware.RequireRole(enums.ActorRoleVendor, logg)).
				Post("/{orderId}/acknowledge", ordercontrollers.Acknowledge(ordersSvc, logg))
		})

		r.Route("/vendors/{vendorId}", func(r chi.Router) {
			r.Get("/performance", vendorcontrollers.Performance(performanceSvc, logg))
			r.Get("/performance/history", vendorcontrollers.History(performanceSvc, logg))
		})
	})

	return r
}
