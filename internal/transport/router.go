package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pitabwire/touchline/internal/catalog"
	"github.com/pitabwire/touchline/internal/config"
	"github.com/pitabwire/touchline/internal/observability"
	"github.com/pitabwire/touchline/internal/session"
)

// Dependencies holds all injected dependencies for the HTTP transport layer.
type Dependencies struct {
	Config   *config.Config
	Catalog  *catalog.Catalog
	Sessions *session.Manager
	Logger   *zap.Logger
	// Metrics, when set, records request metrics for every route.
	Metrics *observability.Metrics

	HealthHandler  http.Handler
	ReadyHandler   http.Handler
	MetricsHandler http.Handler
}

// NewRouter creates a chi.Router with the full middleware pipeline and all
// route registrations. Health, readiness, and metrics endpoints skip the
// handler timeout and request logging.
func NewRouter(deps Dependencies) chi.Router {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(Recovery(logger))
	r.Use(observability.TracingMiddleware)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.MetricsMiddleware)
	}
	r.Use(RequestID)
	r.Use(CORS(deps.Config.Server.CORS))
	r.Use(SecurityHeaders)

	health := deps.HealthHandler
	if health == nil {
		health = observability.HandleHealth()
	}
	r.Method(http.MethodGet, "/health", health)
	if deps.ReadyHandler != nil {
		r.Method(http.MethodGet, "/ready", deps.ReadyHandler)
	}
	if deps.MetricsHandler != nil && deps.Config.Observability.Metrics.Enabled {
		r.Method(http.MethodGet, deps.Config.Observability.Metrics.Path, deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(HandlerTimeout(deps.Config.Server.HandlerTimeout))
		r.Use(RequestLogging(logger))

		r.Get("/tables", handleListTables(deps.Catalog))
		r.Get("/tables/{table}", handleGetTable(deps.Catalog))
		r.Get("/tables/{table}/options/{field}", handleOptions(deps.Catalog))
		r.Post("/tables/{table}/sessions", handleOpenSession(deps.Catalog, deps.Sessions))

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", handleGetSession(deps.Sessions))
			r.Delete("/", handleCloseSession(deps.Sessions))
			r.Put("/filters/{field}", handleSetFilter(deps.Sessions))
			r.Post("/sort", handleSetSort(deps.Sessions))
			r.Post("/page", handleGoToPage(deps.Sessions))
		})
	})

	return r
}
