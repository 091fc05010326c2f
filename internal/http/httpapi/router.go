package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"server/internal/http/handlers"
	"server/internal/infra"
	"server/internal/middleware"
)

// Options carries the router's cross-cutting configuration.
type Options struct {
	Logger         infra.Logger
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/stats", app.StatsSummary)

	r.Route("/v1/sites", func(r chi.Router) {
		r.Post("/", app.SitesCreate)
		r.Get("/{id}", app.SitesGet)
		r.Get("/{id}/status", app.SitesStatus)
		r.Get("/{id}/export", app.SitesExport)
	})

	r.Route("/v1/jobs", func(r chi.Router) {
		r.Get("/{id}", app.JobsGet)
	})

	return r
}
