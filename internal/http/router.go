package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/famvest/internal/backend"
	"github.com/MrJamesThe3rd/famvest/internal/http/backup"
	"github.com/MrJamesThe3rd/famvest/internal/http/holding"
	"github.com/MrJamesThe3rd/famvest/internal/http/member"
	"github.com/MrJamesThe3rd/famvest/internal/http/portfolio"
	"github.com/MrJamesThe3rd/famvest/internal/http/report"
)

type Handlers struct {
	Members   *member.Handler
	Holdings  *holding.Handler
	Portfolio *portfolio.Handler
	Backup    *backup.Handler
	Report    *report.Handler
}

func New(h Handlers, allowedOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/members", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Members.Routes(r)
			})

			r.Route("/{memberID}/holdings", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Holdings.Routes(r)
			})
		})

		r.Route("/portfolio", h.Portfolio.Routes)
		r.Route("/backup", h.Backup.Routes)
		r.Route("/reports", h.Report.Routes)
	})

	return router
}

// NewHandlers builds every v1 handler over the wired services.
func NewHandlers(app *backend.App) Handlers {
	return Handlers{
		Members:   member.NewHandler(app.Members),
		Holdings:  holding.NewHandler(app.Holdings, app.Members),
		Portfolio: portfolio.NewHandler(app.Portfolio),
		Backup:    backup.NewHandler(app.Importer, app.Export),
		Report:    report.NewHandler(app.Report),
	}
}
