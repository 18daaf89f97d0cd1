package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/bespinosaaco/KPAdmin/internal/auth"
	"github.com/bespinosaaco/KPAdmin/internal/handler"
	mw "github.com/bespinosaaco/KPAdmin/internal/middleware"
)

func New(
	sessionSecret string,
	formH *handler.FormHandler,
	ledgerH *handler.LedgerHandler,
	dashH *handler.DashboardHandler,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Get("/form", formH.Describe)
		r.Get("/form/template", formH.Template)
		r.Get("/ledger", ledgerH.List)
		r.Get("/dashboard", dashH.Dashboard)

		// Submitting needs the session token issued with the descriptor.
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(sessionSecret))
			r.Post("/form/submissions", formH.Submit)
		})
	})

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(r)
}
