package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/kasbook/internal/http/account"
	"github.com/MrJamesThe3rd/kasbook/internal/http/connectivity"
	"github.com/MrJamesThe3rd/kasbook/internal/http/importcsv"
	"github.com/MrJamesThe3rd/kasbook/internal/http/syncer"
	"github.com/MrJamesThe3rd/kasbook/internal/http/transaction"
)

type Handlers struct {
	Accounts     *account.Handler
	Transactions *transaction.Handler
	Sync         *syncer.Handler
	Import       *importcsv.Handler
	Connectivity *connectivity.Handler
}

// New builds the API router. When secret is non-empty every /api/v1 route
// requires an HS256 bearer token signed with it.
func New(h Handlers, secret string) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		if secret != "" {
			r.Use(RequireToken([]byte(secret)))
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Accounts.Routes(r)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Transactions.Routes(r)
		})

		r.Route("/sync", h.Sync.Routes)
		r.Route("/import", h.Import.Routes)

		r.Route("/connectivity", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			h.Connectivity.Routes(r)
		})
	})

	return router
}
