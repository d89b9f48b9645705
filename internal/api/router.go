// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bookvault/internal/accounts"
	"bookvault/internal/books"
	"bookvault/internal/ratelimit"
)

// Options configures router assembly.
type Options struct {
	Accounts *accounts.Handler
	Books    *books.Handler
	// Limiter bounds the request rate to the register and login endpoints.
	Limiter *ratelimit.Store
	// TrustProxy keys the rate limiter by X-Forwarded-For instead of the
	// socket peer address.
	TrustProxy bool
}

// NewRouter assembles the versioned HTTP surface. Book reads are public;
// mutations and logout require a bearer token.
func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(ratelimit.Middleware(opts.Limiter, ratelimit.ClientIP(opts.TrustProxy)))
			r.Post("/register", opts.Accounts.HandleRegister)
			r.Post("/login", opts.Accounts.HandleLogin)
		})

		r.Get("/books", opts.Books.HandleList)
		r.Get("/books/{id}", opts.Books.HandleGet)

		r.Group(func(r chi.Router) {
			r.Use(opts.Accounts.Middleware)
			r.Post("/logout", opts.Accounts.HandleLogout)
			r.Post("/books", opts.Books.HandleCreate)
			r.Put("/books/{id}", opts.Books.HandleUpdate)
			r.Patch("/books/{id}", opts.Books.HandleUpdate)
			r.Delete("/books/{id}", opts.Books.HandleDelete)
		})
	})

	return r
}
