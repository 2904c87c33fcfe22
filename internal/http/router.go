package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/moumensalem/masroof/internal/http/auth"
	"github.com/moumensalem/masroof/internal/http/document"
)

func New(
	authV1 *auth.Handler,
	documentV1 *document.Handler,
	issuer *auth.TokenIssuer,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}))

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			authV1.Routes(r)
		})

		r.Route("/document", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			r.Use(auth.Require(issuer))
			documentV1.Routes(r)
		})
	})

	return router
}
