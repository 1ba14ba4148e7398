package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/tagsearch/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tagsearch/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/tagsearch/internal/httpserver/mw"
)

func init() { Register(registerSearches) }

func registerSearches(r chi.Router, d deps.Deps) {
	guard := []Middleware{
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
		mw.EnforceHost(d.AllowedHosts, d.Logger),
	}
	limit := mw.RateLimit(mw.RateLimitConfig{
		RPS:        d.RateLimitRPS,
		Burst:      d.RateLimitBurst,
		MaxEntries: 10_000,
		TrustProxy: d.TrustProxy,
	})

	r.Route("/searches", func(r chi.Router) {
		r.Get("/", handlers.ListSearches(d))

		r.Route("/{tag}", func(r chi.Router) {
			r.Get("/", handlers.GetSearch(d))
			r.Get("/open", handlers.OpenSearch(d))
			r.Get("/share", handlers.ShareSearch(d))
			r.Get("/edit", handlers.EditSearch(d))

			r.Group(func(r chi.Router) {
				r.Use(guard...)
				r.With(limit).Put("/", handlers.SaveSearch(d))
				r.Delete("/", handlers.DeleteSearch(d))
				r.Post("/actions/{action}", handlers.SearchAction(d))
			})
		})
	})
}
