package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Route("/players", func(r chi.Router) {
			r.Get("/", c.listPlayers)
			r.Route("/{player-id}", func(r chi.Router) {
				r.Use(c.playerIdMw)
				r.Get("/", c.getPlayer)
				r.Post("/actions", c.invokeAction)
			})
		})
		r.Route("/ws", func(r chi.Router) {
			r.Get("/host", c.hostPlayer)
			r.With(c.playerIdMw).Get("/players/{player-id}/watch", c.watchPlayer)
		})
	})

	return r
}
