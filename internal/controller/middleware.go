package controller

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/playerwall/internal/player"
	"github.com/sharetube/playerwall/internal/playerctx"
	"github.com/sharetube/playerwall/pkg/ctxlogger"
)

func (c controller) requestIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = ctxlogger.AppendCtx(ctx, slog.String("request_id", c.generateTimeBasedId()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (c controller) requestLoggingMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.logger.InfoContext(r.Context(), "request",
			"method", r.Method,
			"url", r.URL.String(),
			"remote_addr", r.RemoteAddr,
		)
		next.ServeHTTP(w, r)
	})
}

// playerIdMw provides the player id from the URL to everything below it.
func (c controller) playerIdMw(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		playerId := chi.URLParam(r, "player-id")
		ctx := playerctx.Provide(r.Context(), player.Identity(playerId))
		ctx = ctxlogger.AppendCtx(ctx, slog.String("player_id", playerId))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
