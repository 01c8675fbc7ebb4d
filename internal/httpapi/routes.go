// Package httpapi exposes the HTTP side of the server: a liveness probe
// and the WebSocket entry point for browser clients.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tycoon-game/server/internal/lobby"
	"github.com/tycoon-game/server/internal/ws"
)

func SetupRoutes(l *lobby.Lobby, log *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(l, log))
	return r
}
