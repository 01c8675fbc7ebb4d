// Package ws bridges browser clients onto the binary game protocol. Each
// accepted WebSocket is wrapped as a net.Conn carrying binary frames and
// handed to the lobby, which treats it exactly like a raw TCP client.
package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/tycoon-game/server/internal/lobby"
)

func Handler(l *lobby.Lobby, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			log.Debugw("websocket accept failed", "remote", r.RemoteAddr, "err", err)
			return
		}

		// Background context: the conn outlives this handler and is owned
		// by the lobby until it closes the socket.
		conn := websocket.NetConn(context.Background(), c, websocket.MessageBinary)
		l.Join(conn)
	}
}
