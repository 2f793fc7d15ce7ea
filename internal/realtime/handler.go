package realtime

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dkotl/macrolog/internal/userctx"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true }, // CORS is enforced before the upgrade
}

const pingInterval = 25 * time.Second

type Handlers struct {
	hub *Hub
}

func NewHandlers(hub *Hub) *Handlers {
	return &Handlers{hub: hub}
}

// HandleSync handles GET /v1/sync/today. It upgrades to WebSocket, pushes
// the current snapshot immediately, then pushes a fresh one after every
// data change until the client disconnects.
func (h *Handlers) HandleSync(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	snapshots, cancel := h.hub.Subscribe(userID)

	// Initial snapshot so the client starts from the full current state.
	if data, err := h.hub.snapshot(r.Context(), userID); err == nil {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			cancel()
			conn.Close()
			return
		}
	}

	// Single writer: snapshot pushes and keepalive pings share one loop.
	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case msg, ok := <-snapshots:
				if !ok {
					conn.Close()
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					cancel()
					conn.Close()
					return
				}
			case <-ticker.C:
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					cancel()
					conn.Close()
					return
				}
			}
		}
	}()

	// Read loop ends on client close/error.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			cancel()
			return
		}
	}
}

func userIDFromContext(ctx context.Context) string {
	if userID, ok := userctx.GetUserID(ctx); ok && strings.TrimSpace(userID) != "" {
		return userID
	}
	return "default"
}
