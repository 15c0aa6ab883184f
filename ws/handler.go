// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"knockout/engine"
)

// Handler upgrades GET /ws requests into live event connections.
type Handler struct {
	engine   *engine.Engine
	upgrader websocket.Upgrader
}

func NewHandler(eng *engine.Engine) *Handler {
	return &Handler{
		engine: eng,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The HTTP layer already answers CORS; the audience connects
			// from whatever origin the organizer shared.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	client := newClient(h.engine, conn)
	go client.writePump()
	go client.readPump()

	// An initial join may come as a query parameter instead of a frame.
	if competitionID := r.URL.Query().Get("competition"); competitionID != "" {
		client.join(competitionID)
	}
}
