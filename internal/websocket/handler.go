package websocket

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/vibehub/backend/internal/auth"
)

// upgrader upgrades HTTP connections to WebSocket
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow connections from any origin (CORS handled by middleware)
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub            *Hub
	identity       auth.Identity
	allowAnonymous bool
}

// NewHandler creates a new WebSocket handler. With allowAnonymous, requests
// without a token connect unauthenticated; an invalid token is always
// rejected.
func NewHandler(hub *Hub, identity auth.Identity, allowAnonymous bool) *Handler {
	return &Handler{hub: hub, identity: identity, allowAnonymous: allowAnonymous}
}

// ServeWS handles WebSocket upgrade requests at /ws
// Query params: token (bearer token, optional when anonymous access is on)
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	var userID string
	if h.identity != nil {
		id, err := h.identity.Authenticate(r)
		switch {
		case err == nil:
			userID = id
		case errors.Is(err, auth.ErrMissingToken) && h.allowAnonymous:
		default:
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	} else if !h.allowAnonymous {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	// Upgrade HTTP connection to WebSocket
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.log.Warn("upgrade failed", "error", err)
		return
	}

	client := NewClient(h.hub, conn, userID)
	select {
	case h.hub.register <- client:
	case <-h.hub.stop:
		conn.Close()
		return
	}

	// Start read/write pumps in separate goroutines
	go client.WritePump()
	go client.ReadPump()
}
