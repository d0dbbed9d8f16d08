package ws

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mysupport/mysupport/models"
)

// SessionValidator resolves a session token into its user.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*models.User, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler upgrades GET /ws?token=<session token>.
type Handler struct {
	hub       *Hub
	validator SessionValidator
}

func NewHandler(hub *Hub, validator SessionValidator) *Handler {
	return &Handler{hub: hub, validator: validator}
}

// HandleConnection authenticates the query token, upgrades and blocks until
// the connection closes. Browsers cannot set headers on a WebSocket
// handshake, hence the query parameter.
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	user, err := h.validator.ValidateSession(r.Context(), token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.log.Warn("upgrade failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		userID: user.ID,
		send:   make(chan []byte, sendBufferSize),
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.stop:
		conn.Close()
		return
	}

	go client.WritePump()
	client.ReadPump()
}
