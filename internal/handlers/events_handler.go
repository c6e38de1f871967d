package handlers

import (
	"net/http"
	"time"

	"github.com/Dias221467/Friend_Manager/internal/hub"
	jwtutil "github.com/Dias221467/Friend_Manager/pkg/jwt"
	"github.com/Dias221467/Friend_Manager/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// EventsHandler streams friend request events to the authenticated user over a websocket.
type EventsHandler struct {
	Hub       *hub.Hub
	JWTSecret string
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(events *hub.Hub, jwtSecret string) *EventsHandler {
	return &EventsHandler{Hub: events, JWTSecret: jwtSecret}
}

// ServeWS authenticates with ?token= (browsers cannot set headers on a
// websocket handshake) and then forwards every event published for the user.
func (h *EventsHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "Missing token")
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket auth failed")
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	userID := claims.UserID
	client := hub.NewClient()
	h.Hub.Subscribe(userID, client)
	logger.Log.WithField("userID", userID).Info("WebSocket connected")

	done := make(chan struct{})
	go h.readPump(conn, done)
	h.writePump(conn, client, done)

	h.Hub.Unsubscribe(userID, client)
	conn.Close()
	logger.Log.WithField("userID", userID).Info("WebSocket disconnected")
}

// readPump discards client messages and closes done when the peer goes away.
func (h *EventsHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *EventsHandler) writePump(conn *websocket.Conn, client hub.Client, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
