package web

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/viddel/wrooms/internal/broker"
	"github.com/viddel/wrooms/internal/models"
	"github.com/viddel/wrooms/internal/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// WSManager streams room events to clients over WebSocket. Like the SSE
// transport it is delivery-only: clients issue state changes through the
// HTTP API and resynchronize through it after reconnecting.
type WSManager struct {
	broker   *broker.Broker
	upgrader websocket.Upgrader
	shutdown chan struct{}
	once     sync.Once
}

// NewWSManager creates a new WebSocket manager on the given broker
func NewWSManager(b *broker.Broker) *WSManager {
	return &WSManager{
		broker:   b,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin checking is the auth gateway's concern
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		shutdown: make(chan struct{}),
	}
}

// Shutdown closes all active WebSocket connections
func (wm *WSManager) Shutdown() {
	wm.once.Do(func() {
		close(wm.shutdown)
	})
}

// ServeHTTP upgrades the connection and streams the room's events until
// the client goes away
func (wm *WSManager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if roomID == "" {
		http.Error(w, "room id is required", http.StatusBadRequest)
		return
	}

	conn, err := wm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	sub := wm.broker.Subscribe(models.RoomTopic(roomID))
	log.Printf("WebSocket client subscribed to room %s from %s", utils.SanitizeLogString(roomID), r.RemoteAddr)

	closed := make(chan struct{})
	go wm.readPump(conn, closed)
	wm.writePump(conn, sub, closed)

	wm.broker.Unsubscribe(sub)
	conn.Close()
	log.Printf("WebSocket client disconnected from room %s", utils.SanitizeLogString(roomID))
}

// readPump drains inbound frames to keep pong handling alive and detects
// the client closing the connection. Clients do not send state changes
// over the socket.
func (wm *WSManager) readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards subscription events and periodic pings to the client
func (wm *WSManager) writePump(conn *websocket.Conn, sub *broker.Subscription, closed <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			return
		case <-wm.shutdown:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
			return
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case event, open := <-sub.Events():
			if !open {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("Error writing WebSocket event: %v", err)
				return
			}
		}
	}
}
