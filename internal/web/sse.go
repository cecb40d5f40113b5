// Package web delivers room broadcast events to connected viewers over
// SSE and WebSocket.
package web

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/go-chi/chi/v5"

	"github.com/viddel/wrooms/internal/broker"
	"github.com/viddel/wrooms/internal/models"
	"github.com/viddel/wrooms/internal/utils"
)

// heartbeatInterval keeps SSE connections alive through proxies
const heartbeatInterval = 15 * time.Second

// SSEManager streams room events to clients as server-sent events.
// Each connection subscribes to its room's broadcast topic; events a
// disconnected client misses are not replayed, the client refetches the
// room after reconnecting.
type SSEManager struct {
	broker   *broker.Broker
	shutdown chan struct{}
	once     sync.Once
	nextID   uint64
	mu       sync.Mutex
}

// NewSSEManager creates a new server-sent events manager on the given broker
func NewSSEManager(b *broker.Broker) *SSEManager {
	return &SSEManager{
		broker:   b,
		shutdown: make(chan struct{}),
	}
}

// Shutdown closes all active SSE connections
func (sm *SSEManager) Shutdown() {
	sm.once.Do(func() {
		close(sm.shutdown)
	})
}

func (sm *SSEManager) clientID() string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.nextID++
	return strconv.FormatUint(sm.nextID, 10)
}

// ServeHTTP implements the http.Handler interface for SSE connections
func (sm *SSEManager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")
	if roomID == "" {
		http.Error(w, "room id is required", http.StatusBadRequest)
		return
	}

	// Required headers for SSE; disable proxy buffering so events are
	// delivered as they happen
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	clientID := sm.clientID()
	sub := sm.broker.Subscribe(models.RoomTopic(roomID))
	defer sm.broker.Unsubscribe(sub)

	log.Printf("SSE client %s subscribed to room %s from %s", clientID, utils.SanitizeLogString(roomID), r.RemoteAddr)
	defer log.Printf("SSE client %s disconnected from room %s", clientID, utils.SanitizeLogString(roomID))

	// Retry directive plus an initial event so clients know to load the
	// current room state through the read API
	fmt.Fprintf(w, "retry: 5000\n")
	sse.Encode(w, sse.Event{
		Event: "connected",
		Data:  map[string]string{"id": clientID, "room_id": roomID},
	})
	flusher.Flush()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	done := r.Context().Done()
	eventID := 0

	for {
		select {
		case <-done:
			return
		case <-sm.shutdown:
			return
		case <-heartbeat.C:
			// Lightweight comment line as a ping
			if _, err := fmt.Fprintf(w, ": heartbeat %s\n\n", time.Now().Format(time.RFC3339)); err != nil {
				log.Printf("Error sending heartbeat to SSE client %s: %v", clientID, err)
				return
			}
			flusher.Flush()
		case event, open := <-sub.Events():
			if !open {
				return
			}

			eventID++
			err := sse.Encode(w, sse.Event{
				Id:    strconv.Itoa(eventID),
				Event: string(event.Type),
				Data:  event,
			})
			if err != nil {
				log.Printf("Error sending event to SSE client %s: %v", clientID, err)
				return
			}
			flusher.Flush()
		}
	}
}
