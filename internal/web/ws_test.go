package web_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viddel/wrooms/internal/broker"
	"github.com/viddel/wrooms/internal/models"
	"github.com/viddel/wrooms/internal/web"
)

func dialRoom(t *testing.T, manager *web.WSManager, roomID string) (*websocket.Conn, func()) {
	t.Helper()

	router := chi.NewRouter()
	router.Get("/ws/rooms/{roomID}", manager.ServeHTTP)
	server := httptest.NewServer(router)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/rooms/" + roomID
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}

	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func TestWebSocketStreamsRoomEvents(t *testing.T) {
	b := broker.New()
	defer b.Close()
	manager := web.NewWSManager(b)

	conn, cleanup := dialRoom(t, manager, "room1")
	defer cleanup()

	waitForSubscriber(t, b, models.RoomTopic("room1"))
	b.Publish(models.NewVideoStartedEvent("room1", models.Video{ID: "v1", Title: "Big Buck Bunny"}, "alice"))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var event models.Event
	require.NoError(t, conn.ReadJSON(&event))

	assert.Equal(t, models.EventVideoStarted, event.Type)
	assert.Equal(t, "room1", event.RoomID)
	assert.Equal(t, "v1", event.VideoID)
	assert.Equal(t, "Big Buck Bunny", event.VideoTitle)
	assert.Equal(t, "alice", event.StartedBy)
}

func TestWebSocketTopicIsolation(t *testing.T) {
	b := broker.New()
	defer b.Close()
	manager := web.NewWSManager(b)

	conn, cleanup := dialRoom(t, manager, "room2")
	defer cleanup()

	waitForSubscriber(t, b, models.RoomTopic("room2"))
	b.Publish(models.NewRoomClosedEvent("room1", "alice"))

	conn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var event models.Event
	err := conn.ReadJSON(&event)
	assert.Error(t, err, "events for other rooms must not arrive")
}

func TestWebSocketShutdownClosesConnections(t *testing.T) {
	b := broker.New()
	defer b.Close()
	manager := web.NewWSManager(b)

	conn, cleanup := dialRoom(t, manager, "room1")
	defer cleanup()

	waitForSubscriber(t, b, models.RoomTopic("room1"))
	manager.Shutdown()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "server announces shutdown with a going-away close")
}
