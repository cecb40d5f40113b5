package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures the HTTP routes for the API.
// The events handler serves the SSE subscription endpoint and the ws
// handler serves the WebSocket one; both are provided by the web package.
func SetupRoutes(parties PartyServicer, events, ws http.Handler) chi.Router {
	r := chi.NewRouter()

	// Health check endpoints for Kubernetes
	r.Get("/health/live", HealthLiveHandler)
	r.Get("/health/ready", HealthReadyHandler)

	roomHandler := NewRoomHandler(parties)

	r.Route("/api/rooms", func(r chi.Router) {
		r.Use(IdentityMiddleware)

		r.Post("/", roomHandler.CreateRoom)
		r.Get("/", roomHandler.ListActiveRooms)
		r.Get("/mine", roomHandler.ListMyRooms)
		r.Get("/joined", roomHandler.ListJoinedRooms)

		r.Route("/{roomID}", func(r chi.Router) {
			r.Get("/", roomHandler.GetRoom)
			r.Post("/join", roomHandler.JoinRoom)
			r.Post("/leave", roomHandler.LeaveRoom)
			r.Post("/video", roomHandler.StartVideo)
			r.Delete("/", roomHandler.CloseRoom)
		})
	})

	// Live subscription endpoints; the transport resynchronizes via the
	// read API after reconnects, so no identity is required here
	if events != nil {
		r.Get("/events/rooms/{roomID}", events.ServeHTTP)
	}
	if ws != nil {
		r.Get("/ws/rooms/{roomID}", ws.ServeHTTP)
	}

	return r
}
