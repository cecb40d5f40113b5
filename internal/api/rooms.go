package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/viddel/wrooms/internal/service"
	"github.com/viddel/wrooms/internal/utils"
)

// RoomHandler handles HTTP requests for watch-party rooms
type RoomHandler struct {
	parties PartyServicer
}

// NewRoomHandler creates a new room handler backed by the given coordinator
func NewRoomHandler(parties PartyServicer) *RoomHandler {
	return &RoomHandler{
		parties: parties,
	}
}

// createRoomRequest is the body for POST /api/rooms
type createRoomRequest struct {
	Name string `json:"name"`
}

// startVideoRequest is the body for POST /api/rooms/{roomID}/video
type startVideoRequest struct {
	VideoID string `json:"video_id"`
}

// errorResponse is the JSON body returned for failed requests
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps coordinator errors onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, service.ErrRoomNotFound),
		errors.Is(err, service.ErrIdentityNotFound),
		errors.Is(err, service.ErrVideoNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotCreator):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrRoomClosed):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("Internal error handling room request: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// CreateRoom handles POST /api/rooms
func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()

	room, err := h.parties.CreateRoom(r.Context(), CallerIdentity(r), req.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, room)
}

// ListActiveRooms handles GET /api/rooms
func (h *RoomHandler) ListActiveRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.parties.ListActiveRooms(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rooms)
}

// ListMyRooms handles GET /api/rooms/mine, the rooms the caller created
func (h *RoomHandler) ListMyRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.parties.ListRoomsByCreator(r.Context(), CallerIdentity(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rooms)
}

// ListJoinedRooms handles GET /api/rooms/joined, the open rooms the caller is in
func (h *RoomHandler) ListJoinedRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.parties.ListRoomsWhereMember(r.Context(), CallerIdentity(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rooms)
}

// GetRoom handles GET /api/rooms/{roomID}
func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	room, err := h.parties.GetRoom(r.Context(), roomID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// JoinRoom handles POST /api/rooms/{roomID}/join
func (h *RoomHandler) JoinRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	room, err := h.parties.JoinRoom(r.Context(), roomID, CallerIdentity(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// LeaveRoom handles POST /api/rooms/{roomID}/leave
func (h *RoomHandler) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	room, err := h.parties.LeaveRoom(r.Context(), roomID, CallerIdentity(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// StartVideo handles POST /api/rooms/{roomID}/video
func (h *RoomHandler) StartVideo(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	var req startVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	defer r.Body.Close()

	if req.VideoID == "" {
		writeError(w, http.StatusBadRequest, "video_id is required")
		return
	}

	room, err := h.parties.StartVideo(r.Context(), roomID, CallerIdentity(r), req.VideoID)
	if err != nil {
		log.Printf("Start video failed in room %s: %v", utils.SanitizeLogString(roomID), err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// CloseRoom handles DELETE /api/rooms/{roomID}
func (h *RoomHandler) CloseRoom(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomID")

	room, err := h.parties.CloseRoom(r.Context(), roomID, CallerIdentity(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, room)
}
