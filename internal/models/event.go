package models

import (
	"time"
)

// EventType identifies the kind of room event being broadcast
type EventType string

const (
	EventMemberJoined EventType = "MEMBER_JOINED"
	EventMemberLeft   EventType = "MEMBER_LEFT"
	EventVideoStarted EventType = "VIDEO_STARTED"
	EventRoomClosed   EventType = "ROOM_CLOSED"
	EventError        EventType = "ERROR"
)

// Event is a state-change notification published on a room's topic.
// Events are advisory refresh hints with at-most-once delivery; the
// persisted room is the source of truth and clients that miss an event
// resynchronize by fetching the room.
type Event struct {
	Type        EventType `json:"type"`
	RoomID      string    `json:"room_id"`
	Identity    string    `json:"identity,omitempty"`
	MemberCount int       `json:"member_count,omitempty"`
	VideoID     string    `json:"video_id,omitempty"`
	VideoTitle  string    `json:"video_title,omitempty"`
	StartedBy   string    `json:"started_by,omitempty"`
	ClosedBy    string    `json:"closed_by,omitempty"`
	Message     string    `json:"message,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// RoomTopic returns the broadcast topic for a room
func RoomTopic(roomID string) string {
	return "room:" + roomID
}

// Topic returns the broadcast topic the event belongs on
func (e *Event) Topic() string {
	return RoomTopic(e.RoomID)
}

// NewMemberJoinedEvent builds the event published when a member joins a room
func NewMemberJoinedEvent(roomID, username string, memberCount int) *Event {
	return &Event{
		Type:        EventMemberJoined,
		RoomID:      roomID,
		Identity:    username,
		MemberCount: memberCount,
		Timestamp:   time.Now(),
	}
}

// NewMemberLeftEvent builds the event published when a member leaves a room
func NewMemberLeftEvent(roomID, username string, memberCount int) *Event {
	return &Event{
		Type:        EventMemberLeft,
		RoomID:      roomID,
		Identity:    username,
		MemberCount: memberCount,
		Timestamp:   time.Now(),
	}
}

// NewVideoStartedEvent builds the event published when the creator starts a video
func NewVideoStartedEvent(roomID string, video Video, startedBy string) *Event {
	return &Event{
		Type:       EventVideoStarted,
		RoomID:     roomID,
		VideoID:    video.ID,
		VideoTitle: video.Title,
		StartedBy:  startedBy,
		Timestamp:  time.Now(),
	}
}

// NewRoomClosedEvent builds the event published when a room is closed
func NewRoomClosedEvent(roomID, closedBy string) *Event {
	return &Event{
		Type:      EventRoomClosed,
		RoomID:    roomID,
		ClosedBy:  closedBy,
		Timestamp: time.Now(),
	}
}

// NewErrorEvent builds the event published in place of a state-change event
// when an operation fails after partial processing
func NewErrorEvent(roomID, message string) *Event {
	return &Event{
		Type:      EventError,
		RoomID:    roomID,
		Message:   message,
		Timestamp: time.Now(),
	}
}
