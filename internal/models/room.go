package models

import (
	"time"
)

// MaxRoomNameLength is the upper bound on room names
const MaxRoomNameLength = 200

// Room represents a watch-party session hosted by a creator.
// Once Active is false the room is closed for good; closed rooms are
// kept for history and never mutated again.
type Room struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CreatorID      string    `json:"creator_id"`
	Members        []string  `json:"members"`
	CurrentVideoID string    `json:"current_video_id,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewRoom creates an open room with the creator as its only member
func NewRoom(id, name, creatorID string) *Room {
	return &Room{
		ID:        id,
		Name:      name,
		CreatorID: creatorID,
		Members:   []string{creatorID},
		Active:    true,
		CreatedAt: time.Now(),
	}
}

// IsCreator returns true if the given member id created the room
func (r *Room) IsCreator(memberID string) bool {
	return r.CreatorID == memberID
}

// IsMember returns true if the given member id is in the room
func (r *Room) IsMember(memberID string) bool {
	for _, m := range r.Members {
		if m == memberID {
			return true
		}
	}
	return false
}

// MemberCount returns the number of members in the room
func (r *Room) MemberCount() int {
	return len(r.Members)
}

// Member represents a directory user able to create and join rooms
type Member struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Video represents a playable video known to the catalog
type Video struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}
