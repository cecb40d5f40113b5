package service

import (
	"errors"

	"github.com/viddel/wrooms/internal/directory"
)

// Errors surfaced by party operations. Callers dispatch on these with
// errors.Is / errors.As; a failed operation never partially commits.
var (
	// ErrRoomNotFound is returned when the requested room does not exist
	ErrRoomNotFound = errors.New("room not found")

	// ErrVideoNotFound is returned when the requested video is not in the catalog
	ErrVideoNotFound = errors.New("video not found")

	// ErrIdentityNotFound is returned when the caller identity cannot be resolved
	ErrIdentityNotFound = directory.ErrIdentityNotFound

	// ErrRoomClosed is returned when a state-changing operation targets a closed room
	ErrRoomClosed = errors.New("room is closed")

	// ErrNotCreator is returned when a creator-only action is attempted by another member
	ErrNotCreator = errors.New("only the room creator may perform this action")
)

// ValidationError reports malformed input, such as an empty or oversized room name
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
