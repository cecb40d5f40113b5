// Package repository defines the interface for room storage
package repository

import (
	"context"
	"errors"

	"github.com/viddel/wrooms/internal/models"
)

// ErrNotFound is returned when a requested room does not exist
var ErrNotFound = errors.New("room not found")

// Repository defines the interface for storing and retrieving room state.
//
// Membership mutation is atomic at the storage layer: AddMember and
// RemoveMember operate on a set primitive, never through a read-modify-write
// of the whole room, so concurrent joins and leaves cannot lose updates.
// SaveRoom writes only the room document (name, creator, video, active,
// created_at) and never touches the member set of an existing room.
type Repository interface {
	// Room document operations
	SaveRoom(ctx context.Context, room *models.Room) error
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	ListActiveRooms(ctx context.Context) ([]*models.Room, error)
	ListRoomsByCreator(ctx context.Context, creatorID string) ([]*models.Room, error)
	ListRoomsByMember(ctx context.Context, memberID string) ([]*models.Room, error)

	// Membership operations - atomic add/remove on the member set.
	// The boolean result reports whether the set actually changed,
	// which the coordinator uses for join/leave idempotence.
	AddMember(ctx context.Context, roomID, memberID string) (bool, error)
	RemoveMember(ctx context.Context, roomID, memberID string) (bool, error)
	CountMembers(ctx context.Context, roomID string) (int, error)
}
