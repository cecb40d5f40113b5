// Package memory provides an in-memory implementation of the repository interface
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/viddel/wrooms/internal/models"
	"github.com/viddel/wrooms/internal/repository"
)

// ErrNotFound is returned when a requested room is not found
var ErrNotFound = repository.ErrNotFound

// roomState holds the stored form of a room. The member set lives in its
// own map so membership changes stay atomic under the repository lock and
// document saves never overwrite them.
type roomState struct {
	id             string
	name           string
	creatorID      string
	currentVideoID string
	active         bool
	createdAt      time.Time
	memberIDs      map[string]struct{}
}

// Repository implements the repository interface with in-memory storage
type Repository struct {
	roomStates map[string]*roomState
	mu         sync.RWMutex
}

// NewRepository creates a new in-memory repository
func NewRepository() *Repository {
	return &Repository{
		roomStates: make(map[string]*roomState),
	}
}

// toRoom converts stored state back to a Room model. Callers must hold
// at least a read lock.
func (s *roomState) toRoom() *models.Room {
	members := make([]string, 0, len(s.memberIDs))
	for id := range s.memberIDs {
		members = append(members, id)
	}
	sort.Strings(members)

	return &models.Room{
		ID:             s.id,
		Name:           s.name,
		CreatorID:      s.creatorID,
		Members:        members,
		CurrentVideoID: s.currentVideoID,
		Active:         s.active,
		CreatedAt:      s.createdAt,
	}
}

// SaveRoom saves the room document. The member set of an existing room
// is left untouched; a new room starts with an empty set.
func (r *Repository) SaveRoom(ctx context.Context, room *models.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, exists := r.roomStates[room.ID]
	if !exists {
		state = &roomState{
			id:        room.ID,
			createdAt: room.CreatedAt,
			memberIDs: make(map[string]struct{}),
		}
		r.roomStates[room.ID] = state
	}

	state.name = room.Name
	state.creatorID = room.CreatorID
	state.currentVideoID = room.CurrentVideoID
	state.active = room.Active

	return nil
}

// GetRoom retrieves a room by ID
func (r *Repository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.roomStates[id]
	if !ok {
		return nil, ErrNotFound
	}

	return state.toRoom(), nil
}

// ListActiveRooms returns all open rooms, newest first
func (r *Repository) ListActiveRooms(ctx context.Context) ([]*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*models.Room, 0, len(r.roomStates))
	for _, state := range r.roomStates {
		if state.active {
			rooms = append(rooms, state.toRoom())
		}
	}
	sortByCreatedAtDesc(rooms)

	return rooms, nil
}

// ListRoomsByCreator returns all rooms created by the given member, newest first
func (r *Repository) ListRoomsByCreator(ctx context.Context, creatorID string) ([]*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rooms []*models.Room
	for _, state := range r.roomStates {
		if state.creatorID == creatorID {
			rooms = append(rooms, state.toRoom())
		}
	}
	sortByCreatedAtDesc(rooms)

	return rooms, nil
}

// ListRoomsByMember returns the open rooms the given member belongs to, newest first
func (r *Repository) ListRoomsByMember(ctx context.Context, memberID string) ([]*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rooms []*models.Room
	for _, state := range r.roomStates {
		if !state.active {
			continue
		}
		if _, ok := state.memberIDs[memberID]; ok {
			rooms = append(rooms, state.toRoom())
		}
	}
	sortByCreatedAtDesc(rooms)

	return rooms, nil
}

// AddMember adds a member ID to a room's member set. Returns false if the
// member was already present.
func (r *Repository) AddMember(ctx context.Context, roomID, memberID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.roomStates[roomID]
	if !ok {
		return false, ErrNotFound
	}

	if _, exists := state.memberIDs[memberID]; exists {
		return false, nil
	}
	state.memberIDs[memberID] = struct{}{}

	return true, nil
}

// RemoveMember removes a member ID from a room's member set. Returns false
// if the member was not present.
func (r *Repository) RemoveMember(ctx context.Context, roomID, memberID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.roomStates[roomID]
	if !ok {
		return false, ErrNotFound
	}

	if _, exists := state.memberIDs[memberID]; !exists {
		return false, nil
	}
	delete(state.memberIDs, memberID)

	return true, nil
}

// CountMembers counts the number of members in a room
func (r *Repository) CountMembers(ctx context.Context, roomID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.roomStates[roomID]
	if !ok {
		return 0, ErrNotFound
	}

	return len(state.memberIDs), nil
}

func sortByCreatedAtDesc(rooms []*models.Room) {
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
}
