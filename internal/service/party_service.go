package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/viddel/wrooms/internal/catalog"
	"github.com/viddel/wrooms/internal/directory"
	"github.com/viddel/wrooms/internal/models"
	"github.com/viddel/wrooms/internal/repository"
	"github.com/viddel/wrooms/internal/utils"
)

// EventPublisher publishes room events on their broadcast topic.
// Publishing is fire-and-forget and must never block.
type EventPublisher interface {
	Publish(event *models.Event)
}

// PartyService coordinates watch-party rooms: lifecycle, membership,
// authorization, and broadcast notification. It is stateless; all room
// state flows through the repository, so concurrent instances stay
// consistent. Every mutating operation publishes its event in the same
// call that commits the change.
type PartyService struct {
	repo      repository.Repository
	directory directory.Directory
	catalog   catalog.Catalog
	publisher EventPublisher
}

// NewPartyService creates a new PartyService. The catalog and publisher
// are optional; without a catalog videos are not validated before starting,
// and without a publisher no events are broadcast.
func NewPartyService(repo repository.Repository, dir directory.Directory, cat catalog.Catalog, pub EventPublisher) *PartyService {
	return &PartyService{
		repo:      repo,
		directory: dir,
		catalog:   cat,
		publisher: pub,
	}
}

// publish sends an event to subscribers. Broadcast failures can only drop
// events; they never affect the committed state or the caller.
func (s *PartyService) publish(event *models.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(event)
}

// publishError informs subscribers that an operation on their room failed
// after partial processing, in place of the state-change event they might
// otherwise expect.
func (s *PartyService) publishError(roomID string, err error) {
	s.publish(models.NewErrorEvent(roomID, err.Error()))
}

// resolve maps a caller-supplied username or email to the canonical member
func (s *PartyService) resolve(ctx context.Context, identity string) (*models.Member, error) {
	member, err := s.directory.Resolve(ctx, identity)
	if err != nil {
		if errors.Is(err, directory.ErrIdentityNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrIdentityNotFound, utils.SanitizeLogString(identity))
		}
		return nil, fmt.Errorf("failed to resolve identity: %w", err)
	}
	return member, nil
}

// getRoom loads a room, mapping the repository sentinel to ErrRoomNotFound
func (s *PartyService) getRoom(ctx context.Context, roomID string) (*models.Room, error) {
	room, err := s.repo.GetRoom(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, utils.SanitizeLogString(roomID))
		}
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	return room, nil
}

// validateRoomName checks the room name constraints
func validateRoomName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Reason: "room name must not be empty"}
	}
	if utf8.RuneCountInString(name) > models.MaxRoomNameLength {
		return &ValidationError{Reason: fmt.Sprintf("room name must be at most %d characters", models.MaxRoomNameLength)}
	}
	return nil
}

// CreateRoom creates a new open room with the caller as creator and sole member
func (s *PartyService) CreateRoom(ctx context.Context, identity, name string) (*models.Room, error) {
	if err := validateRoomName(name); err != nil {
		return nil, err
	}

	creator, err := s.resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	room := models.NewRoom(uuid.NewString(), name, creator.ID)
	if err := s.repo.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}
	if _, err := s.repo.AddMember(ctx, room.ID, creator.ID); err != nil {
		return nil, fmt.Errorf("failed to add creator to room: %w", err)
	}

	log.Printf("Room %s created by %s", room.ID, utils.SanitizeLogString(creator.Username))
	return room, nil
}

// JoinRoom adds the caller to an open room. Joining a room the caller is
// already in, including as its creator, returns the room unchanged without
// publishing an event.
func (s *PartyService) JoinRoom(ctx context.Context, roomID, identity string) (*models.Room, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.Active {
		return nil, fmt.Errorf("%w: cannot join", ErrRoomClosed)
	}

	member, err := s.resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	// The set add is the idempotence arbiter: under concurrent joins by
	// the same member only one call observes added=true and publishes.
	added, err := s.repo.AddMember(ctx, roomID, member.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	room, err = s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if added {
		s.publish(models.NewMemberJoinedEvent(roomID, member.Username, room.MemberCount()))
		log.Printf("Member %s joined room %s (%d members)", utils.SanitizeLogString(member.Username), roomID, room.MemberCount())
	}

	return room, nil
}

// LeaveRoom removes the caller from a room. Leaving a room the caller is
// not in is a no-op. When the creator leaves, the room closes regardless
// of how many members remain.
func (s *PartyService) LeaveRoom(ctx context.Context, roomID, identity string) (*models.Room, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	// Closed rooms are terminal and never mutate again
	if !room.Active {
		return room, nil
	}

	member, err := s.resolve(ctx, identity)
	if err != nil {
		return nil, err
	}

	removed, err := s.repo.RemoveMember(ctx, roomID, member.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove member: %w", err)
	}
	if !removed {
		return room, nil
	}

	room, err = s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	closing := room.IsCreator(member.ID)
	if closing {
		room.Active = false
		if err := s.repo.SaveRoom(ctx, room); err != nil {
			return nil, fmt.Errorf("failed to close room: %w", err)
		}
	}

	s.publish(models.NewMemberLeftEvent(roomID, member.Username, room.MemberCount()))
	if closing {
		s.publish(models.NewRoomClosedEvent(roomID, member.Username))
		log.Printf("Room %s closed: creator %s left", roomID, utils.SanitizeLogString(member.Username))
	} else {
		log.Printf("Member %s left room %s (%d members)", utils.SanitizeLogString(member.Username), roomID, room.MemberCount())
	}

	return room, nil
}

// StartVideo sets the currently playing video. Only the creator may start
// a video, and only while the room is open. Failures after the room was
// loaded are reported to subscribers as an Error event in place of the
// VideoStarted they might expect.
func (s *PartyService) StartVideo(ctx context.Context, roomID, identity, videoID string) (*models.Room, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.Active {
		err := fmt.Errorf("%w: cannot start video", ErrRoomClosed)
		s.publishError(roomID, err)
		return nil, err
	}

	member, err := s.resolve(ctx, identity)
	if err != nil {
		s.publishError(roomID, err)
		return nil, err
	}
	if !room.IsCreator(member.ID) {
		s.publishError(roomID, ErrNotCreator)
		return nil, ErrNotCreator
	}

	video := models.Video{ID: videoID}
	if s.catalog != nil {
		found, err := s.catalog.GetVideo(ctx, videoID)
		if err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				err = fmt.Errorf("%w: %s", ErrVideoNotFound, utils.SanitizeLogString(videoID))
			} else {
				err = fmt.Errorf("failed to look up video: %w", err)
			}
			s.publishError(roomID, err)
			return nil, err
		}
		video = *found
	}

	room.CurrentVideoID = video.ID
	if err := s.repo.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to save room: %w", err)
	}

	s.publish(models.NewVideoStartedEvent(roomID, video, member.Username))
	log.Printf("Video %s started in room %s by %s", utils.SanitizeLogString(video.ID), roomID, utils.SanitizeLogString(member.Username))

	return room, nil
}

// CloseRoom closes a room permanently. Only the creator may close it.
// Closing an already-closed room returns the current state without
// republishing the event.
func (s *PartyService) CloseRoom(ctx context.Context, roomID, identity string) (*models.Room, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	member, err := s.resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	if !room.IsCreator(member.ID) {
		return nil, ErrNotCreator
	}

	if !room.Active {
		return room, nil
	}

	room.Active = false
	if err := s.repo.SaveRoom(ctx, room); err != nil {
		return nil, fmt.Errorf("failed to close room: %w", err)
	}

	s.publish(models.NewRoomClosedEvent(roomID, member.Username))
	log.Printf("Room %s closed by %s", roomID, utils.SanitizeLogString(member.Username))

	return room, nil
}

// GetRoom returns a snapshot of the room, open or closed
func (s *PartyService) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	return s.getRoom(ctx, roomID)
}

// ListActiveRooms returns all open rooms, newest first
func (s *PartyService) ListActiveRooms(ctx context.Context) ([]*models.Room, error) {
	return s.repo.ListActiveRooms(ctx)
}

// ListRoomsByCreator returns all rooms created by the given identity, newest first
func (s *PartyService) ListRoomsByCreator(ctx context.Context, identity string) ([]*models.Room, error) {
	member, err := s.resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRoomsByCreator(ctx, member.ID)
}

// ListRoomsWhereMember returns the open rooms the given identity belongs to, newest first
func (s *PartyService) ListRoomsWhereMember(ctx context.Context, identity string) ([]*models.Room, error) {
	member, err := s.resolve(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.repo.ListRoomsByMember(ctx, member.ID)
}
