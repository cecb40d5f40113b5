package api

import (
	"context"

	"github.com/viddel/wrooms/internal/models"
)

// PartyServicer defines the coordinator operations needed by API handlers
type PartyServicer interface {
	CreateRoom(ctx context.Context, identity, name string) (*models.Room, error)
	JoinRoom(ctx context.Context, roomID, identity string) (*models.Room, error)
	LeaveRoom(ctx context.Context, roomID, identity string) (*models.Room, error)
	StartVideo(ctx context.Context, roomID, identity, videoID string) (*models.Room, error)
	CloseRoom(ctx context.Context, roomID, identity string) (*models.Room, error)

	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	ListActiveRooms(ctx context.Context) ([]*models.Room, error)
	ListRoomsByCreator(ctx context.Context, identity string) ([]*models.Room, error)
	ListRoomsWhereMember(ctx context.Context, identity string) ([]*models.Room, error)
}
