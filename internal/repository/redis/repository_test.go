// Package redis_test provides tests for the Redis repository
package redis_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viddel/wrooms/internal/config"
	"github.com/viddel/wrooms/internal/models"
	"github.com/viddel/wrooms/internal/repository/redis"
)

func setupTestRedis(t *testing.T) (*redis.Repository, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cfg := config.RedisConfig{
		Enabled:   true,
		Host:      mr.Host(),
		Port:      mr.Port(),
		KeyPrefix: "test:",
		RoomTTL:   24 * time.Hour,
	}

	repo, err := redis.NewRepository(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	return repo, mr
}

// TestRedisWithURI tests connection with URI format
func TestRedisWithURI(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := config.RedisConfig{
		Enabled:   true,
		URI:       fmt.Sprintf("redis://%s:%s", mr.Host(), mr.Port()),
		KeyPrefix: "test:",
	}

	repo, err := redis.NewRepository(cfg)
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	room := models.NewRoom("roomURI", "URI Test", "alice")
	require.NoError(t, repo.SaveRoom(ctx, room))

	retrieved, err := repo.GetRoom(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, room.ID, retrieved.ID)
	assert.Equal(t, room.Name, retrieved.Name)
}

func TestRoomRepository(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	room := models.NewRoom("room123", "Movie Night", "alice")

	t.Run("SaveAndGetRoom", func(t *testing.T) {
		require.NoError(t, repo.SaveRoom(ctx, room))

		saved, err := repo.GetRoom(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, room.ID, saved.ID)
		assert.Equal(t, "Movie Night", saved.Name)
		assert.Equal(t, "alice", saved.CreatorID)
		assert.True(t, saved.Active)
		assert.Empty(t, saved.Members, "members live in the set, not the document")
	})

	t.Run("GetMissingRoom", func(t *testing.T) {
		_, err := repo.GetRoom(ctx, "missing")
		assert.ErrorIs(t, err, redis.ErrNotFound)
	})

	t.Run("SaveRoomPreservesMembers", func(t *testing.T) {
		added, err := repo.AddMember(ctx, room.ID, "alice")
		require.NoError(t, err)
		assert.True(t, added)

		room.CurrentVideoID = "v1"
		require.NoError(t, repo.SaveRoom(ctx, room))

		saved, err := repo.GetRoom(ctx, room.ID)
		require.NoError(t, err)
		assert.Equal(t, "v1", saved.CurrentVideoID)
		assert.Equal(t, []string{"alice"}, saved.Members)
	})
}

func TestMemberOperations(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	room := models.NewRoom("room456", "Movie Night", "alice")
	require.NoError(t, repo.SaveRoom(ctx, room))

	added, err := repo.AddMember(ctx, room.ID, "alice")
	require.NoError(t, err)
	assert.True(t, added)

	// Adding the same member twice reports no change
	added, err = repo.AddMember(ctx, room.ID, "alice")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = repo.AddMember(ctx, room.ID, "bob")
	require.NoError(t, err)
	assert.True(t, added)

	count, err := repo.CountMembers(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	removed, err := repo.RemoveMember(ctx, room.ID, "bob")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveMember(ctx, room.ID, "bob")
	require.NoError(t, err)
	assert.False(t, removed)

	count, err = repo.CountMembers(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Member operations on unknown rooms fail
	_, err = repo.AddMember(ctx, "missing", "bob")
	assert.ErrorIs(t, err, redis.ErrNotFound)
	_, err = repo.RemoveMember(ctx, "missing", "bob")
	assert.ErrorIs(t, err, redis.ErrNotFound)
	_, err = repo.CountMembers(ctx, "missing")
	assert.ErrorIs(t, err, redis.ErrNotFound)
}

func TestListRooms(t *testing.T) {
	repo, _ := setupTestRedis(t)
	ctx := context.Background()

	older := models.NewRoom("older", "Older Room", "alice")
	older.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.SaveRoom(ctx, older))
	_, err := repo.AddMember(ctx, "older", "alice")
	require.NoError(t, err)
	_, err = repo.AddMember(ctx, "older", "bob")
	require.NoError(t, err)

	newer := models.NewRoom("newer", "Newer Room", "alice")
	require.NoError(t, repo.SaveRoom(ctx, newer))
	_, err = repo.AddMember(ctx, "newer", "alice")
	require.NoError(t, err)

	closed := models.NewRoom("closed", "Closed Room", "bob")
	closed.Active = false
	require.NoError(t, repo.SaveRoom(ctx, closed))
	_, err = repo.AddMember(ctx, "closed", "bob")
	require.NoError(t, err)

	t.Run("ListActiveRooms", func(t *testing.T) {
		rooms, err := repo.ListActiveRooms(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 2, "closed rooms are excluded")
		assert.Equal(t, "newer", rooms[0].ID, "newest first")
		assert.Equal(t, "older", rooms[1].ID)
		assert.ElementsMatch(t, []string{"alice", "bob"}, rooms[1].Members)
	})

	t.Run("ListRoomsByCreator", func(t *testing.T) {
		rooms, err := repo.ListRoomsByCreator(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, rooms, 1, "closed rooms still show for their creator")
		assert.Equal(t, "closed", rooms[0].ID)
	})

	t.Run("ListRoomsByMember", func(t *testing.T) {
		rooms, err := repo.ListRoomsByMember(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, rooms, 1, "only open rooms count for membership")
		assert.Equal(t, "older", rooms[0].ID)
	})
}
