package memory_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viddel/wrooms/internal/models"
	"github.com/viddel/wrooms/internal/repository/memory"
)

func TestSaveAndGetRoom(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	room := models.NewRoom("room1", "Movie Night", "alice")
	require.NoError(t, repo.SaveRoom(ctx, room))
	_, err := repo.AddMember(ctx, room.ID, "alice")
	require.NoError(t, err)

	saved, err := repo.GetRoom(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, "room1", saved.ID)
	assert.Equal(t, "Movie Night", saved.Name)
	assert.Equal(t, "alice", saved.CreatorID)
	assert.Equal(t, []string{"alice"}, saved.Members)
	assert.True(t, saved.Active)

	_, err = repo.GetRoom(ctx, "missing")
	assert.ErrorIs(t, err, memory.ErrNotFound)
}

func TestSaveRoomPreservesMembers(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	room := models.NewRoom("room1", "Movie Night", "alice")
	require.NoError(t, repo.SaveRoom(ctx, room))
	_, err := repo.AddMember(ctx, room.ID, "alice")
	require.NoError(t, err)
	_, err = repo.AddMember(ctx, room.ID, "bob")
	require.NoError(t, err)

	// A document save, as done when closing or starting a video, must not
	// clobber the member set
	room.CurrentVideoID = "v1"
	require.NoError(t, repo.SaveRoom(ctx, room))

	saved, err := repo.GetRoom(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, "v1", saved.CurrentVideoID)
	assert.ElementsMatch(t, []string{"alice", "bob"}, saved.Members)
}

func TestMemberOperations(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	room := models.NewRoom("room1", "Movie Night", "alice")
	require.NoError(t, repo.SaveRoom(ctx, room))

	t.Run("AddMember", func(t *testing.T) {
		added, err := repo.AddMember(ctx, "room1", "bob")
		require.NoError(t, err)
		assert.True(t, added)

		// Second add of the same member reports no change
		added, err = repo.AddMember(ctx, "room1", "bob")
		require.NoError(t, err)
		assert.False(t, added)

		count, err := repo.CountMembers(ctx, "room1")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("RemoveMember", func(t *testing.T) {
		removed, err := repo.RemoveMember(ctx, "room1", "bob")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = repo.RemoveMember(ctx, "room1", "bob")
		require.NoError(t, err)
		assert.False(t, removed)

		count, err := repo.CountMembers(ctx, "room1")
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("UnknownRoom", func(t *testing.T) {
		_, err := repo.AddMember(ctx, "missing", "bob")
		assert.ErrorIs(t, err, memory.ErrNotFound)

		_, err = repo.RemoveMember(ctx, "missing", "bob")
		assert.ErrorIs(t, err, memory.ErrNotFound)

		_, err = repo.CountMembers(ctx, "missing")
		assert.ErrorIs(t, err, memory.ErrNotFound)
	})
}

func TestListRooms(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	open := models.NewRoom("open", "Open Room", "alice")
	open.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, repo.SaveRoom(ctx, open))
	_, err := repo.AddMember(ctx, "open", "alice")
	require.NoError(t, err)
	_, err = repo.AddMember(ctx, "open", "bob")
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
	_, err = repo.AddMember(ctx, "closed", "alice")
	require.NoError(t, err)

	t.Run("ListActiveRooms", func(t *testing.T) {
		rooms, err := repo.ListActiveRooms(ctx)
		require.NoError(t, err)
		require.Len(t, rooms, 2, "closed rooms are excluded")
		assert.Equal(t, "newer", rooms[0].ID, "newest first")
		assert.Equal(t, "open", rooms[1].ID)
	})

	t.Run("ListRoomsByCreator", func(t *testing.T) {
		rooms, err := repo.ListRoomsByCreator(ctx, "alice")
		require.NoError(t, err)
		require.Len(t, rooms, 2)

		rooms, err = repo.ListRoomsByCreator(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, rooms, 1, "closed rooms still show for their creator")
		assert.Equal(t, "closed", rooms[0].ID)
	})

	t.Run("ListRoomsByMember", func(t *testing.T) {
		rooms, err := repo.ListRoomsByMember(ctx, "bob")
		require.NoError(t, err)
		require.Len(t, rooms, 1, "only open rooms count for membership")
		assert.Equal(t, "open", rooms[0].ID)

		rooms, err = repo.ListRoomsByMember(ctx, "carol")
		require.NoError(t, err)
		assert.Empty(t, rooms)
	})
}

func TestConcurrentAddMember(t *testing.T) {
	repo := memory.NewRepository()
	ctx := context.Background()

	room := models.NewRoom("room1", "Movie Night", "creator")
	require.NoError(t, repo.SaveRoom(ctx, room))
	_, err := repo.AddMember(ctx, "room1", "creator")
	require.NoError(t, err)

	const joiners = 50
	var wg sync.WaitGroup
	wg.Add(joiners)

	for i := 0; i < joiners; i++ {
		go func(n int) {
			defer wg.Done()
			_, err := repo.AddMember(ctx, "room1", fmt.Sprintf("user%d", n))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	count, err := repo.CountMembers(ctx, "room1")
	require.NoError(t, err)
	assert.Equal(t, joiners+1, count, "no concurrent join may be lost")
}
