// Package redis provides a Redis/Valkey implementation of the repository interface
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/viddel/wrooms/internal/config"
	"github.com/viddel/wrooms/internal/models"
	"github.com/viddel/wrooms/internal/repository"
)

// ErrNotFound is returned when a requested room is not found
var ErrNotFound = repository.ErrNotFound

// roomDoc is the stored form of a room. The member set is kept in a
// separate Redis SET so SADD/SREM stay atomic and document saves never
// clobber concurrent membership changes.
type roomDoc struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CreatorID      string    `json:"creator_id"`
	CurrentVideoID string    `json:"current_video_id,omitempty"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Repository implements the repository interface with Redis storage
type Repository struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRepository creates a new Redis repository
func NewRepository(cfg config.RedisConfig) (*Repository, error) {
	var client *redis.Client

	// Use URI if provided, otherwise build connection from individual parameters
	if cfg.URI != "" {
		opt, err := redis.ParseURL(cfg.URI)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URI: %w", err)
		}

		if opt.DB == 0 {
			opt.DB = cfg.DB
		}
		if opt.Password == "" && cfg.Password != "" {
			opt.Password = cfg.Password
		}

		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Repository{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       cfg.RoomTTL,
	}, nil
}

// Close closes the Redis connection
func (r *Repository) Close() error {
	return r.client.Close()
}

// roomKey returns the Redis key for a room document
func (r *Repository) roomKey(id string) string {
	return fmt.Sprintf("%srooms:%s", r.keyPrefix, id)
}

// memberSetKey returns the Redis key for a room's member set
func (r *Repository) memberSetKey(roomID string) string {
	return fmt.Sprintf("%srooms:%s:members", r.keyPrefix, roomID)
}

// SaveRoom saves the room document. Members are managed separately
// through AddMember/RemoveMember.
func (r *Repository) SaveRoom(ctx context.Context, room *models.Room) error {
	doc := roomDoc{
		ID:             room.ID,
		Name:           room.Name,
		CreatorID:      room.CreatorID,
		CurrentVideoID: room.CurrentVideoID,
		Active:         room.Active,
		CreatedAt:      room.CreatedAt,
	}

	data, err := json.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal room: %w", err)
	}

	if err := r.client.Set(ctx, r.roomKey(room.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save room: %w", err)
	}

	return nil
}

// GetRoom retrieves a room by ID, including its member set
func (r *Repository) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	data, err := r.client.Get(ctx, r.roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	var doc roomDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	members, err := r.client.SMembers(ctx, r.memberSetKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room members: %w", err)
	}
	sort.Strings(members)

	return docToRoom(&doc, members), nil
}

// listDocs loads every room document in one MGET roundtrip
func (r *Repository) listDocs(ctx context.Context) ([]*roomDoc, error) {
	pattern := r.roomKey("*")
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	// Drop member-set keys matched by the wildcard
	docKeys := keys[:0]
	for _, k := range keys {
		if !strings.HasSuffix(k, ":members") {
			docKeys = append(docKeys, k)
		}
	}

	if len(docKeys) == 0 {
		return []*roomDoc{}, nil
	}

	values, err := r.client.MGet(ctx, docKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get room data: %w", err)
	}

	docs := make([]*roomDoc, 0, len(values))
	for _, v := range values {
		strData, ok := v.(string)
		if !ok {
			continue
		}

		var doc roomDoc
		if err := json.Unmarshal([]byte(strData), &doc); err != nil {
			continue
		}
		docs = append(docs, &doc)
	}

	return docs, nil
}

// withMembers resolves the member set for each document and builds Room models
func (r *Repository) withMembers(ctx context.Context, docs []*roomDoc) ([]*models.Room, error) {
	rooms := make([]*models.Room, 0, len(docs))
	for _, doc := range docs {
		members, err := r.client.SMembers(ctx, r.memberSetKey(doc.ID)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to get room members: %w", err)
		}
		sort.Strings(members)
		rooms = append(rooms, docToRoom(doc, members))
	}
	sortByCreatedAtDesc(rooms)

	return rooms, nil
}

// ListActiveRooms returns all open rooms, newest first
func (r *Repository) ListActiveRooms(ctx context.Context) ([]*models.Room, error) {
	docs, err := r.listDocs(ctx)
	if err != nil {
		return nil, err
	}

	active := docs[:0]
	for _, doc := range docs {
		if doc.Active {
			active = append(active, doc)
		}
	}

	return r.withMembers(ctx, active)
}

// ListRoomsByCreator returns all rooms created by the given member, newest first
func (r *Repository) ListRoomsByCreator(ctx context.Context, creatorID string) ([]*models.Room, error) {
	docs, err := r.listDocs(ctx)
	if err != nil {
		return nil, err
	}

	matched := docs[:0]
	for _, doc := range docs {
		if doc.CreatorID == creatorID {
			matched = append(matched, doc)
		}
	}

	return r.withMembers(ctx, matched)
}

// ListRoomsByMember returns the open rooms the given member belongs to, newest first
func (r *Repository) ListRoomsByMember(ctx context.Context, memberID string) ([]*models.Room, error) {
	docs, err := r.listDocs(ctx)
	if err != nil {
		return nil, err
	}

	var matched []*roomDoc
	for _, doc := range docs {
		if !doc.Active {
			continue
		}
		isMember, err := r.client.SIsMember(ctx, r.memberSetKey(doc.ID), memberID).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to check room membership: %w", err)
		}
		if isMember {
			matched = append(matched, doc)
		}
	}

	return r.withMembers(ctx, matched)
}

// AddMember adds a member ID to a room's member set via SADD. Returns false
// if the member was already present.
func (r *Repository) AddMember(ctx context.Context, roomID, memberID string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.roomKey(roomID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if room exists: %w", err)
	}
	if exists == 0 {
		return false, ErrNotFound
	}

	key := r.memberSetKey(roomID)
	added, err := r.client.SAdd(ctx, key, memberID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to add member: %w", err)
	}

	// Keep the member set alive as long as the room document
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
			return false, fmt.Errorf("failed to set expiry on members: %w", err)
		}
	}

	return added > 0, nil
}

// RemoveMember removes a member ID from a room's member set via SREM.
// Returns false if the member was not present.
func (r *Repository) RemoveMember(ctx context.Context, roomID, memberID string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.roomKey(roomID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check if room exists: %w", err)
	}
	if exists == 0 {
		return false, ErrNotFound
	}

	removed, err := r.client.SRem(ctx, r.memberSetKey(roomID), memberID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to remove member: %w", err)
	}

	return removed > 0, nil
}

// CountMembers counts the number of members in a room
func (r *Repository) CountMembers(ctx context.Context, roomID string) (int, error) {
	exists, err := r.client.Exists(ctx, r.roomKey(roomID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to check if room exists: %w", err)
	}
	if exists == 0 {
		return 0, ErrNotFound
	}

	count, err := r.client.SCard(ctx, r.memberSetKey(roomID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count members: %w", err)
	}

	return int(count), nil
}

func docToRoom(doc *roomDoc, members []string) *models.Room {
	return &models.Room{
		ID:             doc.ID,
		Name:           doc.Name,
		CreatorID:      doc.CreatorID,
		Members:        members,
		CurrentVideoID: doc.CurrentVideoID,
		Active:         doc.Active,
		CreatedAt:      doc.CreatedAt,
	}
}

func sortByCreatedAtDesc(rooms []*models.Room) {
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
	})
}
