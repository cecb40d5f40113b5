// Package catalog exposes the video catalog consulted before starting playback
package catalog

import (
	"context"
	"errors"
	"sync"

	"github.com/viddel/wrooms/internal/models"
)

// ErrNotFound is returned when a requested video is not in the catalog
var ErrNotFound = errors.New("video not found")

// Catalog looks up playable videos by id
type Catalog interface {
	GetVideo(ctx context.Context, id string) (*models.Video, error)
}

// MemoryCatalog is an in-memory video catalog
type MemoryCatalog struct {
	videos map[string]*models.Video
	mu     sync.RWMutex
}

// NewMemoryCatalog creates an empty in-memory catalog
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		videos: make(map[string]*models.Video),
	}
}

// Add registers a video in the catalog
func (c *MemoryCatalog) Add(video models.Video) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := video
	c.videos[v.ID] = &v
}

// GetVideo retrieves a video by id
func (c *MemoryCatalog) GetVideo(ctx context.Context, id string) (*models.Video, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.videos[id]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *v
	return &copied, nil
}
