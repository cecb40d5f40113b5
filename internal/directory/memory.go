package directory

import (
	"context"
	"strings"
	"sync"

	"github.com/viddel/wrooms/internal/models"
)

// MemoryDirectory is an in-memory member directory, used when no external
// user service is configured and in tests.
type MemoryDirectory struct {
	byUsername map[string]*models.Member
	byEmail    map[string]*models.Member
	mu         sync.RWMutex
}

// NewMemoryDirectory creates an empty in-memory directory
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{
		byUsername: make(map[string]*models.Member),
		byEmail:    make(map[string]*models.Member),
	}
}

// Register adds a member to the directory, indexed by username and email
func (d *MemoryDirectory) Register(member models.Member) {
	d.mu.Lock()
	defer d.mu.Unlock()

	m := member
	d.byUsername[m.Username] = &m
	if m.Email != "" {
		d.byEmail[m.Email] = &m
	}
}

// Resolve looks the identity up by username first, then by email
func (d *MemoryDirectory) Resolve(ctx context.Context, identity string) (*models.Member, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if m, ok := d.byUsername[identity]; ok {
		copied := *m
		return &copied, nil
	}
	if m, ok := d.byEmail[identity]; ok {
		copied := *m
		return &copied, nil
	}

	return nil, ErrIdentityNotFound
}

// Seed registers members from a "username:email" comma-separated list.
// Members without an email may be given as a bare username.
func (d *MemoryDirectory) Seed(users string) {
	for _, entry := range strings.Split(users, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		username, email, _ := strings.Cut(entry, ":")
		d.Register(models.Member{
			ID:       username,
			Username: username,
			Email:    email,
		})
	}
}
