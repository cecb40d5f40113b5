// Package directory resolves caller-supplied identities to canonical members
package directory

import (
	"context"
	"errors"

	"github.com/viddel/wrooms/internal/models"
)

// ErrIdentityNotFound is returned when no member matches the given identity
var ErrIdentityNotFound = errors.New("identity not found")

// Directory resolves an identity string, either a username or an email
// address, to the canonical member record used inside rooms.
type Directory interface {
	Resolve(ctx context.Context, identity string) (*models.Member, error)
}
