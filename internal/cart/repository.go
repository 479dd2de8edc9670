package cart

import (
	"context"
	"errors"

	"github.com/jafarshop/storefront/internal/domain"
)

var (
	// ErrSnapshotNotFound is returned by Load when the session has no saved cart
	ErrSnapshotNotFound = errors.New("cart snapshot not found")
	// ErrStaleSnapshot is returned by Save when the stored version is not the expected one
	ErrStaleSnapshot = errors.New("cart snapshot is stale")
)

// Snapshot is the persisted form of a session cart. Generation is a random
// id that changes whenever the cart starts over, so checkout tokens are
// never reused even when Version restarts.
type Snapshot struct {
	domain.Cart
	Version    int64  `json:"version"`
	Generation string `json:"generation,omitempty"`
}

// Repository persists one snapshot per session. Save must only succeed when
// the stored version equals expectedVersion (0 means nothing stored yet).
type Repository interface {
	Load(ctx context.Context, sessionID string) (Snapshot, error)
	Save(ctx context.Context, sessionID string, snapshot Snapshot, expectedVersion int64) error
}
