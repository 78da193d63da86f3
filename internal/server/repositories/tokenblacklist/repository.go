// Package tokenblacklist stores revoked refresh-token identifiers (jti).
// A jti stays blacklisted at least until the token it belongs to expires;
// PurgeExpired reclaims the rest.
package tokenblacklist

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// Add blacklists a jti. The returned bool is true when the jti was
	// newly inserted and false when it was already blacklisted; repeating
	// an Add is never an error. Refresh rotation relies on the bool to
	// make two concurrent rotations of one token first-wins.
	Add(ctx context.Context, jti uuid.UUID, expiresAt time.Time) (bool, error)
	// Contains reports whether the jti has been revoked.
	Contains(ctx context.Context, jti uuid.UUID) (bool, error)
	// PurgeExpired removes entries whose tokens expired before now and
	// returns the number of rows deleted.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
