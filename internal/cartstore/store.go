package cartstore

import (
	"context"
	"time"
)

const (
	// Cart hash per token: cart:{token} -> field=variantId, value=qty string
	KeyCart = "cart:%s"

	// CartTTL is the idle expiration window, refreshed on every write.
	CartTTL = 7 * 24 * time.Hour
)

// Store is the ephemeral cart hash store. Implementations must agree on
// the observable contract: an absent or expired cart reads as an empty
// mapping, never an error; errors mean the store itself was unreachable
// so callers can tell "empty cart" apart from infrastructure failure.
type Store interface {
	// Get returns the full field->quantity mapping for a cart.
	Get(ctx context.Context, cartID string) (map[string]string, error)
	// SetField upserts one line quantity and refreshes the cart TTL.
	SetField(ctx context.Context, cartID, lineID, qty string) error
	// RemoveField deletes one line from the cart.
	RemoveField(ctx context.Context, cartID, lineID string) error
	// Expire sets the TTL for the whole cart record.
	Expire(ctx context.Context, cartID string, ttl time.Duration) error
}
