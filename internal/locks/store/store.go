package store

import (
	"context"
	"time"
)

// Store is the minimal contract the lock manager needs from a shared
// key-value store: an atomic set-if-absent with expiry and an atomic
// compare-and-delete. Both must execute as a single step at the store so
// there is no check-then-act window between verifying ownership and
// mutating the key.
type Store interface {
	// TrySet writes token under key with the given ttl only if the key is
	// absent (or its previous holder's lease has lapsed). Returns false
	// without side effect when another live holder owns the key.
	TrySet(ctx context.Context, key, token string, ttl time.Duration) (bool, error)

	// ConditionalDelete removes key only if the stored value equals token.
	// Returns false when the key is absent or owned by someone else.
	ConditionalDelete(ctx context.Context, key, token string) (bool, error)

	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
}
