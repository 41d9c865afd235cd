// Package store provides the TTL key-value cache backing both the per-chat
// settings cache and the antispam limiter. Two implementations exist: an
// in-process map for long-poll deployments and a SQLite-backed store for
// webhook deployments where several processes may serve updates.
//
// Contract:
//   - Each individual Get/Set/Delete is atomic; no multi-key transactions.
//   - An entry whose TTL has elapsed is indistinguishable from an absent one.
//   - Expired entries are reaped lazily; callers never clean up explicitly.
package store

import (
	"context"
	"time"
)

// Store is the minimal cache surface the core needs.
type Store interface {
	// Get returns the live value for key, or ok=false when the key is
	// absent or expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set writes value under key with the given time-to-live. A ttl <= 0
	// stores nothing and deletes any live entry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
