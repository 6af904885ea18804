// Package cache provides the read-through cache used for catalog pages and NFT detail.
package cache

import (
	"context"
	"time"
)

// Cache stores JSON-encoded values under string keys
type Cache interface {
	// Get unmarshals the value at key into dest and reports whether it was found
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set stores value at key for ttl; zero ttl means no expiry
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Delete removes keys
	Delete(ctx context.Context, keys ...string) error
	// Incr atomically increments the integer at key and returns the new value
	Incr(ctx context.Context, key string) (int64, error)
}

// Nop is a Cache that never stores anything
type Nop struct{}

// Get always misses
func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }

// Set discards the value
func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }

// Delete does nothing
func (Nop) Delete(context.Context, ...string) error { return nil }

// Incr always returns zero
func (Nop) Incr(context.Context, string) (int64, error) { return 0, nil }
