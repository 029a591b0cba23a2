// Package engine holds the session storage backends: an in-memory map with
// optional file persistence, Redis, and a sealing wrapper for either.
package engine

import (
	"context"
	"errors"
	"time"
)

// ErrKeyNotFound is returned when a key is absent or has expired.
var ErrKeyNotFound = errors.New("key not found")

// Well-known session keys.
const (
	KeyDeviceID     = "device_id"
	KeyAuthCode     = "auth_code"
	KeyPendingLogin = "pending_login"
)

// Entry is a stored value and its expiry. A zero ExpiresAt never expires.
type Entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether the entry is past its expiry at now.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// TTL returns the time left before expiry, or 0 for entries that never expire.
func (e Entry) TTL(now time.Time) time.Duration {
	if e.ExpiresAt.IsZero() {
		return 0
	}
	return e.ExpiresAt.Sub(now)
}

// SessionStore is the contract every backend implements.
type SessionStore interface {
	// Get returns the value for key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. A ttl of 0 keeps it until cleared.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Clear removes the given keys. Missing keys are not an error.
	Clear(ctx context.Context, keys ...string) error
}

// Exporter lists every live entry, for migrations and inspection.
type Exporter interface {
	Entries(ctx context.Context) (map[string]Entry, error)
}

// Store is a SessionStore that can also be exported.
type Store interface {
	SessionStore
	Exporter
}
