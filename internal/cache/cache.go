// Package cache is the session cache: short-lived key-value state for OTP
// codes, pending registrations, reset authorizations and presence marks.
// Absence of a key is a legitimate state, never an error.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// Set stores value under key for ttl.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Get returns the value and whether it was present and unexpired.
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
}
