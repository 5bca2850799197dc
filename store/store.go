package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no value exists for a key.
var ErrNotFound = errors.New("state key not found")

// Well-known keys the client persists.
const (
	KeyAccessToken  = "auth.access"
	KeyRefreshToken = "auth.refresh"
	KeyCurrentShop  = "shop.current"
)

// StateStore is the durable key/value contract used for persisted client
// state. Implementations must be safe for concurrent use.
type StateStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
