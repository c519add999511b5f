package ports

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by IdentityStore.Get for keys that were never
// written or have been deleted.
var ErrKeyNotFound = errors.New("identity key not found")

// Well-known identity store keys.
const (
	KeyDeviceID  = "device_id"
	KeySessionID = "session_id"
)

// IdentityStore is the persistent key-value collaborator holding the device
// identity and the last session token. Values survive process restarts.
type IdentityStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
