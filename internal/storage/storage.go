package storage

import (
	"context"
	"fmt"
)

// Backend names accepted by configuration.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendS3     = "s3"
)

// KeyValueStore is the durable storage the plan store mirrors its snapshot into.
// Implementations only need single-key atomicity.
type KeyValueStore interface {
	// Get returns the value stored under key. found is false when the key
	// does not exist; that is not an error.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key succeeds.
	Remove(ctx context.Context, key string) error
}

// Error helps distinguish storage errors
type Error struct {
	Backend string
	Op      string
	Key     string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s storage: %s %q: %v", e.Backend, e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapErr(backend, op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Backend: backend, Op: op, Key: key, Err: err}
}
