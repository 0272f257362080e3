package repository

import (
	"context"
	"time"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// SnapshotRecord is one persisted plan snapshot.
type SnapshotRecord struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

// SnapshotRepository defines the interface for storing serialized plan snapshots by key.
type SnapshotRepository interface {
	GetByKey(ctx context.Context, key string) (*SnapshotRecord, error) // ErrNotFound when absent
	Upsert(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error // ErrNotFound when nothing was deleted
}
