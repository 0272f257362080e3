package storage

import (
	"context"
	"errors"

	"alcyxob/palestra-app/internal/repository"
)

var _ KeyValueStore = (*RepositoryStore)(nil)

// RepositoryStore exposes a repository.SnapshotRepository as a KeyValueStore.
// Backend names the database behind it in errors.
type RepositoryStore struct {
	repo    repository.SnapshotRepository
	backend string
}

func NewRepositoryStore(repo repository.SnapshotRepository, backend string) *RepositoryStore {
	return &RepositoryStore{repo: repo, backend: backend}
}

func (s *RepositoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	rec, err := s.repo.GetByKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrapErr(s.backend, "get", key, err)
	}
	return rec.Value, true, nil
}

func (s *RepositoryStore) Set(ctx context.Context, key, value string) error {
	return wrapErr(s.backend, "set", key, s.repo.Upsert(ctx, key, value))
}

func (s *RepositoryStore) Remove(ctx context.Context, key string) error {
	err := s.repo.Delete(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return wrapErr(s.backend, "remove", key, err)
}
