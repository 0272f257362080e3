package service

import (
	"context"
	"errors"

	"alcyxob/palestra-app/internal/domain"
)

// --- Error Definitions ---
var (
	ErrCatalogExerciseNotFound = errors.New("catalog exercise not found")
)

// --- Service Interface ---
type CatalogService interface {
	ListCatalog(ctx context.Context) []domain.CatalogExercise
	GetByID(ctx context.Context, catalogID string) (*domain.CatalogExercise, error)
}

// --- Service Implementation ---

// catalogService serves a fixed exercise library.
type catalogService struct {
	source func() []domain.CatalogExercise
}

// NewCatalogService creates a catalog over source, which must return a fresh
// copy on every call (seed.Catalog does).
func NewCatalogService(source func() []domain.CatalogExercise) CatalogService {
	return &catalogService{source: source}
}

// ListCatalog returns every entry in display order.
func (s *catalogService) ListCatalog(ctx context.Context) []domain.CatalogExercise {
	return s.source()
}

// GetByID retrieves a single catalog entry.
func (s *catalogService) GetByID(ctx context.Context, catalogID string) (*domain.CatalogExercise, error) {
	for _, c := range s.source() {
		if c.ID == catalogID {
			return &c, nil
		}
	}
	return nil, ErrCatalogExerciseNotFound
}
