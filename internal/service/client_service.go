package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"alcyxob/palestra-app/internal/domain"

	"github.com/google/uuid"
)

// --- Error Definitions ---
var (
	ErrExportUnavailable = errors.New("plan export is not configured")
	ErrExportFailed      = errors.New("failed to export plan")
)

// DefaultExportURLExpiry bounds how long an export link stays valid.
const DefaultExportURLExpiry = 15 * time.Minute

// PlanExporter uploads a document and hands out a temporary link to it.
// *storage.S3Store satisfies it.
type PlanExporter interface {
	Set(ctx context.Context, key, value string) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// ExportResponse structure for returning the download URL and object key
type ExportResponse struct {
	DownloadURL string    `json:"downloadUrl"`
	ObjectKey   string    `json:"objectKey"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// GetDay returns one day of the client's own plan.
func (s *planService) GetDay(ctx context.Context, clientID, dayID string) (*domain.WorkoutDay, error) {
	d, err := s.day(clientID, dayID)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// GetExercise returns one exercise of the client's own plan.
func (s *planService) GetExercise(ctx context.Context, clientID, dayID, exerciseID string) (*domain.WorkoutExercise, error) {
	e, err := s.exercise(clientID, dayID, exerciseID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateExerciseNotes is the only change a client may make to their plan.
func (s *planService) UpdateExerciseNotes(ctx context.Context, clientID, dayID, exerciseID, notes string) (*domain.WorkoutExercise, error) {
	if _, err := s.exercise(clientID, dayID, exerciseID); err != nil {
		return nil, err
	}
	s.store.UpdateExercise(clientID, dayID, exerciseID, domain.ExercisePatch{Notes: &notes})

	e, err := s.exercise(clientID, dayID, exerciseID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ExportPlan writes the client's plan as a JSON document and returns a
// pre-signed link to download it.
func (s *planService) ExportPlan(ctx context.Context, clientID string) (*ExportResponse, error) {
	if s.exporter == nil {
		return nil, ErrExportUnavailable
	}
	c, err := s.client(clientID)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	objectKey := path.Join("exports", clientID, uuid.NewString()+".json")
	if err := s.exporter.Set(ctx, objectKey, string(body)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	url, err := s.exporter.PresignGet(ctx, objectKey, DefaultExportURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	return &ExportResponse{
		DownloadURL: url,
		ObjectKey:   objectKey,
		ExpiresAt:   time.Now().Add(DefaultExportURLExpiry).UTC(),
	}, nil
}
