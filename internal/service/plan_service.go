package service

import (
	"context"
	"errors"
	"strings"

	"alcyxob/palestra-app/internal/domain"
)

// --- Error Definitions ---
var (
	ErrStoreNotReady    = errors.New("plan store is still loading")
	ErrClientNotFound   = errors.New("client not found")
	ErrDayNotFound      = errors.New("workout day not found")
	ErrExerciseNotFound = errors.New("exercise not found")
	ErrExerciseExists   = errors.New("an exercise with this id already exists in the day")
	ErrInvalidExercise  = errors.New("invalid exercise: name is required, sets must be at least 1 and rest cannot be negative")
	ErrInvalidWeekday   = errors.New("invalid weekday: expected one of mon, tue, wed, thu, fri, sat, sun")
	ErrInvalidTitle     = errors.New("day title cannot be empty")
)

// PlanStore is the subset of *planstore.Store the services need.
type PlanStore interface {
	IsHydrating() bool
	Clients() []domain.Client
	GetClientByID(id string) (domain.Client, bool)
	AddDay(clientID string, weekday domain.WeekdayKey, label string) (string, bool)
	RemoveDay(clientID, dayID string) bool
	UpdateDayTitle(clientID, dayID, title string) bool
	AddExercise(clientID, dayID string, exercise domain.WorkoutExercise) (string, bool)
	UpdateExercise(clientID, dayID, exerciseID string, patch domain.ExercisePatch) bool
	RemoveExercise(clientID, dayID, exerciseID string) bool
	Reset(ctx context.Context) error
}

// ClientSummary is one row of the trainer's client list.
type ClientSummary struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Status   domain.ClientStatus `json:"status"`
	Notes    string              `json:"notes,omitempty"`
	DayCount int                 `json:"dayCount"`
}

// DayResult reports the outcome of AddDay. Created is false when the client
// already had a day for that weekday; DayID then names the existing day.
type DayResult struct {
	DayID   string `json:"dayId"`
	Created bool   `json:"created"`
}

// --- Service Interface ---
type PlanService interface {
	// Trainer side
	ListClients(ctx context.Context) ([]ClientSummary, error)
	GetClientPlan(ctx context.Context, clientID string) (*domain.Client, error)
	AddDay(ctx context.Context, clientID string, weekday domain.WeekdayKey, label string) (*DayResult, error)
	RenameDay(ctx context.Context, clientID, dayID, title string) (*domain.WorkoutDay, error)
	RemoveDay(ctx context.Context, clientID, dayID string) error
	AddExercise(ctx context.Context, clientID, dayID string, exercise domain.WorkoutExercise) (*domain.WorkoutExercise, error)
	AddCatalogExercise(ctx context.Context, clientID, dayID, catalogID string) (*domain.WorkoutExercise, error)
	UpdateExercise(ctx context.Context, clientID, dayID, exerciseID string, patch domain.ExercisePatch) (*domain.WorkoutExercise, error)
	RemoveExercise(ctx context.Context, clientID, dayID, exerciseID string) error
	Reset(ctx context.Context) error

	// Client side, scoped to the caller's own plan
	GetDay(ctx context.Context, clientID, dayID string) (*domain.WorkoutDay, error)
	GetExercise(ctx context.Context, clientID, dayID, exerciseID string) (*domain.WorkoutExercise, error)
	UpdateExerciseNotes(ctx context.Context, clientID, dayID, exerciseID, notes string) (*domain.WorkoutExercise, error)
	ExportPlan(ctx context.Context, clientID string) (*ExportResponse, error)
}

// --- Service Implementation ---

// planService implements the PlanService interface.
type planService struct {
	store    PlanStore
	catalog  CatalogService
	exporter PlanExporter // nil disables ExportPlan
}

// NewPlanService creates a new instance of planService.
func NewPlanService(store PlanStore, catalog CatalogService, exporter PlanExporter) PlanService {
	return &planService{
		store:    store,
		catalog:  catalog,
		exporter: exporter,
	}
}

func (s *planService) ready() error {
	if s.store.IsHydrating() {
		return ErrStoreNotReady
	}
	return nil
}

func (s *planService) client(clientID string) (domain.Client, error) {
	if err := s.ready(); err != nil {
		return domain.Client{}, err
	}
	c, ok := s.store.GetClientByID(clientID)
	if !ok {
		return domain.Client{}, ErrClientNotFound
	}
	return c, nil
}

func (s *planService) day(clientID, dayID string) (domain.WorkoutDay, error) {
	c, err := s.client(clientID)
	if err != nil {
		return domain.WorkoutDay{}, err
	}
	d, ok := c.FindDay(dayID)
	if !ok {
		return domain.WorkoutDay{}, ErrDayNotFound
	}
	return d, nil
}

func (s *planService) exercise(clientID, dayID, exerciseID string) (domain.WorkoutExercise, error) {
	d, err := s.day(clientID, dayID)
	if err != nil {
		return domain.WorkoutExercise{}, err
	}
	e, ok := d.FindExercise(exerciseID)
	if !ok {
		return domain.WorkoutExercise{}, ErrExerciseNotFound
	}
	return e, nil
}

// === Trainer side ===

// ListClients returns every client in display order.
func (s *planService) ListClients(ctx context.Context) ([]ClientSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	clients := s.store.Clients()
	out := make([]ClientSummary, 0, len(clients))
	for _, c := range clients {
		out = append(out, ClientSummary{
			ID:       c.ID,
			Name:     c.Name,
			Status:   c.Status,
			Notes:    c.Notes,
			DayCount: len(c.PlanDays),
		})
	}
	return out, nil
}

// GetClientPlan returns a client with the full plan.
func (s *planService) GetClientPlan(ctx context.Context, clientID string) (*domain.Client, error) {
	c, err := s.client(clientID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// AddDay creates the day for weekday, or reports the one already there.
// An empty label falls back to the weekday's display name.
func (s *planService) AddDay(ctx context.Context, clientID string, weekday domain.WeekdayKey, label string) (*DayResult, error) {
	if !weekday.Valid() {
		return nil, ErrInvalidWeekday
	}
	if _, err := s.client(clientID); err != nil {
		return nil, err
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = weekday.Label()
	}

	dayID, created := s.store.AddDay(clientID, weekday, label)
	if dayID == "" {
		// Removed between the check and the call.
		return nil, ErrClientNotFound
	}
	return &DayResult{DayID: dayID, Created: created}, nil
}

// RenameDay replaces a day's title.
func (s *planService) RenameDay(ctx context.Context, clientID, dayID, title string) (*domain.WorkoutDay, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrInvalidTitle
	}
	if _, err := s.day(clientID, dayID); err != nil {
		return nil, err
	}
	s.store.UpdateDayTitle(clientID, dayID, title)

	d, err := s.day(clientID, dayID)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// RemoveDay deletes a day together with its exercises.
func (s *planService) RemoveDay(ctx context.Context, clientID, dayID string) error {
	if _, err := s.day(clientID, dayID); err != nil {
		return err
	}
	s.store.RemoveDay(clientID, dayID)
	return nil
}

// AddExercise validates and prepends an exercise to a day. The returned
// exercise carries the generated id when none was given. An id already used
// in the day yields ErrExerciseExists and leaves the day untouched.
func (s *planService) AddExercise(ctx context.Context, clientID, dayID string, exercise domain.WorkoutExercise) (*domain.WorkoutExercise, error) {
	exercise.Name = strings.TrimSpace(exercise.Name)
	if err := validateExercise(exercise); err != nil {
		return nil, err
	}
	if _, err := s.day(clientID, dayID); err != nil {
		return nil, err
	}

	exerciseID, added := s.store.AddExercise(clientID, dayID, exercise)
	if !added {
		if _, err := s.exercise(clientID, dayID, exerciseID); err == nil {
			return nil, ErrExerciseExists
		}
		// Removed between the existence check and the insert.
		return nil, ErrDayNotFound
	}
	e, err := s.exercise(clientID, dayID, exerciseID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// AddCatalogExercise adds a catalog entry with the default volume.
func (s *planService) AddCatalogExercise(ctx context.Context, clientID, dayID, catalogID string) (*domain.WorkoutExercise, error) {
	entry, err := s.catalog.GetByID(ctx, catalogID)
	if err != nil {
		return nil, err
	}
	return s.AddExercise(ctx, clientID, dayID, entry.ToWorkoutExercise(""))
}

// UpdateExercise merges patch into an exercise.
func (s *planService) UpdateExercise(ctx context.Context, clientID, dayID, exerciseID string, patch domain.ExercisePatch) (*domain.WorkoutExercise, error) {
	current, err := s.exercise(clientID, dayID, exerciseID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}
	if err := validateExercise(patch.Apply(current)); err != nil {
		return nil, err
	}
	s.store.UpdateExercise(clientID, dayID, exerciseID, patch)

	e, err := s.exercise(clientID, dayID, exerciseID)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// RemoveExercise deletes an exercise from a day.
func (s *planService) RemoveExercise(ctx context.Context, clientID, dayID, exerciseID string) error {
	if _, err := s.exercise(clientID, dayID, exerciseID); err != nil {
		return err
	}
	s.store.RemoveExercise(clientID, dayID, exerciseID)
	return nil
}

// Reset restores the seed roster and clears persisted state.
func (s *planService) Reset(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.store.Reset(ctx)
}

func validateExercise(e domain.WorkoutExercise) error {
	if e.Name == "" || e.Sets < 1 || e.RestSec < 0 {
		return ErrInvalidExercise
	}
	return nil
}
