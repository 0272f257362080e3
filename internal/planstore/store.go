// Package planstore holds every client's weekly training plan in memory,
// restores it from a key-value snapshot on start and writes it back after
// each change.
package planstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"alcyxob/palestra-app/internal/clock"
	"alcyxob/palestra-app/internal/domain"
	"alcyxob/palestra-app/internal/metrics"
	"alcyxob/palestra-app/internal/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	DefaultStorageKey     = "palestra_app_ptstore_clients_v1"
	DefaultPersistTimeout = 5 * time.Second
)

var ErrHydrating = errors.New("plan store is still hydrating")

// SeedFunc returns a fresh copy of the first-run data.
type SeedFunc func() []domain.Client

type Option func(*Store)

func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Store) { s.log = l }
}

func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

func WithMetrics(m *metrics.Manager) Option {
	return func(s *Store) { s.metrics = m }
}

func WithStorageKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

func WithPersistTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// Store is safe for concurrent use. Every mutation builds a new collection
// and never modifies one a reader may hold.
type Store struct {
	kv             storage.KeyValueStore
	seed           SeedFunc
	key            string
	persistTimeout time.Duration
	clock          clock.Clock
	log            logrus.FieldLogger
	metrics        *metrics.Manager

	hydrateMu sync.Mutex

	mu        sync.RWMutex
	clients   []domain.Client
	ready     bool
	lastStamp int64

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int

	writer *snapshotWriter
}

// New returns a store in the Hydrating state. Call Hydrate before use and
// Close on shutdown.
func New(kv storage.KeyValueStore, seed SeedFunc, opts ...Option) *Store {
	s := &Store{
		kv:             kv,
		seed:           seed,
		key:            DefaultStorageKey,
		persistTimeout: DefaultPersistTimeout,
		clock:          clock.RealClock{},
		listeners:      make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = l
	}
	s.log = s.log.WithField("component", "planstore")
	s.writer = newSnapshotWriter(kv, s.key, s.persistTimeout, s.log, s.metrics)
	return s
}

// Key is the storage key the snapshot lives under.
func (s *Store) Key() string { return s.key }

// IsHydrating reports whether the initial load has not completed yet.
func (s *Store) IsHydrating() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.ready
}

// Hydrate loads the persisted snapshot, or the seed when there is none or it
// cannot be parsed. An unparseable snapshot is removed from storage. A failed
// storage read leaves the store hydrating and is returned, so the caller can
// retry. Once hydrated, further calls do nothing.
func (s *Store) Hydrate(ctx context.Context) error {
	s.hydrateMu.Lock()
	defer s.hydrateMu.Unlock()

	if !s.IsHydrating() {
		return nil
	}

	raw, found, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return fmt.Errorf("read plan snapshot: %w", err)
	}

	var (
		clients []domain.Client
		source  string
	)
	switch {
	case !found:
		clients = normalizeClients(s.seed())
		source = metrics.SourceSeed
	default:
		snap, src, decodeErr := Decode(raw)
		if decodeErr != nil {
			s.log.WithError(decodeErr).Warn("discarding unreadable plan snapshot, falling back to seed")
			if rmErr := s.kv.Remove(ctx, s.key); rmErr != nil {
				s.log.WithError(rmErr).Error("failed to remove unreadable plan snapshot")
			}
			clients = normalizeClients(s.seed())
			source = metrics.SourceCorrupted
			break
		}
		clients = snap.Clients
		source = src
	}

	s.mu.Lock()
	s.clients = clients
	s.ready = true
	s.writer.submit(&writeOp{clients: clients})
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"source": source, "clients": len(clients)}).Info("plan store hydrated")
	if s.metrics != nil {
		s.metrics.CounterHydrations.WithLabelValues(source).Inc()
		s.metrics.GaugeClients.Set(float64(len(clients)))
	}
	s.notify(Event{Kind: EventHydrated})
	return nil
}

// HydrateWithRetry calls Hydrate until it succeeds or ctx is done. The wait
// between attempts starts at initial and doubles up to maxWait.
func (s *Store) HydrateWithRetry(ctx context.Context, initial, maxWait time.Duration) error {
	wait := initial
	for attempt := 1; ; attempt++ {
		err := s.Hydrate(ctx)
		if err == nil {
			return nil
		}
		s.log.WithError(err).WithFields(logrus.Fields{
			"attempt": attempt,
			"retryIn": wait.String(),
		}).Warn("plan store hydration failed")

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		wait *= 2
		if wait > maxWait {
			wait = maxWait
		}
	}
}

// Clients returns a deep copy of the collection, empty while hydrating.
func (s *Store) Clients() []domain.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneClients(s.clients)
}

func (s *Store) currentClients() []domain.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clients
}

// Snapshot returns the collection as it would be persisted.
func (s *Store) Snapshot() domain.Snapshot {
	return domain.Snapshot{Version: StoreVersion, Clients: s.Clients()}
}

// GetClientByID returns a copy of the client with the given id.
func (s *Store) GetClientByID(id string) (domain.Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.clients {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return domain.Client{}, false
}

// AddDay appends a day for weekday to the client's plan and returns its id.
// A plan holds at most one day per weekday: if one exists already its id is
// returned with created set to false. An unknown client or an invalid
// weekday yields an empty id.
func (s *Store) AddDay(clientID string, weekday domain.WeekdayKey, label string) (dayID string, created bool) {
	if !weekday.Valid() {
		s.log.WithField("weekday", weekday).Warn("add day: invalid weekday")
		return "", false
	}
	ev := Event{Kind: EventDayAdded, ClientID: clientID}
	s.mutate(&ev, func(clients []domain.Client) ([]domain.Client, bool) {
		return updateClient(clients, clientID, func(c domain.Client) (domain.Client, bool) {
			for _, d := range c.PlanDays {
				if d.Weekday == weekday {
					dayID = d.ID
					return c, false
				}
			}
			dayID = s.nextDayIDLocked(c, weekday)
			ev.DayID = dayID
			days := make([]domain.WorkoutDay, len(c.PlanDays), len(c.PlanDays)+1)
			copy(days, c.PlanDays)
			c.PlanDays = append(days, domain.WorkoutDay{
				ID:        dayID,
				Weekday:   weekday,
				Title:     label,
				Exercises: []domain.WorkoutExercise{},
			})
			created = true
			return c, true
		})
	})
	return dayID, created
}

// nextDayIDLocked builds "<weekday>_<millis>". Stamps never repeat within
// the process and never collide with an existing day.
func (s *Store) nextDayIDLocked(c domain.Client, weekday domain.WeekdayKey) string {
	stamp := s.clock.Now().UnixMilli()
	if stamp <= s.lastStamp {
		stamp = s.lastStamp + 1
	}
	for {
		id := string(weekday) + "_" + strconv.FormatInt(stamp, 10)
		if _, taken := c.FindDay(id); !taken {
			s.lastStamp = stamp
			return id
		}
		stamp++
	}
}

// RemoveDay deletes a day. It reports whether anything changed.
func (s *Store) RemoveDay(clientID, dayID string) bool {
	return s.mutate(&Event{Kind: EventDayRemoved, ClientID: clientID, DayID: dayID}, func(clients []domain.Client) ([]domain.Client, bool) {
		return updateClient(clients, clientID, func(c domain.Client) (domain.Client, bool) {
			days := make([]domain.WorkoutDay, 0, len(c.PlanDays))
			for _, d := range c.PlanDays {
				if d.ID != dayID {
					days = append(days, d)
				}
			}
			if len(days) == len(c.PlanDays) {
				return c, false
			}
			c.PlanDays = days
			return c, true
		})
	})
}

// UpdateDayTitle replaces a day's title.
func (s *Store) UpdateDayTitle(clientID, dayID, title string) bool {
	return s.mutate(&Event{Kind: EventDayRenamed, ClientID: clientID, DayID: dayID}, func(clients []domain.Client) ([]domain.Client, bool) {
		return updateClient(clients, clientID, func(c domain.Client) (domain.Client, bool) {
			return updateDay(c, dayID, func(d domain.WorkoutDay) (domain.WorkoutDay, bool) {
				d.Title = title
				return d, true
			})
		})
	})
}

// AddExercise puts exercise at the top of the day. An empty id is replaced by
// a generated one. An id already present in the day makes it a no-op.
func (s *Store) AddExercise(clientID, dayID string, exercise domain.WorkoutExercise) (exerciseID string, added bool) {
	exercise = exercise.Clone()
	if exercise.ID == "" {
		exercise.ID = uuid.NewString()
	}
	exerciseID = exercise.ID

	added = s.mutate(&Event{Kind: EventExerciseAdded, ClientID: clientID, DayID: dayID, ExerciseID: exerciseID}, func(clients []domain.Client) ([]domain.Client, bool) {
		return updateClient(clients, clientID, func(c domain.Client) (domain.Client, bool) {
			return updateDay(c, dayID, func(d domain.WorkoutDay) (domain.WorkoutDay, bool) {
				if _, dup := d.FindExercise(exercise.ID); dup {
					return d, false
				}
				exercises := make([]domain.WorkoutExercise, 0, len(d.Exercises)+1)
				exercises = append(exercises, exercise)
				d.Exercises = append(exercises, d.Exercises...)
				return d, true
			})
		})
	})
	return exerciseID, added
}

// UpdateExercise merges patch into an exercise.
func (s *Store) UpdateExercise(clientID, dayID, exerciseID string, patch domain.ExercisePatch) bool {
	if patch.IsEmpty() {
		return false
	}
	return s.mutate(&Event{Kind: EventExerciseUpdated, ClientID: clientID, DayID: dayID, ExerciseID: exerciseID}, func(clients []domain.Client) ([]domain.Client, bool) {
		return updateClient(clients, clientID, func(c domain.Client) (domain.Client, bool) {
			return updateDay(c, dayID, func(d domain.WorkoutDay) (domain.WorkoutDay, bool) {
				for i, e := range d.Exercises {
					if e.ID != exerciseID {
						continue
					}
					exercises := make([]domain.WorkoutExercise, len(d.Exercises))
					copy(exercises, d.Exercises)
					exercises[i] = patch.Apply(e)
					d.Exercises = exercises
					return d, true
				}
				return d, false
			})
		})
	})
}

// RemoveExercise deletes an exercise from a day.
func (s *Store) RemoveExercise(clientID, dayID, exerciseID string) bool {
	return s.mutate(&Event{Kind: EventExerciseRemoved, ClientID: clientID, DayID: dayID, ExerciseID: exerciseID}, func(clients []domain.Client) ([]domain.Client, bool) {
		return updateClient(clients, clientID, func(c domain.Client) (domain.Client, bool) {
			return updateDay(c, dayID, func(d domain.WorkoutDay) (domain.WorkoutDay, bool) {
				exercises := make([]domain.WorkoutExercise, 0, len(d.Exercises))
				for _, e := range d.Exercises {
					if e.ID != exerciseID {
						exercises = append(exercises, e)
					}
				}
				if len(exercises) == len(d.Exercises) {
					return d, false
				}
				d.Exercises = exercises
				return d, true
			})
		})
	})
}

// Reset restores the seed and deletes the persisted snapshot. It returns once
// the removal has reached storage, or was superseded by a later change.
// Reset itself never writes a snapshot.
func (s *Store) Reset(ctx context.Context) error {
	done := make(chan error, 1)

	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return ErrHydrating
	}
	s.clients = normalizeClients(s.seed())
	count := len(s.clients)
	s.writer.submit(&writeOp{remove: true, done: done})
	s.mu.Unlock()

	s.log.Info("plan store reset to seed")
	if s.metrics != nil {
		s.metrics.CounterMutations.WithLabelValues(string(EventReset)).Inc()
		s.metrics.GaugeClients.Set(float64(count))
	}
	s.notify(Event{Kind: EventReset})

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("remove plan snapshot: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close waits for pending persistence and stops the writer. Later mutations
// still change memory but are no longer persisted.
func (s *Store) Close(ctx context.Context) error {
	return s.writer.close(ctx)
}

// mutate applies fn under the write lock. When fn reports a change the new
// collection is installed and queued for persistence before the lock is
// released, so writes reach the writer in mutation order. fn may fill in ev,
// which listeners receive afterwards.
func (s *Store) mutate(ev *Event, fn func([]domain.Client) ([]domain.Client, bool)) bool {
	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		s.log.WithField("op", ev.Kind).Warn("ignoring mutation while hydrating")
		return false
	}
	next, changed := fn(s.clients)
	if changed {
		s.clients = next
		s.writer.submit(&writeOp{clients: next})
	}
	s.mu.Unlock()

	if !changed {
		return false
	}
	if s.metrics != nil {
		s.metrics.CounterMutations.WithLabelValues(string(ev.Kind)).Inc()
	}
	s.notify(*ev)
	return true
}

func updateClient(clients []domain.Client, clientID string, fn func(domain.Client) (domain.Client, bool)) ([]domain.Client, bool) {
	for i, c := range clients {
		if c.ID != clientID {
			continue
		}
		updated, changed := fn(c)
		if !changed {
			return clients, false
		}
		out := make([]domain.Client, len(clients))
		copy(out, clients)
		out[i] = updated
		return out, true
	}
	return clients, false
}

func updateDay(c domain.Client, dayID string, fn func(domain.WorkoutDay) (domain.WorkoutDay, bool)) (domain.Client, bool) {
	for i, d := range c.PlanDays {
		if d.ID != dayID {
			continue
		}
		updated, changed := fn(d)
		if !changed {
			return c, false
		}
		days := make([]domain.WorkoutDay, len(c.PlanDays))
		copy(days, c.PlanDays)
		days[i] = updated
		c.PlanDays = days
		return c, true
	}
	return c, false
}
