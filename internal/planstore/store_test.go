package planstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"alcyxob/palestra-app/internal/clock"
	"alcyxob/palestra-app/internal/domain"
	"alcyxob/palestra-app/internal/metrics"
	"alcyxob/palestra-app/internal/seed"
	"alcyxob/palestra-app/internal/storage"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testEpoch = time.UnixMilli(1700000000000)

func newTestStore(t *testing.T, kv storage.KeyValueStore, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(clock.NewFakeClock(testEpoch))}, opts...)
	s := New(kv, seed.Clients, opts...)
	t.Cleanup(func() {
		_ = s.Close(context.Background())
	})
	return s
}

func newHydratedStore(t *testing.T, kv storage.KeyValueStore, opts ...Option) *Store {
	t.Helper()
	s := newTestStore(t, kv, opts...)
	require.NoError(t, s.Hydrate(context.Background()))
	return s
}

// flush closes the store so every queued write has reached kv.
func flush(t *testing.T, s *Store) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Close(ctx))
}

func persisted(t *testing.T, kv storage.KeyValueStore) (domain.Snapshot, bool) {
	t.Helper()
	raw, found, err := kv.Get(context.Background(), DefaultStorageKey)
	require.NoError(t, err)
	if !found {
		return domain.Snapshot{}, false
	}
	snap, _, err := Decode(raw)
	require.NoError(t, err)
	return snap, true
}

func mustClient(t *testing.T, s *Store, id string) domain.Client {
	t.Helper()
	c, ok := s.GetClientByID(id)
	require.True(t, ok, "client %s", id)
	return c
}

func mustDay(t *testing.T, s *Store, clientID, dayID string) domain.WorkoutDay {
	t.Helper()
	d, ok := mustClient(t, s, clientID).FindDay(dayID)
	require.True(t, ok, "day %s/%s", clientID, dayID)
	return d
}

func TestHydrate_EmptyStorageUsesSeed(t *testing.T) {
	kv := storage.NewMemoryStore()
	m := metrics.NewTestManager()
	s := newTestStore(t, kv, WithMetrics(m))

	assert.True(t, s.IsHydrating())
	assert.Empty(t, s.Clients())

	require.NoError(t, s.Hydrate(context.Background()))
	assert.False(t, s.IsHydrating())
	assert.Equal(t, seed.Clients(), s.Clients())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterHydrations.WithLabelValues(metrics.SourceSeed)))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.GaugeClients))

	flush(t, s)
	snap, found := persisted(t, kv)
	require.True(t, found)
	assert.Equal(t, StoreVersion, snap.Version)
	assert.Equal(t, seed.Clients(), snap.Clients)
}

func TestHydrate_RestoresSnapshot(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), DefaultStorageKey,
		`{"version":1,"clients":[{"id":"c9","name":"Ada","status":"active","planDays":[{"id":"tue_1","weekday":"tue","title":"Martedì","exercises":[]}]}]}`))

	s := newHydratedStore(t, kv)

	clients := s.Clients()
	require.Len(t, clients, 1)
	assert.Equal(t, "Ada", clients[0].Name)
	require.Len(t, clients[0].PlanDays, 1)
	assert.Equal(t, domain.Tuesday, clients[0].PlanDays[0].Weekday)
}

func TestHydrate_CorruptedSnapshotFallsBackToSeed(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), DefaultStorageKey, `{"version":1,"clients":[{"id":`))
	m := metrics.NewTestManager()

	s := newHydratedStore(t, kv, WithMetrics(m))

	assert.Equal(t, seed.Clients(), s.Clients())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterHydrations.WithLabelValues(metrics.SourceCorrupted)))

	flush(t, s)
	snap, found := persisted(t, kv)
	require.True(t, found)
	assert.Equal(t, seed.Clients(), snap.Clients)
}

func TestHydrate_WrongTypesCountAsCorrupted(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), DefaultStorageKey, `[{"id":"c1","sets":"x","planDays":"nope"}]`))

	s := newHydratedStore(t, kv)
	assert.Equal(t, seed.Clients(), s.Clients())
}

func TestHydrate_NullClientCountsAsCorrupted(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), DefaultStorageKey, `[null]`))
	m := metrics.NewTestManager()

	s := newHydratedStore(t, kv, WithMetrics(m))
	assert.Equal(t, seed.Clients(), s.Clients())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterHydrations.WithLabelValues(metrics.SourceCorrupted)))
}

func TestHydrate_ReadErrorKeepsHydrating(t *testing.T) {
	kv := storage.NewMemoryStore()
	kv.SetFailures(errors.New("connection refused"), nil, nil)
	s := newTestStore(t, kv)

	err := s.Hydrate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, s.IsHydrating())

	kv.SetFailures(nil, nil, nil)
	require.NoError(t, s.Hydrate(context.Background()))
	assert.False(t, s.IsHydrating())
}

// flakyKV fails the first failGets reads.
type flakyKV struct {
	*storage.MemoryStore
	mu       sync.Mutex
	failGets int
	gets     int
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	f.gets++
	fail := f.gets <= f.failGets
	f.mu.Unlock()
	if fail {
		return "", false, errors.New("connection refused")
	}
	return f.MemoryStore.Get(ctx, key)
}

func TestHydrateWithRetry(t *testing.T) {
	kv := &flakyKV{MemoryStore: storage.NewMemoryStore(), failGets: 2}
	s := newTestStore(t, kv)

	require.NoError(t, s.HydrateWithRetry(context.Background(), time.Millisecond, 2*time.Millisecond))
	assert.False(t, s.IsHydrating())
	assert.Equal(t, 3, kv.gets)
	assert.Equal(t, seed.Clients(), s.Clients())
}

func TestHydrateWithRetry_StopsOnCancel(t *testing.T) {
	kv := storage.NewMemoryStore()
	kv.SetFailures(errors.New("connection refused"), nil, nil)
	s := newTestStore(t, kv)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := s.HydrateWithRetry(ctx, time.Millisecond, 5*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, s.IsHydrating())
}

func TestHydrate_RunsOnce(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newHydratedStore(t, kv)
	require.True(t, s.RemoveDay("c1", "mon"))

	require.NoError(t, s.Hydrate(context.Background()))
	_, ok := mustClient(t, s, "c1").FindDay("mon")
	assert.False(t, ok)
}

func TestMutationsWhileHydratingAreIgnored(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newTestStore(t, kv)

	id, created := s.AddDay("c1", domain.Tuesday, "Martedì")
	assert.Empty(t, id)
	assert.False(t, created)
	assert.False(t, s.RemoveDay("c1", "mon"))
	assert.False(t, s.UpdateDayTitle("c1", "mon", "x"))
	_, added := s.AddExercise("c1", "mon", domain.WorkoutExercise{Name: "Squat"})
	assert.False(t, added)
	assert.ErrorIs(t, s.Reset(context.Background()), ErrHydrating)

	flush(t, s)
	_, found := persisted(t, kv)
	assert.False(t, found)
}

func TestGetClientByID(t *testing.T) {
	s := newHydratedStore(t, storage.NewMemoryStore())

	c, ok := s.GetClientByID("c2")
	require.True(t, ok)
	assert.Equal(t, "Luigi Bianchi", c.Name)
	assert.Len(t, c.PlanDays, 2)

	_, ok = s.GetClientByID("nope")
	assert.False(t, ok)
}

func TestAddDay(t *testing.T) {
	s := newHydratedStore(t, storage.NewMemoryStore())

	id, created := s.AddDay("c2", domain.Saturday, "Sabato")
	require.True(t, created)
	assert.Equal(t, "sat_1700000000000", id)

	c := mustClient(t, s, "c2")
	require.Len(t, c.PlanDays, 3)
	last := c.PlanDays[2]
	assert.Equal(t, id, last.ID)
	assert.Equal(t, domain.Saturday, last.Weekday)
	assert.Equal(t, "Sabato", last.Title)
	assert.NotNil(t, last.Exercises)
	assert.Empty(t, last.Exercises)
}

func TestAddDay_DuplicateWeekdayReturnsExistingDay(t *testing.T) {
	s := newHydratedStore(t, storage.NewMemoryStore())

	first, created := s.AddDay("c3", domain.Thursday, "Giovedì")
	require.True(t, created)

	second, created := s.AddDay("c3", domain.Thursday, "Giovedì bis")
	assert.False(t, created)
	assert.Equal(t, first, second)

	seeded, created := s.AddDay("c3", domain.Monday, "Lunedì")
	assert.False(t, created)
	assert.Equal(t, "mon", seeded)

	count := 0
	for _, d := range mustClient(t, s, "c3").PlanDays {
		if d.Weekday == domain.Thursday {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestAddDay_IDsStrictlyIncrease(t *testing.T) {
	s := newHydratedStore(t, storage.NewMemoryStore())

	a, _ := s.AddDay("c2", domain.Tuesday, "Martedì")
	b, _ := s.AddDay("c3", domain.Tuesday, "Martedì")
	assert.Equal(t, "tue_1700000000000", a)
	assert.Equal(t, "tue_1700000000001", b)
}

func TestAddDay_UnknownClientOrWeekday(t *testing.T) {
	s := newHydratedStore(t, storage.NewMemoryStore())

	id, created := s.AddDay("ghost", domain.Monday, "Lunedì")
	assert.Empty(t, id)
	assert.False(t, created)

	id, created = s.AddDay("c1", domain.WeekdayKey("xyz"), "?")
	assert.Empty(t, id)
	assert.False(t, created)
}

func TestRemoveDay_DropsItsExercises(t *testing.T) {
	s := newHydratedStore(t, storage.NewMemoryStore())
	require.Len(t, mustDay(t, s, "c1", "mon").Exercises, 4)

	assert.True(t, s.RemoveDay("c1", "mon"))
	assert.False(t, s.RemoveDay("c1", "mon"))

	c := mustClient(t, s, "c1")
	_, ok := c.FindDay("mon")
	assert.False(t, ok)
	for _, d := range c.PlanDays {
		for _, e := range d.Exercises {
			assert.NotContains(t, []string{"ex1", "ex2", "ex3", "ex4"}, e.ID)
		}
	}
	// Other clients keep their own Monday.
	_, ok = mustClient(t, s, "c2").FindDay("mon")
	assert.True(t, ok)
}

func TestUpdateDayTitle(t *testing.T) {
	s := newHydratedStore(t, storage.NewMemoryStore())

	assert.True(t, s.UpdateDayTitle("c1", "wed", "Mercoledì — Pull"))
	assert.Equal(t, "Mercoledì — Pull", mustDay(t, s, "c1", "wed").Title)
	assert.Equal(t, domain.Wednesday, mustDay(t, s, "c1", "wed").Weekday)

	assert.False(t, s.UpdateDayTitle("c1", "sun", "x"))
	assert.False(t, s.UpdateDayTitle("ghost", "wed", "x"))
}

func TestAddExercise_Prepends(t *testing.T) {
	s := newHydratedStore(t, storage.NewMemoryStore())

	id, added := s.AddExercise("c1", "wed", domain.WorkoutExercise{
		ID: "new1", Name: "Trazioni", Sets: 4, Reps: "6", RestSec: 120,
	})
	require.True(t, added)
	assert.Equal(t, "new1", id)

	d := mustDay(t, s, "c1", "wed")
	require.Len(t, d.Exercises, 4)
	assert.Equal(t, "new1", d.Exercises[0].ID)
	assert.Equal(t, "ex5", d.Exercises[1].ID)
}

func TestAddExercise_GeneratesIDAndIgnoresDuplicates(t *testing.T) {
	s := newHydratedStore(t, storage.NewMemoryStore())

	id, added := s.AddExercise("c1", "fri", domain.WorkoutExercise{Name: "Affondi", Sets: 3, Reps: "10"})
	require.True(t, added)
	assert.Len(t, id, 36)

	again, added := s.AddExercise("c1", "fri", domain.WorkoutExercise{ID: "ex8", Name: "Leg press bis"})
	assert.False(t, added)
	assert.Equal(t, "ex8", again)
	assert.Len(t, mustDay(t, s, "c1", "fri").Exercises, 3)

	_, added = s.AddExercise("c1", "sun", domain.WorkoutExercise{Name: "x"})
	assert.False(t, added)
}

func TestUpdateExercise_OnlyPatchedFields(t *testing.T) {
	s := newHydratedStore(t, storage.NewMemoryStore())
	before, _ := mustDay(t, s, "c1", "mon").FindExercise("ex1")

	sets := 5
	require.True(t, s.UpdateExercise("c1", "mon", "ex1", domain.ExercisePatch{Sets: &sets}))

	after, _ := mustDay(t, s, "c1", "mon").FindExercise("ex1")
	expected := before
	expected.Sets = 5
	assert.Equal(t, expected, after)

	assert.False(t, s.UpdateExercise("c1", "mon", "missing", domain.ExercisePatch{Sets: &sets}))
	assert.False(t, s.UpdateExercise("c1", "mon", "ex1", domain.ExercisePatch{}))
}

func TestRemoveExercise_Idempotent(t *testing.T) {
	s := newHydratedStore(t, storage.NewMemoryStore())

	assert.True(t, s.RemoveExercise("c1", "mon", "ex3"))
	afterFirst := s.Clients()

	assert.False(t, s.RemoveExercise("c1", "mon", "ex3"))
	assert.Equal(t, afterFirst, s.Clients())

	ids := []string{}
	for _, e := range mustDay(t, s, "c1", "mon").Exercises {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"ex1", "ex2", "ex4"}, ids)
}

func TestReadsAreIsolatedFromMutations(t *testing.T) {
	s := newHydratedStore(t, storage.NewMemoryStore())

	held := s.Clients()
	require.True(t, s.RemoveExercise("c1", "mon", "ex1"))
	assert.Len(t, held[0].PlanDays[0].Exercises, 4)

	held[0].PlanDays[0].Title = "changed by caller"
	held[0].PlanDays[0].Exercises[0].Muscles[0] = "changed"
	assert.NotEqual(t, "changed by caller", mustDay(t, s, "c1", "mon").Title)

	c2 := mustClient(t, s, "c2")
	c2.PlanDays[0].Exercises[0].Muscles[0] = "changed"
	ex, _ := mustDay(t, s, "c2", "mon").FindExercise("ex1")
	assert.Equal(t, "Petto", ex.Muscles[0])
}

func TestMutationsArePersisted(t *testing.T) {
	kv := storage.NewMemoryStore()
	m := metrics.NewTestManager()
	s := newHydratedStore(t, kv, WithMetrics(m))

	dayID, _ := s.AddDay("c3", domain.Friday, "Venerdì")
	s.AddExercise("c3", dayID, domain.WorkoutExercise{ID: "z1", Name: "Plank", Sets: 3, Reps: "45s"})
	reps := "60s"
	s.UpdateExercise("c3", dayID, "z1", domain.ExercisePatch{Reps: &reps})
	s.RemoveDay("c1", "fri")
	expected := s.Clients()

	flush(t, s)
	snap, found := persisted(t, kv)
	require.True(t, found)
	assert.Equal(t, StoreVersion, snap.Version)
	assert.Equal(t, expected, snap.Clients)
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.CounterPersistWrites), float64(1))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterMutations.WithLabelValues(string(EventDayAdded))))
}

func TestWriteFailuresAreNotSurfaced(t *testing.T) {
	kv := storage.NewMemoryStore()
	m := metrics.NewTestManager()
	s := newHydratedStore(t, kv, WithMetrics(m))
	flushWriter(t, s)

	kv.SetFailures(nil, errors.New("disk full"), nil)
	assert.True(t, s.RemoveDay("c1", "mon"))
	_, ok := mustClient(t, s, "c1").FindDay("mon")
	assert.False(t, ok)
	flushWriter(t, s)
	assert.GreaterOrEqual(t, testutil.ToFloat64(m.CounterPersistFailures), float64(1))

	// The next mutation carries the full state, including the lost one.
	kv.SetFailures(nil, nil, nil)
	assert.True(t, s.RemoveDay("c1", "wed"))
	flush(t, s)

	snap, found := persisted(t, kv)
	require.True(t, found)
	c1 := snap.Clients[0]
	require.Len(t, c1.PlanDays, 1)
	assert.Equal(t, "fri", c1.PlanDays[0].ID)
}

// flushWriter waits until nothing is pending or being written.
func flushWriter(t *testing.T, s *Store) {
	t.Helper()
	done := make(chan error, 1)
	s.writer.submit(&writeOp{clients: s.currentClients(), done: done})
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("writer did not drain")
	}
}

func TestReset(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newHydratedStore(t, kv)

	s.RemoveDay("c1", "mon")
	s.AddDay("c2", domain.Sunday, "Domenica")
	flushWriter(t, s)
	_, found := persisted(t, kv)
	require.True(t, found)

	require.NoError(t, s.Reset(context.Background()))
	assert.False(t, s.IsHydrating())
	assert.Equal(t, seed.Clients(), s.Clients())

	flush(t, s)
	_, found = persisted(t, kv)
	assert.False(t, found)
}

func TestReset_LaterMutationIsPersisted(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newHydratedStore(t, kv)

	require.NoError(t, s.Reset(context.Background()))
	require.True(t, s.RemoveExercise("c2", "wed", "ex7"))
	flush(t, s)

	snap, found := persisted(t, kv)
	require.True(t, found)
	assert.Equal(t, s.Clients(), snap.Clients)
}

func TestReset_RemoveFailure(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newHydratedStore(t, kv)
	flushWriter(t, s)

	kv.SetFailures(nil, nil, errors.New("read-only"))
	err := s.Reset(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read-only")
	assert.Equal(t, seed.Clients(), s.Clients())
}

func TestSubscribe(t *testing.T) {
	s := newTestStore(t, storage.NewMemoryStore())

	var (
		mu     sync.Mutex
		events []Event
	)
	unsubscribe := s.Subscribe(func(ev Event) {
		// Listeners run outside the lock and may read the store.
		_ = s.Clients()
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
	})

	require.NoError(t, s.Hydrate(context.Background()))
	dayID, _ := s.AddDay("c2", domain.Friday, "Venerdì")
	s.RemoveDay("c2", "nope")
	s.RemoveExercise("c1", "mon", "ex1")
	unsubscribe()
	s.RemoveExercise("c1", "mon", "ex2")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Event{
		{Kind: EventHydrated},
		{Kind: EventDayAdded, ClientID: "c2", DayID: dayID},
		{Kind: EventExerciseRemoved, ClientID: "c1", DayID: "mon", ExerciseID: "ex1"},
	}, events)
}

func TestConcurrentMutations(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newHydratedStore(t, kv)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.AddExercise("c1", "fri", domain.WorkoutExercise{Name: "Burpees", Sets: 3, Reps: "15"})
			_ = s.Clients()
		}()
	}
	wg.Wait()

	assert.Len(t, mustDay(t, s, "c1", "fri").Exercises, 22)
	expected := s.Clients()
	flush(t, s)
	snap, _ := persisted(t, kv)
	assert.Equal(t, expected, snap.Clients)
}

func TestWithStorageKey(t *testing.T) {
	kv := storage.NewMemoryStore()
	s := newHydratedStore(t, kv, WithStorageKey("other"))
	assert.Equal(t, "other", s.Key())
	flush(t, s)

	_, found, err := kv.Get(context.Background(), "other")
	require.NoError(t, err)
	assert.True(t, found)
	_, found = persisted(t, kv)
	assert.False(t, found)
}
