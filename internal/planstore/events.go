package planstore

// EventKind names what changed in the store.
type EventKind string

const (
	EventHydrated        EventKind = "hydrated"
	EventReset           EventKind = "reset"
	EventDayAdded        EventKind = "day_added"
	EventDayRemoved      EventKind = "day_removed"
	EventDayRenamed      EventKind = "day_renamed"
	EventExerciseAdded   EventKind = "exercise_added"
	EventExerciseUpdated EventKind = "exercise_updated"
	EventExerciseRemoved EventKind = "exercise_removed"
)

// Event is delivered to listeners after a state change.
// Ids are empty when they do not apply to the kind.
type Event struct {
	Kind       EventKind
	ClientID   string
	DayID      string
	ExerciseID string
}

// Listener observes store changes. It runs on the goroutine that made the
// change, after the store lock is released, so it may read the store.
type Listener func(Event)

// Subscribe registers l and returns a function that unregisters it.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l

	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) notify(ev Event) {
	s.listenersMu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.listenersMu.Unlock()

	for _, l := range ls {
		l(ev)
	}
}
