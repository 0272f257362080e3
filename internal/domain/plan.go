// internal/domain/plan.go
package domain

// ClientStatus tracks whether a client is currently training.
type ClientStatus string

const (
	StatusActive ClientStatus = "active"
	StatusPaused ClientStatus = "paused"
)

// Client is a trainee together with their weekly plan.
// PlanDays order is the display order.
type Client struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Status   ClientStatus `json:"status"`
	Notes    string       `json:"notes,omitempty"`
	PlanDays []WorkoutDay `json:"planDays"`
}

// WorkoutDay is one training day of a client's plan.
type WorkoutDay struct {
	ID        string            `json:"id"`                // e.g. "mon" for seeded days, "mon_1699999999999" once created
	Weekday   WeekdayKey        `json:"weekday,omitempty"` // empty when unknown (old snapshots)
	Title     string            `json:"title"`
	Exercises []WorkoutExercise `json:"exercises"`
}

// WorkoutExercise is a single prescribed exercise inside a day.
type WorkoutExercise struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Sets        int      `json:"sets"`
	Reps        string   `json:"reps"`    // free-form, e.g. "8-10"
	RestSec     int      `json:"restSec"` // seconds
	Notes       string   `json:"notes,omitempty"`
	Muscles     []string `json:"muscles,omitempty"`
	Description string   `json:"description,omitempty"`
}

// ExercisePatch is a shallow partial update of a WorkoutExercise.
// A nil field leaves the current value untouched. Muscles uses a nil slice for
// "unchanged"; an empty non-nil slice clears the list.
type ExercisePatch struct {
	Name        *string  `json:"name,omitempty"`
	Sets        *int     `json:"sets,omitempty"`
	Reps        *string  `json:"reps,omitempty"`
	RestSec     *int     `json:"restSec,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	Muscles     []string `json:"muscles,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// IsEmpty reports whether the patch would change nothing.
func (p ExercisePatch) IsEmpty() bool {
	return p.Name == nil && p.Sets == nil && p.Reps == nil && p.RestSec == nil &&
		p.Notes == nil && p.Muscles == nil && p.Description == nil
}

// Apply returns a copy of e with the patch merged in.
func (p ExercisePatch) Apply(e WorkoutExercise) WorkoutExercise {
	out := e.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Sets != nil {
		out.Sets = *p.Sets
	}
	if p.Reps != nil {
		out.Reps = *p.Reps
	}
	if p.RestSec != nil {
		out.RestSec = *p.RestSec
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.Muscles != nil {
		out.Muscles = append([]string{}, p.Muscles...)
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	return out
}

// Snapshot is the persisted envelope of the whole plan collection.
type Snapshot struct {
	Version int      `json:"version"`
	Clients []Client `json:"clients"`
}

// Clone returns a deep copy of the exercise.
func (e WorkoutExercise) Clone() WorkoutExercise {
	if e.Muscles != nil {
		e.Muscles = append([]string{}, e.Muscles...)
	}
	return e
}

// Clone returns a deep copy of the day.
func (d WorkoutDay) Clone() WorkoutDay {
	exercises := make([]WorkoutExercise, len(d.Exercises))
	for i, e := range d.Exercises {
		exercises[i] = e.Clone()
	}
	d.Exercises = exercises
	return d
}

// Clone returns a deep copy of the client.
func (c Client) Clone() Client {
	days := make([]WorkoutDay, len(c.PlanDays))
	for i, d := range c.PlanDays {
		days[i] = d.Clone()
	}
	c.PlanDays = days
	return c
}

// FindDay returns the day with the given id.
func (c Client) FindDay(dayID string) (WorkoutDay, bool) {
	for _, d := range c.PlanDays {
		if d.ID == dayID {
			return d, true
		}
	}
	return WorkoutDay{}, false
}

// FindExercise returns the exercise with the given id.
func (d WorkoutDay) FindExercise(exerciseID string) (WorkoutExercise, bool) {
	for _, e := range d.Exercises {
		if e.ID == exerciseID {
			return e, true
		}
	}
	return WorkoutExercise{}, false
}

// CloneClients deep-copies a whole collection.
func CloneClients(clients []Client) []Client {
	out := make([]Client, len(clients))
	for i, c := range clients {
		out[i] = c.Clone()
	}
	return out
}
