// internal/domain/catalog.go
package domain

// CatalogExercise is an entry of the exercise library a trainer picks from.
type CatalogExercise struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Muscles     []string `json:"muscles,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Defaults applied when an exercise is created from the catalog.
const (
	DefaultCatalogSets    = 3
	DefaultCatalogReps    = "10"
	DefaultCatalogRestSec = 60
)

// ToWorkoutExercise builds a prescription with the default volume.
func (c CatalogExercise) ToWorkoutExercise(id string) WorkoutExercise {
	var muscles []string
	if c.Muscles != nil {
		muscles = append([]string{}, c.Muscles...)
	}
	return WorkoutExercise{
		ID:          id,
		Name:        c.Name,
		Sets:        DefaultCatalogSets,
		Reps:        DefaultCatalogReps,
		RestSec:     DefaultCatalogRestSec,
		Muscles:     muscles,
		Description: c.Description,
	}
}
