// Package seed holds the hard-coded first-run data of the plan store and the
// exercise catalog. Every accessor returns a fresh deep copy.
package seed

import "alcyxob/palestra-app/internal/domain"

func days() []domain.WorkoutDay {
	return []domain.WorkoutDay{
		{
			ID:      "mon",
			Weekday: domain.Monday,
			Title:   "Lunedì — Petto / Tricipiti",
			Exercises: []domain.WorkoutExercise{
				{
					ID:          "ex1",
					Name:        "Panca piana",
					Sets:        4,
					Reps:        "8",
					RestSec:     90,
					Muscles:     []string{"Petto", "Tricipiti", "Spalle"},
					Description: "Schiena ben appoggiata, scapole addotte. Discesa controllata e spinta esplosiva.",
				},
				{ID: "ex2", Name: "Distensioni manubri inclinata", Sets: 3, Reps: "10", RestSec: 90},
				{ID: "ex3", Name: "Croci ai cavi", Sets: 3, Reps: "12", RestSec: 60},
				{ID: "ex4", Name: "Pushdown cavo", Sets: 3, Reps: "12", RestSec: 60, Notes: "Controllo lento"},
			},
		},
		{
			ID:      "wed",
			Weekday: domain.Wednesday,
			Title:   "Mercoledì — Schiena / Bicipiti",
			Exercises: []domain.WorkoutExercise{
				{ID: "ex5", Name: "Lat machine", Sets: 4, Reps: "10", RestSec: 90},
				{ID: "ex6", Name: "Rematore manubrio", Sets: 3, Reps: "10", RestSec: 90},
				{ID: "ex7", Name: "Curl manubri", Sets: 3, Reps: "10-12", RestSec: 60},
			},
		},
		{
			ID:      "fri",
			Weekday: domain.Friday,
			Title:   "Venerdì — Gambe / Spalle",
			Exercises: []domain.WorkoutExercise{
				{ID: "ex8", Name: "Leg press", Sets: 4, Reps: "12", RestSec: 120},
				{ID: "ex9", Name: "Alzate laterali", Sets: 4, Reps: "12-15", RestSec: 60},
			},
		},
	}
}

// Clients returns the initial roster: c1 with the full week, c2 with the
// first two days, c3 (paused) with Monday only.
func Clients() []domain.Client {
	return []domain.Client{
		{
			ID:       "c1",
			Name:     "Simone Cliente",
			Status:   domain.StatusActive,
			Notes:    "Obiettivo: massa • 4x/settimana",
			PlanDays: days(),
		},
		{
			ID:       "c2",
			Name:     "Luigi Bianchi",
			Status:   domain.StatusActive,
			Notes:    "Dimagrimento • Pesi + cardio",
			PlanDays: days()[:2],
		},
		{
			ID:       "c3",
			Name:     "Giulia Verdi",
			Status:   domain.StatusPaused,
			Notes:    "Pausa per spalla",
			PlanDays: days()[:1],
		},
	}
}

// Catalog returns the exercise library offered when adding an exercise.
func Catalog() []domain.CatalogExercise {
	return []domain.CatalogExercise{
		{ID: "cat1", Name: "Panca piana", Muscles: []string{"Petto", "Tricipiti"}, Description: "Scapole addotte, controllo in discesa."},
		{ID: "cat2", Name: "Lat machine", Muscles: []string{"Dorsali", "Bicipiti"}, Description: "Tira al petto, gomiti verso il basso."},
		{ID: "cat3", Name: "Squat guidato / multipower", Muscles: []string{"Gambe"}, Description: "Schiena neutra, spinta dai talloni."},
		{ID: "cat4", Name: "Alzate laterali", Muscles: []string{"Spalle"}, Description: "Gomiti morbidi, salita controllata."},
		{ID: "cat5", Name: "Curl manubri", Muscles: []string{"Bicipiti"}, Description: "Non dondolare, range completo."},
	}
}
