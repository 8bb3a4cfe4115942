package library

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lowaak/interval-timer/internal/workout"
)

// SeedRepository is the part of the workout store seeding needs
type SeedRepository interface {
	Repository
	List(ctx context.Context) ([]*workout.Workout, error)
}

func secs(n int) workout.Duration { return workout.DurationOf(n) }

// Samples returns the built-in workouts, one or more per timer type
func Samples() []workout.Workout {
	return []workout.Workout{
		{
			Name:        "Full Body Basics",
			Description: "Two rounds of the big lifts, then a five minute finisher",
			TimerSections: []workout.Section{
				{
					Name:      "Strength",
					TimerType: workout.TimerTypeWholeRoomSame,
					Config: workout.Config{
						Sets:            2,
						SetupTime:       secs(10),
						WorkTime:        secs(40),
						RestTime:        secs(20),
						RestBetweenSets: secs(60),
						Exercises: []workout.Exercise{
							{Name: "Goblet Squat", Reps: "10", UsePerSetReps: true, PerSetReps: []workout.RepCount{"12", "10"}},
							{Name: "Push-up", Reps: "15"},
							{Name: "Kettlebell Swing", Reps: "20", WorkTime: durationPtr(30)},
						},
					},
				},
				{
					Name:      "Finisher",
					TimerType: workout.TimerTypeGetItDone,
					Config: workout.Config{
						TotalTime: secs(5 * 60),
						Exercises: []workout.Exercise{
							{Name: "Burpee", Reps: "30"},
							{Name: "Air Squat", Reps: "50"},
						},
					},
				},
			},
		},
		{
			Name:        "Color Circuit",
			Description: "Groups start on their color and move one exercise along after each interval",
			TimerSections: []workout.Section{{
				Name:      "Circuit",
				TimerType: workout.TimerTypeWholeRoomRotational,
				Config: workout.Config{
					Sets:            3,
					SetupTime:       secs(15),
					WorkTime:        secs(45),
					RestTime:        secs(15),
					RestBetweenSets: secs(90),
					Exercises: []workout.Exercise{
						{Name: "Bike", Reps: "max cal", Color: "red"},
						{Name: "Row", Reps: "250m", Color: "blue"},
						{Name: "Wall Ball", Reps: "15", Color: "green"},
						{Name: "Plank", Reps: "hold", Color: "yellow"},
					},
				},
			}},
		},
		{
			Name:        "Station Rotation",
			Description: "Each group works through a station, then everyone moves on",
			TimerSections: []workout.Section{{
				Name:      "Stations",
				TimerType: workout.TimerTypeStations,
				Config: workout.Config{
					Sets:           1,
					SetupTime:      secs(20),
					WorkTime:       secs(50),
					RestTime:       secs(10),
					RotateStations: true,
					Stations: []workout.Station{
						{Name: "Bench", Exercises: []workout.Exercise{{Name: "Bench Press", Reps: "8"}, {Name: "Dumbbell Fly", Reps: "12"}}},
						{Name: "Rack", Exercises: []workout.Exercise{{Name: "Pull-up", Reps: "6"}, {Name: "Hanging Knee Raise", Reps: "10"}}},
						{Name: "Turf", Exercises: []workout.Exercise{{Name: "Sled Push", Reps: "2 lengths"}}},
					},
				},
			}},
		},
	}
}

func durationPtr(n int) *workout.Duration {
	d := secs(n)
	return &d
}

// Seed stores the sample workouts when the store has no workouts at all
func Seed(ctx context.Context, repo SeedRepository, logger *log.Logger) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	samples := Samples()
	for i := range samples {
		if _, err := repo.Save(ctx, &samples[i]); err != nil {
			return i, fmt.Errorf("seeding %q: %w", samples[i].Name, err)
		}
	}
	logger.Infof("Seeded %d sample workouts", len(samples))
	return len(samples), nil
}
