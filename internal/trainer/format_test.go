package trainer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-timer/internal/cue"
	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/workout"
)

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "00:00", formatClock(0))
	assert.Equal(t, "00:00", formatClock(-3))
	assert.Equal(t, "01:15", formatClock(75))
	assert.Equal(t, "59:59", formatClock(3599))
	assert.Equal(t, "1:02:05", formatClock(3725))
}

func TestFormatLabels(t *testing.T) {
	assert.Equal(t, "2nd set of 3", formatSetLabel(2, 3))
	assert.Equal(t, "", formatSetLabel(1, 1))
	assert.Equal(t, "1st rotation of 4", formatRotationLabel(0, 4))
	assert.Equal(t, "", formatRotationLabel(0, 1))
}

func TestProgressBar(t *testing.T) {
	bar := progressBar(5, 10, 10)
	assert.Equal(t, 5, strings.Count(bar, "█"))
	assert.Equal(t, 5, strings.Count(bar, "░"))

	assert.Equal(t, 4, strings.Count(progressBar(0, 0, 4), "░"))
	assert.Equal(t, 4, strings.Count(progressBar(50, 10, 4), "█"))
}

func legDayWorkout() *workout.Workout {
	return &workout.Workout{
		ID:          "w1",
		Name:        "Leg Day",
		Description: "squats",
		TimerSections: []workout.Section{{
			Name:      "Squats",
			TimerType: workout.TimerTypeWholeRoomSame,
			Config: workout.Config{
				Sets:      2,
				SetupTime: workout.DurationOf(10),
				WorkTime:  workout.DurationOf(30),
				RestTime:  workout.DurationOf(15),
				Exercises: []workout.Exercise{{Name: "Squat", Reps: "10", Color: "red"}},
			},
		}},
	}
}

func TestFormatClockFace(t *testing.T) {
	assert.Contains(t, formatClockFace(timer.PlayerState{}), "No workout loaded")

	w := legDayWorkout()
	seq, err := timer.NewWorkoutSequencer(w, cue.NopEmitter{}, testLogger())
	require.NoError(t, err)

	text := formatClockFace(timer.PlayerState{Status: timer.PlayerStatusPaused, Workout: w, Snapshot: seq.Snapshot()})
	assert.Contains(t, text, "Leg Day")
	assert.Contains(t, text, "(PAUSED)")
	assert.Contains(t, text, "GET READY")
	assert.Contains(t, text, "00:10")
	assert.Contains(t, text, "1st set of 2")
	assert.Contains(t, text, "Work 00:30 - Squat")
	assert.Contains(t, text, formatClock(w.TotalSeconds()))

	seq.Seek(w.TotalSeconds())
	text = formatClockFace(timer.PlayerState{Status: timer.PlayerStatusComplete, Workout: w, Snapshot: seq.Snapshot()})
	assert.Contains(t, text, "Workout complete!")
	assert.Contains(t, text, "Finished")
}

func TestFormatExerciseBoard(t *testing.T) {
	section := workout.Section{
		Name:      "Stations",
		TimerType: workout.TimerTypeStations,
		Config: workout.Config{
			Sets:     1,
			WorkTime: workout.DurationOf(30),
			RestTime: workout.DurationOf(10),
			Stations: []workout.Station{
				{Name: "Bench", Exercises: []workout.Exercise{{Name: "Press", Reps: "8"}, {Name: "Fly", Reps: "12", Notes: "light"}}},
				{Name: "Rack", Exercises: []workout.Exercise{{Name: "Pull-up"}}},
			},
		},
	}
	engine, err := timer.NewEngine(section, cue.NopEmitter{}, testLogger())
	require.NoError(t, err)
	engine.Seek(40)

	state := timer.PlayerState{
		Workout:  &workout.Workout{Name: "Circuits"},
		Snapshot: timer.WorkoutSnapshot{Section: engine.Snapshot()},
	}
	board := formatExerciseBoard(state)
	assert.Contains(t, board, "Bench:")
	assert.Contains(t, board, "Fly[::-] x 12")
	assert.Contains(t, board, "light")
	assert.Contains(t, board, "Rack:[white] [gray]idle")

	assert.Empty(t, formatExerciseBoard(timer.PlayerState{}))
}

func TestFormatWorkoutDetails(t *testing.T) {
	assert.Contains(t, formatWorkoutDetails(nil), "No workouts yet")

	w := legDayWorkout()
	text := formatWorkoutDetails(w)
	assert.Contains(t, text, "Leg Day")
	assert.Contains(t, text, "squats")
	assert.Contains(t, text, "Squats")
	assert.Contains(t, text, "2 sets, 0:30 work / 0:15 rest")
	assert.Contains(t, text, "Squat x 10")

	summary := formatWorkoutSummary(w)
	assert.Contains(t, summary, formatClock(w.TotalSeconds()))
	assert.Contains(t, summary, workout.TimerTypeWholeRoomSame.DisplayName())
}
