package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-timer/internal/store"
	"github.com/lowaak/interval-timer/internal/workout"
)

func morningSession() *workout.Workout {
	return &workout.Workout{
		ID:            "w-1",
		Name:          "Morning Session",
		Description:   "squats and a finisher",
		AssignedTeams: []string{"varsity", "jv"},
		TimerSections: []workout.Section{
			{
				Name:      "Squats",
				TimerType: workout.TimerTypeWholeRoomSame,
				Config: workout.Config{
					Sets:      2,
					SetupTime: workout.DurationOf(10),
					WorkTime:  workout.DurationOf(30),
					RestTime:  workout.DurationOf(15),
					Exercises: []workout.Exercise{{Name: "Squat", Reps: "10"}},
				},
			},
			{
				TimerType: workout.TimerTypeGetItDone,
				Config: workout.Config{
					TotalTime: workout.DurationOf(120),
					Exercises: []workout.Exercise{{Name: "Run"}},
				},
			},
		},
	}
}

func TestWriteWorkoutTable(t *testing.T) {
	var out bytes.Buffer
	writeWorkoutTable(&out, []*workout.Workout{morningSession()})

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), "DURATION")
	assert.Contains(t, string(lines[1]), "Morning Session")
	assert.Contains(t, string(lines[1]), "3:40")
}

func TestWriteWorkoutDetails(t *testing.T) {
	var out bytes.Buffer
	writeWorkoutDetails(&out, morningSession())
	text := out.String()

	assert.Contains(t, text, "Morning Session (w-1)")
	assert.Contains(t, text, "squats and a finisher")
	assert.Contains(t, text, "teams: varsity, jv")
	assert.Contains(t, text, "Whole Room - Same Exercise")
	assert.Contains(t, text, "1:40")
	assert.Contains(t, text, "Get It Done")
	assert.Regexp(t, `2\s+-\s+Get It Done\s+-\s+2:00`, text)
	assert.Regexp(t, `total\s+3:40`, text)
}

const importFixture = `
name: Quick Run
timer_sections:
  - timer_type: get_it_done
    config:
      total_time: 2:00
      exercises: [{name: Run}]
`

func TestImportPath_FileAndDir(t *testing.T) {
	ctx := context.Background()
	logger := log.New(io.Discard)
	s, err := store.Open(filepath.Join(t.TempDir(), "timer.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	a := &app{logger: logger, store: s, workouts: store.NewWorkoutRepository(s, logger)}
	importer := newImporter(a)

	dir := t.TempDir()
	file := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(file, []byte(importFixture), 0o644))

	saved, err := importPath(ctx, importer, file)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Quick Run", saved[0].Name)

	again, err := importPath(ctx, importer, dir)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, saved[0].ID, again[0].ID, "re-import replaces the workout with the same name")

	all, err := a.workouts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = importPath(ctx, importer, filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
