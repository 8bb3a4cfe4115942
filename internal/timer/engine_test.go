package timer

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lowaak/interval-timer/internal/cue"
	"github.com/lowaak/interval-timer/internal/workout"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func secs(n int) workout.Duration {
	return workout.DurationOf(n)
}

func durationPtr(n int) *workout.Duration {
	d := secs(n)
	return &d
}

type cueRecorder struct {
	kinds []cue.Kind
}

func (r *cueRecorder) Emit(kind cue.Kind) {
	r.kinds = append(r.kinds, kind)
}

// squatsSection: 5s setup, two sets of one 10s/5s interval, 10s between sets
func squatsSection() workout.Section {
	return workout.Section{
		Name:      "Squats",
		TimerType: workout.TimerTypeWholeRoomSame,
		Config: workout.Config{
			Sets:            2,
			SetupTime:       secs(5),
			WorkTime:        secs(10),
			RestTime:        secs(5),
			RestBetweenSets: secs(10),
			Exercises:       []workout.Exercise{{Name: "Squat", Reps: "12"}},
		},
	}
}

func stationsSection(rotate bool) workout.Section {
	return workout.Section{
		Name:      "Stations",
		TimerType: workout.TimerTypeStations,
		Config: workout.Config{
			Sets:           1,
			WorkTime:       secs(10),
			RestTime:       secs(5),
			RotateStations: rotate,
			Stations: []workout.Station{
				{Name: "Bench", Exercises: []workout.Exercise{{Name: "Press"}, {Name: "Fly"}}},
				{Exercises: []workout.Exercise{{Name: "Rope"}}},
			},
		},
	}
}

func getItDoneSection(total int) workout.Section {
	return workout.Section{
		Name:      "Finisher",
		TimerType: workout.TimerTypeGetItDone,
		Config: workout.Config{
			SetupTime: secs(30), // ignored
			TotalTime: secs(total),
			Exercises: []workout.Exercise{{Name: "Burpee", Reps: "50"}, {Name: "Row", Reps: "500m"}},
		},
	}
}

func newTestEngine(t *testing.T, section workout.Section) (*Engine, *cueRecorder) {
	t.Helper()
	rec := &cueRecorder{}
	e, err := NewEngine(section, rec, testLogger())
	require.NoError(t, err)
	return e, rec
}

// runToEnd ticks until complete and returns the number of ticks
func runToEnd(t *testing.T, e *Engine) int {
	t.Helper()
	e.Start()
	ticks := 0
	for e.State().Phase != PhaseComplete {
		require.True(t, e.Tick())
		ticks++
		require.LessOrEqual(t, ticks, 100000, "engine never completed")
	}
	return ticks
}

type phaseRun struct {
	phase   Phase
	seconds int
}

func TestEngine_PhaseSequence(t *testing.T) {
	e, _ := newTestEngine(t, squatsSection())
	require.Equal(t, 45, e.TotalSeconds())

	var runs []phaseRun
	e.Start()
	for e.State().Phase != PhaseComplete {
		phase := e.State().Phase
		if n := len(runs); n > 0 && runs[n-1].phase == phase {
			runs[n-1].seconds++
		} else {
			runs = append(runs, phaseRun{phase, 1})
		}
		e.Tick()
	}

	assert.Equal(t, []phaseRun{
		{PhaseSetup, 5},
		{PhaseWork, 10},
		{PhaseRest, 5},
		{PhaseSetRest, 10},
		{PhaseWork, 10},
		{PhaseRest, 5},
	}, runs)
	assert.Equal(t, 45, e.State().ElapsedTime)
	assert.Equal(t, 0, e.State().TimeRemaining)
	assert.Equal(t, 2, e.State().CurrentSet)
}

func TestEngine_Cues(t *testing.T) {
	e, rec := newTestEngine(t, squatsSection())
	runToEnd(t, e)

	cd, gocue, bz := cue.Countdown, cue.Go, cue.Buzzer
	assert.Equal(t, []cue.Kind{
		cd, cd, cd, gocue, // setup
		cd, cd, cd, bz,    // work
		cd, cd, cd,        // rest
		gocue,             // after set rest
		cd, cd, cd, bz,    // work
		cd, cd, cd,        // rest
	}, rec.kinds)
}

func TestEngine_GoOnStartWithoutSetup(t *testing.T) {
	section := squatsSection()
	section.Config.SetupTime = workout.Duration{}
	e, rec := newTestEngine(t, section)

	assert.Equal(t, PhaseWork, e.State().Phase)
	assert.Equal(t, 10, e.State().TimeRemaining)

	e.Start()
	assert.Equal(t, []cue.Kind{cue.Go}, rec.kinds)

	e.Pause()
	e.Start()
	assert.Equal(t, []cue.Kind{cue.Go}, rec.kinds, "resuming does not repeat go")

	e.TogglePause()
	e.TogglePause()
	assert.Equal(t, []cue.Kind{cue.Go}, rec.kinds)

	e.Reset()
	e.Start()
	assert.Equal(t, []cue.Kind{cue.Go, cue.Go}, rec.kinds, "a reset announces the first work phase again")

	e.Seek(4)
	e.Start()
	assert.Len(t, rec.kinds, 2, "resuming mid-phase after a seek is silent")

	e.Seek(0)
	e.Start()
	assert.Equal(t, []cue.Kind{cue.Go, cue.Go, cue.Go}, rec.kinds)
}

func TestEngine_ZeroLengthWorkIsSilent(t *testing.T) {
	section := workout.Section{
		Name:      "Mixed",
		TimerType: workout.TimerTypeWholeRoomSame,
		Config: workout.Config{
			Sets:     1,
			WorkTime: secs(10),
			RestTime: secs(5),
			Exercises: []workout.Exercise{
				{Name: "A"},
				{Name: "B", WorkTime: durationPtr(0)},
				{Name: "C"},
			},
		},
	}
	e, rec := newTestEngine(t, section)
	require.Equal(t, 35, e.TotalSeconds())

	e.Start()
	for i := 0; i < 15; i++ {
		require.True(t, e.Tick())
	}
	assert.Equal(t, PhaseRest, e.State().Phase)
	assert.Equal(t, 1, e.State().CurrentExerciseIndex)

	cd, gocue, bz := cue.Countdown, cue.Go, cue.Buzzer
	assert.Equal(t, []cue.Kind{
		gocue,
		cd, cd, cd, bz, // A work
		cd, cd, cd, // A rest, then B work is skipped
	}, rec.kinds)

	assert.Equal(t, 20, runToEnd(t, e))
	assert.Equal(t, []cue.Kind{
		gocue,
		cd, cd, cd, bz, // A work
		cd, cd, cd, // A rest
		cd, cd, cd, // B rest
		gocue,
		cd, cd, cd, bz, // C work
		cd, cd, cd, // C rest
	}, rec.kinds)
}

func TestEngine_GetItDone(t *testing.T) {
	e, rec := newTestEngine(t, getItDoneSection(150))
	require.Equal(t, 150, e.TotalSeconds())
	assert.Equal(t, PhaseWork, e.State().Phase, "setup time is ignored")

	completions := 0
	e.ListenToComplete(func(State) { completions++ })

	e.Start()
	for i := 0; i < 200; i++ {
		e.Tick()
		require.GreaterOrEqual(t, e.State().TimeRemaining, 0)
	}

	assert.Equal(t, PhaseComplete, e.State().Phase)
	assert.Equal(t, 150, e.State().ElapsedTime)
	assert.Equal(t, 1, completions)
	assert.Equal(t, []cue.Kind{
		cue.Go,
		cue.Countdown, // 1:00
		cue.Countdown, // 2:00
		cue.Countdown, cue.Countdown, cue.Countdown,
		cue.Buzzer,
	}, rec.kinds)
}

func TestEngine_StationsOrder(t *testing.T) {
	e, _ := newTestEngine(t, stationsSection(false))
	require.Equal(t, 30, e.TotalSeconds())

	snap := e.Snapshot()
	require.Len(t, snap.Exercises, 2)
	assert.Equal(t, "Bench", snap.Exercises[0].Label)
	assert.Equal(t, "Press", snap.Exercises[0].Name)
	assert.Equal(t, "Station 2", snap.Exercises[1].Label)
	assert.Equal(t, "Rope", snap.Exercises[1].Name)

	e.Start()
	for i := 0; i < 15; i++ {
		e.Tick()
	}
	snap = e.Snapshot()
	assert.Equal(t, PhaseWork, snap.Phase)
	assert.Equal(t, 1, snap.CurrentExerciseIndex)
	assert.Equal(t, "Fly", snap.Exercises[0].Name)
	assert.True(t, snap.Exercises[1].Idle, "a shorter station sits out")

	assert.Equal(t, 15, runToEnd(t, e))
}

func TestEngine_RotatingStations(t *testing.T) {
	section := stationsSection(true)
	section.Config.Sets = 2
	section.Config.RestBetweenSets = secs(20)
	e, _ := newTestEngine(t, section)

	// two rotations of two sets of two 15s intervals with one 20s set rest each
	require.Equal(t, 2*(2*30+20), e.TotalSeconds())
	assert.Equal(t, 2, e.Snapshot().Rotations)

	type position struct{ rotation, set, exercise int }
	var seen []position
	e.Start()
	for e.State().Phase != PhaseComplete {
		s := e.State()
		if s.Phase == PhaseWork {
			p := position{s.StationRotation, s.CurrentSet, s.CurrentExerciseIndex}
			if len(seen) == 0 || seen[len(seen)-1] != p {
				seen = append(seen, p)
			}
		}
		e.Tick()
	}

	assert.Equal(t, []position{
		{0, 1, 0}, {0, 1, 1}, {0, 2, 0}, {0, 2, 1},
		{1, 1, 0}, {1, 1, 1}, {1, 2, 0}, {1, 2, 1},
	}, seen)
	assert.Equal(t, e.TotalSeconds(), e.State().ElapsedTime)
}

func TestEngine_RotatingStationsLabels(t *testing.T) {
	e, _ := newTestEngine(t, stationsSection(true))
	snap := e.Snapshot()
	assert.Equal(t, "Bench - Group 1", snap.Exercises[0].Label)
	assert.Equal(t, "Station 2 - Group 2", snap.Exercises[1].Label)

	e.Seek(30)
	snap = e.Snapshot()
	assert.Equal(t, 1, snap.StationRotation)
	assert.Equal(t, "Bench - Group 2", snap.Exercises[0].Label)
	assert.Equal(t, "Station 2 - Group 1", snap.Exercises[1].Label)
}

func TestEngine_RotationalColors(t *testing.T) {
	section := workout.Section{
		TimerType: workout.TimerTypeWholeRoomRotational,
		Config: workout.Config{
			Sets:     1,
			WorkTime: secs(10),
			RestTime: secs(5),
			Exercises: []workout.Exercise{
				{Name: "Bike", Color: "Red"},
				{Name: "Row"},
				{Name: "Ski", Color: "Blue"},
			},
		},
	}
	e, _ := newTestEngine(t, section)
	require.Equal(t, 45, e.TotalSeconds())

	names := func() []string {
		var out []string
		for _, v := range e.Snapshot().Exercises {
			out = append(out, v.Label+":"+v.Name)
		}
		return out
	}
	assert.Equal(t, []string{"Red:Bike", "Group 2:Row", "Blue:Ski"}, names())

	e.Start()
	for i := 0; i < 10; i++ {
		e.Tick()
	}
	assert.Equal(t, PhaseRest, e.State().Phase)
	assert.Equal(t, 1, e.State().ColorRotation)
	assert.Equal(t, []string{"Red:Row", "Group 2:Ski", "Blue:Bike"}, names())
}

func TestEngine_PerSetReps(t *testing.T) {
	section := squatsSection()
	section.Config.Exercises[0].UsePerSetReps = true
	section.Config.Exercises[0].PerSetReps = []workout.RepCount{"15", ""}
	e, _ := newTestEngine(t, section)

	assert.Equal(t, workout.RepCount("15"), e.Snapshot().Exercises[0].Reps)
	e.Seek(35)
	assert.Equal(t, 2, e.State().CurrentSet)
	assert.Equal(t, workout.RepCount("12"), e.Snapshot().Exercises[0].Reps, "blank override falls back")
}

func TestEngine_NextUp(t *testing.T) {
	section := squatsSection()
	section.Config.Exercises = append(section.Config.Exercises, workout.Exercise{Name: "Lunge"})
	e, _ := newTestEngine(t, section)

	snap := e.Snapshot()
	assert.Equal(t, PhaseWork, snap.NextPhase)
	assert.Equal(t, "Squat", snap.NextExerciseName)
	assert.Equal(t, 10, snap.NextDuration)

	e.Seek(5 + 10) // first rest
	snap = e.Snapshot()
	assert.Equal(t, PhaseWork, snap.NextPhase)
	assert.Equal(t, "Lunge", snap.NextExerciseName)

	e.Seek(e.TotalSeconds() - 1)
	assert.Equal(t, PhaseComplete, e.Snapshot().NextPhase)
}

func additivitySections() map[string]workout.Section {
	perExercise := squatsSection()
	perExercise.Config.Exercises = []workout.Exercise{
		{Name: "Jump", WorkTime: durationPtr(20), RestTime: durationPtr(0)},
		{Name: "Plank", RestTime: durationPtr(15)},
		{Name: "Push"},
	}

	noRest := squatsSection()
	noRest.Config.RestTime = workout.Duration{}
	noRest.Config.RestBetweenSets = workout.Duration{}
	noRest.Config.SetupTime = workout.Duration{}

	rotational := workout.Section{
		TimerType: workout.TimerTypeWholeRoomRotational,
		Config: workout.Config{
			Sets:            3,
			SetupTime:       secs(7),
			WorkTime:        secs(40),
			RestTime:        secs(20),
			RestBetweenSets: secs(60),
			Exercises:       []workout.Exercise{{Name: "A"}, {Name: "B"}},
		},
	}

	rotating := stationsSection(true)
	rotating.Config.Sets = 3
	rotating.Config.SetupTime = secs(10)
	rotating.Config.RestBetweenSets = secs(30)

	return map[string]workout.Section{
		"same":              squatsSection(),
		"per exercise":      perExercise,
		"no rest":           noRest,
		"rotational":        rotational,
		"stations":          stationsSection(false),
		"rotating stations": rotating,
		"get it done":       getItDoneSection(95),
	}
}

func TestEngine_TicksToCompleteEqualTotal(t *testing.T) {
	for name, section := range additivitySections() {
		t.Run(name, func(t *testing.T) {
			e, _ := newTestEngine(t, section)
			assert.Equal(t, section.TotalSeconds(), runToEnd(t, e))
		})
	}
}

func TestEngine_SeekMatchesTicking(t *testing.T) {
	for name, section := range additivitySections() {
		t.Run(name, func(t *testing.T) {
			ticked, _ := newTestEngine(t, section)
			sought, _ := newTestEngine(t, section)
			ticked.Start()

			for at := 0; at <= ticked.TotalSeconds(); at++ {
				sought.Seek(at)
				want := ticked.State()
				want.IsPaused = true
				require.Equal(t, want, sought.State(), "at %ds", at)
				ticked.Tick()
			}
		})
	}
}

func TestEngine_ContinueAfterSeek(t *testing.T) {
	section := squatsSection()
	for _, at := range []int{0, 4, 5, 14, 15, 29, 30, 44} {
		t.Run(fmt.Sprint(at), func(t *testing.T) {
			e, _ := newTestEngine(t, section)
			e.Seek(at)
			assert.Equal(t, 45-at, runToEnd(t, e))
		})
	}
}

func TestEngine_SeekClamps(t *testing.T) {
	e, _ := newTestEngine(t, squatsSection())

	e.Seek(-10)
	assert.Equal(t, PhaseSetup, e.State().Phase)
	assert.Equal(t, 0, e.State().ElapsedTime)
	assert.Equal(t, 5, e.State().TimeRemaining)

	e.Seek(1000)
	assert.Equal(t, PhaseComplete, e.State().Phase)
	assert.Equal(t, 45, e.State().ElapsedTime)
	assert.Equal(t, 0, e.State().TimeRemaining)
	assert.False(t, e.Tick())
}

func TestEngine_SeekPausesAndNotifies(t *testing.T) {
	e, _ := newTestEngine(t, squatsSection())
	var elapsed []int
	e.ListenToElapsed(func(v int) { elapsed = append(elapsed, v) })

	e.Start()
	e.Tick()
	e.Seek(20)
	assert.True(t, e.State().IsPaused)
	assert.False(t, e.Tick())
	assert.Equal(t, []int{1, 20}, elapsed)
}

func TestEngine_PausedTicksDoNothing(t *testing.T) {
	e, rec := newTestEngine(t, squatsSection())
	e.Start()
	for i := 0; i < 7; i++ {
		e.Tick()
	}
	e.Pause()
	before := e.State()
	cues := len(rec.kinds)

	for i := 0; i < 50; i++ {
		assert.False(t, e.Tick())
	}
	assert.Equal(t, before, e.State())
	assert.Len(t, rec.kinds, cues)

	e.TogglePause()
	assert.True(t, e.Tick())
	assert.Equal(t, 8, e.State().ElapsedTime)
}

func TestEngine_CompleteIsTerminal(t *testing.T) {
	e, _ := newTestEngine(t, squatsSection())
	completions := 0
	e.ListenToComplete(func(State) { completions++ })
	runToEnd(t, e)

	e.Start()
	assert.False(t, e.Tick())
	assert.Equal(t, 1, completions)
	assert.Equal(t, 45, e.State().ElapsedTime)

	e.Reset()
	assert.Equal(t, PhaseSetup, e.State().Phase)
	assert.True(t, e.State().IsPaused)
}

func TestEngine_ElapsedIsMonotonic(t *testing.T) {
	e, _ := newTestEngine(t, stationsSection(true))
	last := 0
	e.ListenToElapsed(func(v int) {
		assert.Equal(t, last+1, v)
		last = v
	})
	runToEnd(t, e)
	assert.Equal(t, e.TotalSeconds(), last)
}

func TestNewEngine_RejectsBadConfig(t *testing.T) {
	tests := map[string]workout.Section{
		"unknown type": {TimerType: "tabata", Config: squatsSection().Config},
		"no exercises": {TimerType: workout.TimerTypeWholeRoomSame, Config: workout.Config{Sets: 1, WorkTime: secs(10)}},
		"no stations":  {TimerType: workout.TimerTypeStations, Config: workout.Config{Sets: 1, WorkTime: secs(10)}},
		"no time": {TimerType: workout.TimerTypeGetItDone, Config: workout.Config{
			Exercises: []workout.Exercise{{Name: "Run"}},
		}},
		"negative": {TimerType: workout.TimerTypeWholeRoomSame, Config: workout.Config{
			Sets: 1, WorkTime: workout.Duration{Seconds: -5}, Exercises: []workout.Exercise{{Name: "Run"}},
		}},
	}
	for name, section := range tests {
		t.Run(name, func(t *testing.T) {
			e, err := NewEngine(section, cue.NopEmitter{}, testLogger())
			assert.Nil(t, e)
			assert.True(t, errors.Is(err, workout.ErrInvalidConfig), "%v", err)
		})
	}

	_, err := NewEngine(workout.Section{TimerType: "tabata"}, cue.NopEmitter{}, testLogger())
	assert.ErrorIs(t, err, workout.ErrUnknownTimerType)
}

func TestNewEngine_PanicsOnNilDeps(t *testing.T) {
	assert.Panics(t, func() { _, _ = NewEngine(squatsSection(), nil, testLogger()) })
	assert.Panics(t, func() { _, _ = NewEngine(squatsSection(), cue.NopEmitter{}, nil) })
}
