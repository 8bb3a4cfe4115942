package timer

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lowaak/interval-timer/internal/cue"
	"github.com/lowaak/interval-timer/internal/events"
	"github.com/lowaak/interval-timer/internal/workout"
)

const countdownSeconds = 3

// Engine plays a single timer section:
// setup -> work -> rest -> (work | set rest | next rotation | complete).
//
// An Engine is not safe for concurrent use. Player serializes all calls.
type Engine struct {
	section workout.Section
	v       variant
	sets    int
	total   int
	state   State

	// goPending is set while a work phase at 0s has not announced itself yet
	goPending bool

	emitter cue.Emitter
	logger  *log.Logger

	completeEvent *events.CallbackEvent[State]
	elapsedEvent  *events.CallbackEvent[int]
}

// NewEngine validates the section and returns an engine reset to its first
// phase and paused. Configuration problems are returned here, never mid-tick.
func NewEngine(section workout.Section, emitter cue.Emitter, logger *log.Logger) (*Engine, error) {
	if emitter == nil {
		panic("Engine: emitter cannot be nil")
	}
	if logger == nil {
		panic("Engine: logger cannot be nil")
	}
	if err := section.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		section:       section,
		v:             variantFor(section.TimerType, section.Config),
		sets:          max(section.Config.Sets, 1),
		total:         section.TotalSeconds(),
		emitter:       emitter,
		logger:        logger,
		completeEvent: events.NewCallbackEvent[State](false),
		elapsedEvent:  events.NewCallbackEvent[int](false),
	}
	if e.v.countdownOnly {
		e.sets = 1
	}
	e.Reset()
	return e, nil
}

// Section returns the section being played
func (e *Engine) Section() workout.Section {
	return e.section
}

// TotalSeconds is the section length from the duration model
func (e *Engine) TotalSeconds() int {
	return e.total
}

// State returns a copy of the playback state
func (e *Engine) State() State {
	return e.state
}

// ListenToComplete registers a callback fired once when the section completes
func (e *Engine) ListenToComplete(callback func(State)) func() {
	return e.completeEvent.Listen(callback)
}

// ListenToElapsed registers a callback fired with the elapsed seconds after every tick and seek
func (e *Engine) ListenToElapsed(callback func(int)) func() {
	return e.elapsedEvent.Listen(callback)
}

// Reset returns to the first phase with time remaining, paused
func (e *Engine) Reset() {
	s := State{Phase: PhaseSetup, CurrentSet: 1, IsPaused: true}
	for s.Phase != PhaseComplete && e.phaseDuration(s) == 0 {
		s = e.following(s)
	}
	s.TimeRemaining = e.phaseDuration(s)
	e.state = s
	e.goPending = s.Phase == PhaseWork
}

// Start begins or resumes ticking
func (e *Engine) Start() {
	if e.state.Phase == PhaseComplete || !e.state.IsPaused {
		return
	}
	e.state.IsPaused = false
	// with no setup time the first work phase begins right now
	if e.goPending {
		e.goPending = false
		e.emitter.Emit(cue.Go)
	}
	e.logger.Debugf("Engine: %q started at %ds", e.section.Name, e.state.ElapsedTime)
}

// TogglePause starts a paused engine and pauses a running one
func (e *Engine) TogglePause() {
	if e.state.IsPaused {
		e.Start()
	} else {
		e.Pause()
	}
}

// Pause stops time from advancing
func (e *Engine) Pause() {
	if e.state.IsPaused {
		return
	}
	e.state.IsPaused = true
	e.logger.Debugf("Engine: %q paused at %ds", e.section.Name, e.state.ElapsedTime)
}

// Tick advances one second. Returns false when paused or complete.
// A phase that runs out fires its transition within the same tick.
func (e *Engine) Tick() bool {
	if e.state.IsPaused || e.state.Phase == PhaseComplete {
		return false
	}

	e.state.TimeRemaining--
	e.state.ElapsedTime++
	if e.state.TimeRemaining <= 0 {
		e.transition()
	} else {
		e.countdownCue()
	}

	e.elapsedEvent.Notify(e.state.ElapsedTime)
	if e.state.Phase == PhaseComplete {
		e.logger.Debugf("Engine: %q complete after %ds", e.section.Name, e.state.ElapsedTime)
		e.completeEvent.Notify(e.state)
	}
	return true
}

// Seek rebuilds the state at t seconds into the section by walking the same
// phase sequence as Tick. t is clamped to [0, total] and playback pauses.
func (e *Engine) Seek(t int) {
	t = min(max(t, 0), e.total)

	s := State{Phase: PhaseSetup, CurrentSet: 1}
	start, remaining := 0, 0
	for s.Phase != PhaseComplete {
		end := start + e.phaseDuration(s)
		// strict so an instant on a boundary lands where ticking would be
		if end > t {
			remaining = end - t
			break
		}
		start = end
		s = e.following(s)
	}

	s.TimeRemaining = remaining
	s.ElapsedTime = t
	s.IsPaused = true
	e.state = s
	e.goPending = t == 0 && s.Phase == PhaseWork
	e.elapsedEvent.Notify(t)
}

// transition leaves the current phase, passing through zero-length phases.
// Cues belong to the phase left and the phase settled on, never to the
// phases skipped in between.
func (e *Engine) transition() {
	from := e.state.Phase
	if from == PhaseWork {
		e.emitter.Emit(cue.Buzzer)
	}

	for {
		e.state = e.following(e.state)
		if e.state.Phase == PhaseComplete {
			e.state.TimeRemaining = 0
			break
		}
		if d := e.phaseDuration(e.state); d > 0 {
			e.state.TimeRemaining = d
			break
		}
	}

	if e.state.Phase == PhaseWork {
		e.emitter.Emit(cue.Go)
	}
	e.logger.Debugf("Engine: %q %s -> %s (set %d, exercise %d)",
		e.section.Name, from, e.state.Phase, e.state.CurrentSet, e.state.CurrentExerciseIndex+1)
}

func (e *Engine) countdownCue() {
	s := e.state
	if e.v.countdownOnly && s.ElapsedTime%60 == 0 {
		e.emitter.Emit(cue.Countdown)
		return
	}
	switch s.Phase {
	case PhaseSetup, PhaseWork, PhaseRest:
		if s.TimeRemaining <= countdownSeconds {
			e.emitter.Emit(cue.Countdown)
		}
	}
}

// following returns the phase after s; timing fields are left untouched
func (e *Engine) following(s State) State {
	switch s.Phase {
	case PhaseSetup:
		s.Phase = PhaseWork
		s.CurrentExerciseIndex = 0
	case PhaseWork:
		if e.v.countdownOnly {
			s.Phase = PhaseComplete
			break
		}
		if e.v.rotatesColors {
			s.ColorRotation++
		}
		s.Phase = PhaseRest
	case PhaseRest:
		next := (s.CurrentExerciseIndex + 1) % e.v.slots
		switch {
		case next != 0:
			s.Phase = PhaseWork
			s.CurrentExerciseIndex = next
		case s.CurrentSet < e.sets:
			s.Phase = PhaseSetRest
		case s.StationRotation+1 < e.v.rotations:
			s.StationRotation++
			s.CurrentSet = 1
			s.CurrentExerciseIndex = 0
			s.Phase = PhaseWork
		default:
			s.Phase = PhaseComplete
		}
	case PhaseSetRest:
		s.CurrentSet++
		s.CurrentExerciseIndex = 0
		s.Phase = PhaseWork
	}
	return s
}

func (e *Engine) phaseDuration(s State) int {
	cfg := e.section.Config
	switch s.Phase {
	case PhaseSetup:
		if e.v.countdownOnly {
			return 0
		}
		return cfg.SetupTime.TotalSeconds()
	case PhaseWork:
		return e.v.work(s.CurrentExerciseIndex)
	case PhaseRest:
		return e.v.rest(s.CurrentExerciseIndex)
	case PhaseSetRest:
		return cfg.RestBetweenSets.TotalSeconds()
	default:
		return 0
	}
}

// upcoming returns the next phase that will actually be shown
func (e *Engine) upcoming(s State) State {
	if s.Phase == PhaseComplete {
		return s
	}
	next := e.following(s)
	for next.Phase != PhaseComplete && e.phaseDuration(next) == 0 {
		next = e.following(next)
	}
	return next
}

// Snapshot returns a render-ready copy of the current state
func (e *Engine) Snapshot() Snapshot {
	s := e.state
	snap := Snapshot{
		State:        s,
		SectionName:  e.section.Name,
		TimerType:    e.section.TimerType,
		TotalSeconds: e.total,
		Sets:         e.sets,
		Rotations:    e.v.rotations,
		Exercises:    e.exerciseBoard(s),
	}

	next := e.upcoming(s)
	snap.NextPhase = next.Phase
	snap.NextDuration = e.phaseDuration(next)
	if next.Phase == PhaseWork && e.section.TimerType == workout.TimerTypeWholeRoomSame {
		snap.NextExerciseName = e.section.Config.Exercises[next.CurrentExerciseIndex].Name
	}
	return snap
}

func (e *Engine) exerciseBoard(s State) []ExerciseView {
	cfg := e.section.Config
	view := func(label string, ex workout.Exercise) ExerciseView {
		return ExerciseView{
			Label: label,
			Name:  ex.Name,
			Reps:  ex.RepsForSet(s.CurrentSet),
			Color: ex.Color,
			Notes: ex.Notes,
		}
	}

	switch e.section.TimerType {
	case workout.TimerTypeWholeRoomSame:
		return []ExerciseView{view("", cfg.Exercises[s.CurrentExerciseIndex])}

	case workout.TimerTypeWholeRoomRotational:
		// group g starts on exercise g and moves one along after every work phase
		n := len(cfg.Exercises)
		board := make([]ExerciseView, n)
		for g := 0; g < n; g++ {
			label := cfg.Exercises[g].Color
			if label == "" {
				label = fmt.Sprintf("Group %d", g+1)
			}
			board[g] = view(label, cfg.Exercises[(g+s.ColorRotation)%n])
		}
		return board

	case workout.TimerTypeStations:
		n := len(cfg.Stations)
		board := make([]ExerciseView, n)
		for i, st := range cfg.Stations {
			label := st.Name
			if label == "" {
				label = fmt.Sprintf("Station %d", i+1)
			}
			if cfg.RotateStations {
				group := ((i-s.StationRotation)%n+n)%n + 1
				label = fmt.Sprintf("%s - Group %d", label, group)
			}
			if s.CurrentExerciseIndex >= len(st.Exercises) {
				board[i] = ExerciseView{Label: label, Idle: true}
				continue
			}
			board[i] = view(label, st.Exercises[s.CurrentExerciseIndex])
		}
		return board

	default:
		board := make([]ExerciseView, len(cfg.Exercises))
		for i, ex := range cfg.Exercises {
			board[i] = view("", ex)
		}
		return board
	}
}
