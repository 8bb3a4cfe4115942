package timer

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/lowaak/interval-timer/internal/cue"
	"github.com/lowaak/interval-timer/internal/events"
	"github.com/lowaak/interval-timer/internal/workout"
)

// WorkoutSnapshot is the render-ready view of a whole workout
type WorkoutSnapshot struct {
	WorkoutName  string
	SectionIndex int
	SectionCount int
	Section      Snapshot
	Elapsed      int
	Total        int
	Complete     bool

	// empty on the last section
	NextSection string
}

// Remaining returns the seconds left in the whole workout
func (s WorkoutSnapshot) Remaining() int {
	return s.Total - s.Elapsed
}

// Sequencer plays an ordered list of sections as one continuous workout.
// Only the first section waits for an explicit Start; later sections start
// as soon as the previous one completes.
//
// Like Engine, a Sequencer is not safe for concurrent use.
type Sequencer struct {
	name          string
	sections      []workout.Section
	totals        []int
	total         int
	index         int
	elapsedBefore int
	engine        *Engine
	unlisten      []func()

	advancePending bool
	complete       bool

	emitter cue.Emitter
	logger  *log.Logger

	elapsedEvent  *events.CallbackEvent[int]
	sectionEvent  *events.CallbackEvent[int]
	completeEvent *events.CallbackEvent[struct{}]
}

// NewSequencer validates every section up front so a bad section is reported
// before anything plays
func NewSequencer(name string, sections []workout.Section, emitter cue.Emitter, logger *log.Logger) (*Sequencer, error) {
	if emitter == nil {
		panic("Sequencer: emitter cannot be nil")
	}
	if logger == nil {
		panic("Sequencer: logger cannot be nil")
	}
	if len(sections) == 0 {
		return nil, &workout.ConfigError{Field: "timer_sections", Reason: "workout has no timer sections"}
	}

	seq := &Sequencer{
		name:          name,
		sections:      sections,
		totals:        make([]int, len(sections)),
		emitter:       emitter,
		logger:        logger,
		elapsedEvent:  events.NewCallbackEvent[int](false),
		sectionEvent:  events.NewCallbackEvent[int](false),
		completeEvent: events.NewCallbackEvent[struct{}](false),
	}
	for i, section := range sections {
		if err := section.Validate(); err != nil {
			return nil, err
		}
		seq.totals[i] = section.TotalSeconds()
		seq.total += seq.totals[i]
	}

	if err := seq.load(0); err != nil {
		return nil, err
	}
	logger.Debugf("Sequencer: %q loaded with %d sections (%ds)", name, len(sections), seq.total)
	return seq, nil
}

// NewWorkoutSequencer builds a sequencer from a stored workout, accepting the
// legacy single-config form as a one-section workout
func NewWorkoutSequencer(w *workout.Workout, emitter cue.Emitter, logger *log.Logger) (*Sequencer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return NewSequencer(w.Name, w.Sections(), emitter, logger)
}

// ListenToElapsed registers a callback receiving whole-workout elapsed seconds
func (s *Sequencer) ListenToElapsed(callback func(int)) func() {
	return s.elapsedEvent.Listen(callback)
}

// ListenToSection registers a callback receiving the index of each section as it becomes active
func (s *Sequencer) ListenToSection(callback func(int)) func() {
	return s.sectionEvent.Listen(callback)
}

// ListenToComplete registers a callback fired once when the last section ends
func (s *Sequencer) ListenToComplete(callback func(struct{})) func() {
	return s.completeEvent.Listen(callback)
}

func (s *Sequencer) Name() string   { return s.name }
func (s *Sequencer) Total() int     { return s.total }
func (s *Sequencer) Index() int     { return s.index }
func (s *Sequencer) Complete() bool { return s.complete }

// Elapsed returns seconds since the start of the first section
func (s *Sequencer) Elapsed() int {
	return s.elapsedBefore + s.engine.State().ElapsedTime
}

// Paused reports whether the active section is paused
func (s *Sequencer) Paused() bool {
	return s.engine.State().IsPaused
}

func (s *Sequencer) Start() {
	if s.complete {
		return
	}
	s.engine.Start()
}

func (s *Sequencer) Pause() {
	s.engine.Pause()
}

func (s *Sequencer) TogglePause() {
	if s.engine.State().IsPaused {
		s.Start()
	} else {
		s.Pause()
	}
}

// Reset goes back to the first section, paused
func (s *Sequencer) Reset() {
	s.complete = false
	s.advancePending = false
	if err := s.load(0); err != nil {
		// sections were validated in NewSequencer
		s.logger.Errorf("Sequencer: reloading first section: %v", err)
	}
	s.elapsedEvent.Notify(0)
}

// Tick advances the active section one second. When that section completes
// the next one is loaded and started in the same tick.
func (s *Sequencer) Tick() bool {
	if s.complete {
		return false
	}
	ticked := s.engine.Tick()
	if s.advancePending {
		s.advancePending = false
		s.advance()
	}
	return ticked
}

// Seek moves to t seconds into the whole workout, loading whichever section
// contains t. Playback is left paused.
func (s *Sequencer) Seek(t int) {
	t = min(max(t, 0), s.total)

	target := len(s.sections) - 1
	end := 0
	for i, d := range s.totals {
		end += d
		if end > t {
			target = i
			break
		}
	}

	if target != s.index {
		if err := s.load(target); err != nil {
			s.logger.Errorf("Sequencer: loading section %d: %v", target+1, err)
			return
		}
	}
	s.advancePending = false
	s.complete = false
	s.engine.Seek(t - s.elapsedBefore)
	if t == s.total {
		s.complete = true
	}
	s.logger.Debugf("Sequencer: seek to %ds (section %d)", t, target+1)
}

// Snapshot returns a render-ready copy of the whole workout
func (s *Sequencer) Snapshot() WorkoutSnapshot {
	snap := WorkoutSnapshot{
		WorkoutName:  s.name,
		SectionIndex: s.index,
		SectionCount: len(s.sections),
		Section:      s.engine.Snapshot(),
		Elapsed:      s.Elapsed(),
		Total:        s.total,
		Complete:     s.complete,
	}
	if s.index+1 < len(s.sections) {
		snap.NextSection = sectionTitle(s.sections[s.index+1], s.index+1)
	}
	return snap
}

func (s *Sequencer) advance() {
	if s.index+1 >= len(s.sections) {
		s.complete = true
		s.logger.Debugf("Sequencer: %q complete", s.name)
		s.completeEvent.Notify(struct{}{})
		return
	}
	if err := s.load(s.index + 1); err != nil {
		s.logger.Errorf("Sequencer: loading section %d: %v", s.index+2, err)
		s.complete = true
		s.completeEvent.Notify(struct{}{})
		return
	}
	s.engine.Start()
}

func (s *Sequencer) load(i int) error {
	engine, err := NewEngine(s.sections[i], s.emitter, s.logger)
	if err != nil {
		return err
	}

	for _, unlisten := range s.unlisten {
		unlisten()
	}

	s.engine = engine
	s.index = i
	s.elapsedBefore = 0
	for _, d := range s.totals[:i] {
		s.elapsedBefore += d
	}
	s.unlisten = []func(){
		engine.ListenToComplete(func(State) { s.advancePending = true }),
		engine.ListenToElapsed(func(e int) { s.elapsedEvent.Notify(s.elapsedBefore + e) }),
	}

	s.logger.Debugf("Sequencer: section %d/%d %q (%s)", i+1, len(s.sections), s.sections[i].Name, s.sections[i].TimerType)
	s.sectionEvent.Notify(i)
	return nil
}

func sectionTitle(section workout.Section, i int) string {
	if section.Name != "" {
		return section.Name
	}
	return fmt.Sprintf("%s %d", section.TimerType.DisplayName(), i+1)
}
