package timer

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lowaak/interval-timer/internal/cue"
	"github.com/lowaak/interval-timer/internal/events"
	"github.com/lowaak/interval-timer/internal/go_func_utils"
	"github.com/lowaak/interval-timer/internal/workout"
)

// ErrPlayerBusy is returned when loading a workout while another one is in progress
var ErrPlayerBusy = errors.New("a workout is in progress; stop it first")

const DefaultTickInterval = time.Second

// PlayerStatus represents the player's lifecycle
type PlayerStatus int

const (
	PlayerStatusIdle PlayerStatus = iota
	PlayerStatusReady
	PlayerStatusRunning
	PlayerStatusPaused
	PlayerStatusComplete
)

func (s PlayerStatus) String() string {
	switch s {
	case PlayerStatusIdle:
		return "idle"
	case PlayerStatusReady:
		return "ready"
	case PlayerStatusRunning:
		return "running"
	case PlayerStatusPaused:
		return "paused"
	case PlayerStatusComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// PlayerState is published after every change. Snapshot is zero when idle.
type PlayerState struct {
	Status   PlayerStatus
	Workout  *workout.Workout
	Snapshot WorkoutSnapshot
}

// Ticker is the tick source; a *time.Ticker in production
type Ticker interface {
	C() <-chan time.Time
	Stop()
	Reset(d time.Duration)
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time   { return r.t.C }
func (r realTicker) Stop()                 { r.t.Stop() }
func (r realTicker) Reset(d time.Duration) { r.t.Reset(d) }

func newRealTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

type playerCommandKind int

const (
	cmdStart playerCommandKind = iota
	cmdPause
	cmdSeek
	cmdScrub
	cmdReset
	cmdStop
)

type playerCommand struct {
	kind    playerCommandKind
	seconds int
}

// NewPlayerArg holds the player's dependencies. Zero TickInterval and nil
// NewTicker select one-second wall clock ticks.
type NewPlayerArg struct {
	Emitter      cue.Emitter
	Logger       *log.Logger
	TickInterval time.Duration
	NewTicker    func(d time.Duration) Ticker
}

// Player drives a Sequencer from a ticker goroutine. All playback state is
// touched only from that goroutine or under mu; callers observe it through
// State and ListenToState.
type Player struct {
	emitter      cue.Emitter
	logger       *log.Logger
	tickInterval time.Duration
	newTicker    func(d time.Duration) Ticker

	// protected by mu
	mu      sync.RWMutex
	status  PlayerStatus
	workout *workout.Workout
	seq     *Sequencer

	stateEvent *events.ChannelEvent[PlayerState]

	// Goroutine management
	cmdChan      chan playerCommand
	doneChan     chan struct{} // Closed to signal shutdown
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

func NewPlayer(arg NewPlayerArg) *Player {
	if arg.Emitter == nil {
		panic("Player: emitter cannot be nil")
	}
	if arg.Logger == nil {
		panic("Player: logger cannot be nil")
	}
	if arg.TickInterval <= 0 {
		arg.TickInterval = DefaultTickInterval
	}
	if arg.NewTicker == nil {
		arg.NewTicker = newRealTicker
	}

	p := &Player{
		emitter:      arg.Emitter,
		logger:       arg.Logger,
		tickInterval: arg.TickInterval,
		newTicker:    arg.NewTicker,
		status:       PlayerStatusIdle,
		stateEvent:   events.NewChannelEvent[PlayerState](true),
		cmdChan:      make(chan playerCommand, 1),
		doneChan:     make(chan struct{}),
	}

	p.wg.Add(1)
	go_func_utils.SafeGo(p.logger, func() { p.runLoop() })
	return p
}

// ListenToState subscribes ch to state changes. The latest state is sent
// immediately; a slow listener only ever misses intermediate states.
func (p *Player) ListenToState(ch chan PlayerState) func() {
	return p.stateEvent.Listen(ch)
}

// State returns the current state
func (p *Player) State() PlayerState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.buildState()
}

// Load validates w and makes it the current workout, paused on its first
// phase. Configuration errors are returned before any state changes.
func (p *Player) Load(w *workout.Workout) error {
	if w == nil {
		return &workout.ConfigError{Field: "workout", Reason: "no workout given"}
	}
	seq, err := NewWorkoutSequencer(w, p.emitter, p.logger)
	if err != nil {
		p.logger.Warnf("Player: rejected workout %q: %v", w.Name, err)
		return err
	}

	p.mu.Lock()
	if p.status == PlayerStatusRunning || p.status == PlayerStatusPaused {
		p.mu.Unlock()
		return ErrPlayerBusy
	}
	p.workout = w
	p.seq = seq
	p.status = PlayerStatusReady
	state := p.buildState()
	p.mu.Unlock()

	p.logger.Infof("Player: workout %q loaded (%d sections, %ds)", w.Name, state.Snapshot.SectionCount, seq.Total())
	p.stateEvent.Notify(state)
	return nil
}

// Start begins or resumes playback
func (p *Player) Start() {
	status := p.currentStatus()
	if status != PlayerStatusReady && status != PlayerStatusPaused {
		p.logger.Debugf("Player: cannot start while %s", status)
		return
	}
	p.send(playerCommand{kind: cmdStart})
}

// Pause stops the clock; the pending tick is cancelled
func (p *Player) Pause() {
	if status := p.currentStatus(); status != PlayerStatusRunning {
		p.logger.Debugf("Player: cannot pause while %s", status)
		return
	}
	p.send(playerCommand{kind: cmdPause})
}

// TogglePause starts when stopped and pauses when running
func (p *Player) TogglePause() {
	if p.currentStatus() == PlayerStatusRunning {
		p.Pause()
	} else {
		p.Start()
	}
}

// Seek jumps to seconds into the workout and leaves playback paused
func (p *Player) Seek(seconds int) {
	if p.currentStatus() == PlayerStatusIdle {
		return
	}
	p.send(playerCommand{kind: cmdSeek, seconds: seconds})
}

// Scrub seeks relative to the current position
func (p *Player) Scrub(delta int) {
	if p.currentStatus() == PlayerStatusIdle {
		return
	}
	p.send(playerCommand{kind: cmdScrub, seconds: delta})
}

// Restart rewinds the loaded workout to its beginning, paused
func (p *Player) Restart() {
	if p.currentStatus() == PlayerStatusIdle {
		return
	}
	p.send(playerCommand{kind: cmdReset})
}

// Stop discards the current workout. Callers confirm with the user first.
func (p *Player) Stop() {
	if p.currentStatus() == PlayerStatusIdle {
		p.logger.Debugf("Player: no workout to stop")
		return
	}
	p.send(playerCommand{kind: cmdStop})
}

// Shutdown stops the player goroutine and cleans up resources.
// Safe to call multiple times - only the first call has effect
func (p *Player) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.logger.Debug("Player: shutting down")
		close(p.doneChan)
		p.wg.Wait()
		p.logger.Debug("Player: shutdown complete")
	})
}

func (p *Player) currentStatus() PlayerStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

func (p *Player) send(cmd playerCommand) {
	select {
	case p.cmdChan <- cmd:
	case <-p.doneChan:
	}
}

// buildState MUST be called with mu held (at least read lock)
func (p *Player) buildState() PlayerState {
	state := PlayerState{Status: p.status, Workout: p.workout}
	if p.seq != nil {
		state.Snapshot = p.seq.Snapshot()
	}
	return state
}

// tickResult holds the outcome of one tick
type tickResult struct {
	state     PlayerState
	skip      bool // not running; a stale tick
	completed bool
}

func (p *Player) handleTick() tickResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != PlayerStatusRunning || p.seq == nil {
		return tickResult{skip: true}
	}
	p.seq.Tick()
	if p.seq.Complete() {
		p.status = PlayerStatusComplete
		return tickResult{state: p.buildState(), completed: true}
	}
	return tickResult{state: p.buildState()}
}

// handleCommand applies cmd under lock and reports whether the clock should run
func (p *Player) handleCommand(cmd playerCommand) (PlayerState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.seq == nil {
		return p.buildState(), false
	}

	switch cmd.kind {
	case cmdStart:
		if p.status == PlayerStatusReady || p.status == PlayerStatusPaused {
			p.seq.Start()
			p.status = PlayerStatusRunning
		}
	case cmdPause:
		p.seq.Pause()
		if p.status == PlayerStatusRunning {
			p.status = PlayerStatusPaused
		}
	case cmdSeek, cmdScrub:
		target := cmd.seconds
		if cmd.kind == cmdScrub {
			target += p.seq.Elapsed()
		}
		p.seq.Seek(target)
		if p.seq.Complete() {
			p.status = PlayerStatusComplete
		} else {
			p.status = PlayerStatusPaused
		}
	case cmdReset:
		p.seq.Reset()
		p.status = PlayerStatusReady
	case cmdStop:
		p.seq = nil
		p.workout = nil
		p.status = PlayerStatusIdle
	}
	return p.buildState(), p.status == PlayerStatusRunning
}

func (p *Player) runLoop() {
	defer p.wg.Done()

	ticker := p.newTicker(p.tickInterval)
	ticker.Stop() // runs only while playing

	for {
		select {
		case <-p.doneChan:
			ticker.Stop()
			p.logger.Debug("Player: goroutine exiting")
			return

		case cmd := <-p.cmdChan:
			state, running := p.handleCommand(cmd)
			if running {
				ticker.Reset(p.tickInterval)
			} else {
				ticker.Stop()
			}
			p.logger.Debugf("Player: %s at %ds", state.Status, state.Snapshot.Elapsed)
			p.stateEvent.Notify(state)

		case <-ticker.C():
			result := p.handleTick()
			if result.skip {
				continue
			}
			if result.completed {
				ticker.Stop()
				p.logger.Infof("Player: workout %q complete", result.state.Snapshot.WorkoutName)
			}
			p.stateEvent.Notify(result.state)
		}
	}
}
