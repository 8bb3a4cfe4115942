package trainer

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lowaak/interval-timer/internal/events"
	"github.com/lowaak/interval-timer/internal/go_func_utils"
	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/workout"
)

// UIState holds the current state of the UI that views need to render
type UIState struct {
	Mode           UIMode
	ConfirmingStop bool
}

// PlayerStateSource is the part of the player the model observes
type PlayerStateSource interface {
	ListenToState(ch chan timer.PlayerState) func()
}

// NewUIModelArg holds the arguments for creating a new UIModel
type NewUIModelArg struct {
	Player    PlayerStateSource
	Logger    *log.Logger
	UILogChan <-chan string
	// StatePath is the JSON file remembering UI selections; empty disables it
	StatePath string
}

type UIModel struct {
	logEvent              *events.ChannelEvent[string]
	closeApplicationEvent *events.ChannelEvent[struct{}]
	uiStateEvent          *events.ChannelEvent[UIState]
	uiState               UIState
	workoutsEvent         *events.ChannelEvent[[]*workout.Workout]
	workouts              []*workout.Workout
	playerStateEvent      *events.ChannelEvent[timer.PlayerState]
	playerState           timer.PlayerState
	persistence           *uiModelPersistence
	logLines              []string
	logMu                 sync.RWMutex
	mu                    sync.RWMutex
	ctx                   context.Context
	cancel                context.CancelFunc
	wg                    sync.WaitGroup
	logger                *log.Logger
}

const maxLogLines = 1000

func NewUIModel(arg NewUIModelArg) *UIModel {
	if arg.Logger == nil {
		panic("UIModel: logger cannot be nil")
	}
	if arg.Player == nil {
		panic("UIModel: player cannot be nil")
	}
	if arg.UILogChan == nil {
		panic("UIModel: uiLogChan cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	model := &UIModel{
		logEvent:              events.NewChannelEvent[string](false),
		closeApplicationEvent: events.NewChannelEvent[struct{}](true),
		uiStateEvent:          events.NewChannelEvent[UIState](true),
		uiState:               UIState{Mode: UIModeWorkoutSelection},
		workoutsEvent:         events.NewChannelEvent[[]*workout.Workout](true),
		playerStateEvent:      events.NewChannelEvent[timer.PlayerState](true),
		playerState:           timer.PlayerState{Status: timer.PlayerStatusIdle},
		persistence:           newUIModelPersistence(arg.StatePath, arg.Logger),
		logLines:              make([]string, 0, maxLogLines),
		ctx:                   ctx,
		cancel:                cancel,
		logger:                arg.Logger,
	}

	// Mirror the player's state so views never talk to the player directly
	model.wg.Add(1)
	go_func_utils.SafeGo(model.logger, func() { model.listenToPlayer(ctx, arg.Player) })

	// Read from the UI log channel and populate logLines
	model.wg.Add(1)
	go_func_utils.SafeGo(model.logger, func() { model.readFromLogChannel(ctx, arg.UILogChan) })

	return model
}

// Shutdown stops all goroutines and waits for them to finish
func (m *UIModel) Shutdown() {
	m.logger.Debug("UIModel: Shutting down")
	m.cancel()
	m.wg.Wait()
	m.logger.Debug("UIModel: Shutdown complete")
}

// ListenToLog registers a channel to receive log messages
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToLog(ch chan string) func() {
	return m.logEvent.Listen(ch)
}

// ListenToCloseApplication registers a channel to receive close application signals
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToCloseApplication(ch chan struct{}) func() {
	return m.closeApplicationEvent.Listen(ch)
}

// RequestCloseApplication signals that the application should close
func (m *UIModel) RequestCloseApplication() {
	m.closeApplicationEvent.Notify(struct{}{})
}

// ListenToUIState registers a channel to receive UI state changes
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToUIState(ch chan UIState) func() {
	return m.uiStateEvent.Listen(ch)
}

// GetUIState returns the current UI state
func (m *UIModel) GetUIState() UIState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uiState
}

// SetMode updates the current UI mode and notifies listeners
func (m *UIModel) SetMode(mode UIMode) {
	m.updateUIState(func(s *UIState) { s.Mode = mode })
}

// SetConfirmingStop shows or hides the stop confirmation
func (m *UIModel) SetConfirmingStop(confirming bool) {
	m.updateUIState(func(s *UIState) { s.ConfirmingStop = confirming })
}

func (m *UIModel) updateUIState(update func(s *UIState)) {
	m.mu.Lock()
	prev := m.uiState
	update(&m.uiState)
	state := m.uiState
	m.mu.Unlock()

	if state != prev {
		m.uiStateEvent.Notify(state)
	}
}

// ListenToWorkouts registers a channel to receive the workout list
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToWorkouts(ch chan []*workout.Workout) func() {
	return m.workoutsEvent.Listen(ch)
}

// GetWorkouts returns the workouts available for selection
func (m *UIModel) GetWorkouts() []*workout.Workout {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*workout.Workout, len(m.workouts))
	copy(result, m.workouts)
	return result
}

// SetWorkouts replaces the workout list and notifies listeners
func (m *UIModel) SetWorkouts(workouts []*workout.Workout) {
	m.mu.Lock()
	m.workouts = make([]*workout.Workout, len(workouts))
	copy(m.workouts, workouts)
	result := make([]*workout.Workout, len(m.workouts))
	copy(result, m.workouts)
	m.mu.Unlock()

	m.workoutsEvent.Notify(result)
}

// GetWorkout returns the workout at index in the current list
func (m *UIModel) GetWorkout(index int) (*workout.Workout, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if index < 0 || index >= len(m.workouts) {
		return nil, false
	}
	return m.workouts[index], true
}

// LastWorkoutIndex returns the list position of the last played workout, or 0
func (m *UIModel) LastWorkoutIndex() int {
	id := m.persistence.getLastWorkoutID()
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, w := range m.workouts {
		if id != "" && w.ID == id {
			return i
		}
	}
	return 0
}

// RememberWorkout records w as the last played workout
func (m *UIModel) RememberWorkout(w *workout.Workout) {
	if w == nil || w.ID == "" {
		return
	}
	m.persistence.setLastWorkoutID(w.ID)
}

// ListenToPlayerState registers a channel to receive player state updates
// Returns a deregistration function that can be called to remove the listener
func (m *UIModel) ListenToPlayerState(ch chan timer.PlayerState) func() {
	return m.playerStateEvent.Listen(ch)
}

// GetPlayerState returns the latest player state
func (m *UIModel) GetPlayerState() timer.PlayerState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.playerState
}

func (m *UIModel) listenToPlayer(ctx context.Context, player PlayerStateSource) {
	defer m.wg.Done()

	stateChan := make(chan timer.PlayerState, 1)
	unregister := player.ListenToState(stateChan)
	defer unregister()

	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-stateChan:
			if !ok {
				return
			}
			m.mu.Lock()
			prev := m.playerState.Status
			m.playerState = state
			m.mu.Unlock()

			m.playerStateEvent.Notify(state)

			// a finished workout closes the player and hands back the workout list
			if prev != state.Status && state.Status == timer.PlayerStatusComplete {
				m.logger.Infof("Workout %q complete", state.Snapshot.WorkoutName)
				m.updateUIState(func(s *UIState) {
					s.Mode = UIModeWorkoutSelection
					s.ConfirmingStop = false
				})
			}
		}
	}
}

// readFromLogChannel reads log lines from the channel and populates logLines
func (m *UIModel) readFromLogChannel(ctx context.Context, logChan <-chan string) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-logChan:
			if !ok {
				return
			}

			m.logMu.Lock()
			m.logLines = append(m.logLines, line)
			if len(m.logLines) > maxLogLines {
				m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
			}
			m.logMu.Unlock()

			m.logEvent.Notify(line)
		}
	}
}

// GetLogTail returns the last n lines of logs
func (m *UIModel) GetLogTail(n int) []string {
	m.logMu.RLock()
	defer m.logMu.RUnlock()

	if n <= 0 {
		return []string{}
	}
	if n > len(m.logLines) {
		n = len(m.logLines)
	}
	result := make([]string, n)
	copy(result, m.logLines[len(m.logLines)-n:])
	return result
}
