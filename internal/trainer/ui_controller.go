package trainer

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/workout"
)

// PlayerControl is the part of the player the controller drives
type PlayerControl interface {
	Load(w *workout.Workout) error
	State() timer.PlayerState
	TogglePause()
	Scrub(deltaSeconds int)
	Restart()
	Stop()
	Shutdown()
}

// WorkoutSource lists the workouts offered for selection
type WorkoutSource interface {
	List(ctx context.Context) ([]*workout.Workout, error)
}

// NewUIControllerArg holds the arguments for creating a new UIController
type NewUIControllerArg struct {
	Model     *UIModel
	Player    PlayerControl
	Workouts  WorkoutSource
	ScrubStep int
	Logger    *log.Logger
}

// UIController handles UI events and coordinates with the UIModel
type UIController struct {
	model     *UIModel
	player    PlayerControl
	workouts  WorkoutSource
	scrubStep int
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewUIController creates a new UIController with the given dependencies
func NewUIController(arg NewUIControllerArg) *UIController {
	if arg.Model == nil {
		panic("UIController: model cannot be nil")
	}
	if arg.Player == nil {
		panic("UIController: player cannot be nil")
	}
	if arg.Workouts == nil {
		panic("UIController: workouts cannot be nil")
	}
	if arg.Logger == nil {
		panic("UIController: logger cannot be nil")
	}
	if arg.ScrubStep <= 0 {
		arg.ScrubStep = DefaultScrubStepSeconds
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &UIController{
		model:     arg.Model,
		player:    arg.Player,
		workouts:  arg.Workouts,
		scrubStep: arg.ScrubStep,
		logger:    arg.Logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// RefreshWorkouts reloads the workout list from the store
func (c *UIController) RefreshWorkouts() {
	workouts, err := c.workouts.List(c.ctx)
	if err != nil {
		c.logger.Errorf("Loading workouts failed: %v", err)
		return
	}
	c.model.SetWorkouts(workouts)
	c.logger.Debugf("UIController: %d workouts available", len(workouts))
}

// OnWorkoutSelected loads the workout at index and switches to the timer
func (c *UIController) OnWorkoutSelected(index int) {
	w, ok := c.model.GetWorkout(index)
	if !ok {
		c.logger.Warnf("Invalid workout index: %d", index)
		return
	}

	if err := c.player.Load(w); err != nil {
		if errors.Is(err, timer.ErrPlayerBusy) {
			c.logger.Warn("A workout is in progress - stop it first (x)")
			return
		}
		c.logger.Errorf("Cannot play %q: %v", w.Name, err)
		return
	}

	c.logger.Infof("Workout selected: %s", w.Name)
	c.model.RememberWorkout(w)
	c.model.SetMode(UIModePlayer)
}

// OnModeChange handles when the user requests a mode change
func (c *UIController) OnModeChange(mode UIMode) {
	if info, ok := GetUIModeInfo(mode); ok {
		c.logger.Debugf("Switching to %s mode", info.DisplayName)
	}
	c.model.SetMode(mode)
}

// TogglePlayback starts, pauses, or resumes the workout based on current state.
// A finished workout starts over.
func (c *UIController) TogglePlayback() {
	switch c.player.State().Status {
	case timer.PlayerStatusReady, timer.PlayerStatusPaused, timer.PlayerStatusRunning:
		c.player.TogglePause()
	case timer.PlayerStatusComplete:
		c.player.Restart()
	default:
		c.logger.Info("No workout loaded - select one in Workout Selection (press 1)")
	}
}

// ScrubForward moves the clock ahead by the scrub step
func (c *UIController) ScrubForward() {
	c.scrub(c.scrubStep)
}

// ScrubBackward moves the clock back by the scrub step
func (c *UIController) ScrubBackward() {
	c.scrub(-c.scrubStep)
}

func (c *UIController) scrub(delta int) {
	if c.player.State().Status == timer.PlayerStatusIdle {
		return
	}
	c.player.Scrub(delta)
}

// RestartWorkout rewinds the loaded workout to its start
func (c *UIController) RestartWorkout() {
	if c.player.State().Status == timer.PlayerStatusIdle {
		return
	}
	c.player.Restart()
	c.logger.Info("Workout restarted")
}

// RequestStop asks for confirmation before discarding the running workout
func (c *UIController) RequestStop() {
	if c.player.State().Status == timer.PlayerStatusIdle {
		return
	}
	c.model.SetConfirmingStop(true)
}

// ConfirmStop closes the confirmation; when stop is true the workout is
// discarded and the workout list is shown again.
func (c *UIController) ConfirmStop(stop bool) {
	c.model.SetConfirmingStop(false)
	if !stop {
		return
	}
	c.player.Stop()
	c.logger.Info("Workout stopped")
	c.model.SetMode(UIModeWorkoutSelection)
}

// OnEscapeKey dismisses the stop confirmation, or quits
func (c *UIController) OnEscapeKey() {
	if c.model.GetUIState().ConfirmingStop {
		c.ConfirmStop(false)
		return
	}
	c.model.RequestCloseApplication()
}

// Shutdown stops the player and cleans up resources
func (c *UIController) Shutdown() {
	c.cancel()
	c.player.Shutdown()
}
