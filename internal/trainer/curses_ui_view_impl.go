package trainer

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/interval-timer/internal/timer"
	"github.com/lowaak/interval-timer/internal/workout"
)

// Page names for tview.Pages
const (
	pageWorkoutSelection = "workout_selection"
	pagePlayer           = "player"
	pageConfirmStop      = "confirm_stop"
)

const (
	buttonStop   = "Stop"
	buttonResume = "Keep going"
)

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger      *log.Logger
	app         *tview.Application
	currentMode UIMode
	confirming  bool

	// Root container that holds all pages
	pages *tview.Pages

	// Shared components (visible in all modes)
	logView  *tview.TextView
	mainFlex *tview.Flex // Main layout: mode content on top, logs below

	// Workout Selection mode components
	workoutSelectionFlex       *tview.Flex
	workoutSelectionTabWidgets []*tview.Box
	workoutList                *tview.List
	workoutDetailsPanel        *tview.TextView
	workouts                   []*workout.Workout

	// Timer mode components
	playerFlex       *tview.Flex
	playerTabWidgets []*tview.Box
	clockPanel       *tview.TextView
	boardPanel       *tview.TextView

	confirmStopModal *tview.Modal
}

func NewCursesUIView(logger *log.Logger, app *tview.Application) *CursesUIViewImpl {
	if logger == nil {
		panic("CursesUIViewImpl: logger cannot be nil")
	}
	if app == nil {
		panic("CursesUIViewImpl: app cannot be nil")
	}
	return &CursesUIViewImpl{
		logger:      logger,
		app:         app,
		currentMode: UIModeWorkoutSelection,
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	// No SetChangedFunc with app.Draw(): it can hang during shutdown while
	// log lines are still arriving. BaseUIView draws after every update.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	ui.pages = tview.NewPages()

	ui.initWorkoutSelectionMode(controller)
	ui.initPlayerMode()
	ui.initConfirmStop(controller)

	ui.pages.AddPage(pageWorkoutSelection, ui.workoutSelectionFlex, true, true)
	ui.pages.AddPage(pagePlayer, ui.playerFlex, true, false)
	ui.pages.AddPage(pageConfirmStop, ui.confirmStopModal, true, false)

	ui.mainFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.pages, 0, 3, true).
		AddItem(ui.logView, 8, 0, false)

	ui.setFocusForCurrentMode()
}

// initWorkoutSelectionMode sets up the Workout Selection mode UI
func (ui *CursesUIViewImpl) initWorkoutSelectionMode(controller *UIController) {
	ui.workoutList = tview.NewList().
		ShowSecondaryText(true).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.logger.Debugf("UI: Workout selected: index=%d, name=%s", index, mainText)
			controller.OnWorkoutSelected(index)
		}).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.updateWorkoutDetailsDisplay(index)
		})
	ui.workoutList.SetBorder(true).SetTitle(" Workouts ")

	ui.workoutDetailsPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.workoutDetailsPanel.SetBorder(true).SetTitle(" Workout Details ")
	ui.updateWorkoutDetailsDisplay(-1)

	ui.workoutSelectionTabWidgets = append(ui.workoutSelectionTabWidgets, ui.workoutList.Box)
	ui.workoutSelectionTabWidgets = append(ui.workoutSelectionTabWidgets, ui.workoutDetailsPanel.Box)

	instructions := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("[yellow]Enter[white] Load  |  [yellow]Tab[white] Details  |  [yellow]1[white] Workouts  |  [yellow]2[white] Timer  |  [yellow]Esc[white] Quit")

	columns := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.workoutList, 0, 1, true).
		AddItem(ui.workoutDetailsPanel, 0, 2, false)

	ui.workoutSelectionFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(instructions, 1, 0, false).
		AddItem(columns, 0, 1, true)
}

// initPlayerMode sets up the Timer mode UI
func (ui *CursesUIViewImpl) initPlayerMode() {
	ui.clockPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.clockPanel.SetBorder(true).SetTitle(" Timer ")

	ui.boardPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.boardPanel.SetBorder(true).SetTitle(" Exercises ")

	ui.UpdatePlayerState(timer.PlayerState{Status: timer.PlayerStatusIdle})

	ui.playerTabWidgets = append(ui.playerTabWidgets, ui.clockPanel.Box)
	ui.playerTabWidgets = append(ui.playerTabWidgets, ui.boardPanel.Box)

	ui.playerFlex = tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.clockPanel, 0, 1, true).
		AddItem(ui.boardPanel, 0, 1, false)
}

func (ui *CursesUIViewImpl) initConfirmStop(controller *UIController) {
	ui.confirmStopModal = tview.NewModal().
		SetText("Stop this workout? Progress will be lost.").
		AddButtons([]string{buttonResume, buttonStop}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			controller.ConfirmStop(buttonLabel == buttonStop)
		})
}

// SetWorkoutList populates the workout selection list
func (ui *CursesUIViewImpl) SetWorkoutList(workouts []*workout.Workout, selected int) {
	ui.workouts = workouts
	ui.workoutList.Clear()

	for _, w := range workouts {
		ui.workoutList.AddItem(w.Name, formatWorkoutSummary(w), 0, nil)
	}

	if len(workouts) == 0 {
		ui.updateWorkoutDetailsDisplay(-1)
		return
	}
	if selected < 0 || selected >= len(workouts) {
		selected = 0
	}
	ui.workoutList.SetCurrentItem(selected)
	ui.updateWorkoutDetailsDisplay(selected)
}

// updateWorkoutDetailsDisplay formats and displays the workout details
func (ui *CursesUIViewImpl) updateWorkoutDetailsDisplay(index int) {
	if ui.workoutDetailsPanel == nil {
		return
	}
	var w *workout.Workout
	if index >= 0 && index < len(ui.workouts) {
		w = ui.workouts[index]
	}
	ui.workoutDetailsPanel.SetText(formatWorkoutDetails(w))
	ui.workoutDetailsPanel.ScrollToBeginning()
}

// SetMode switches the UI to the specified mode
func (ui *CursesUIViewImpl) SetMode(mode UIMode) {
	if ui.currentMode == mode {
		return
	}

	ui.currentMode = mode

	switch mode {
	case UIModeWorkoutSelection:
		ui.pages.SwitchToPage(pageWorkoutSelection)
	case UIModePlayer:
		ui.pages.SwitchToPage(pagePlayer)
	}
	if ui.confirming {
		ui.pages.ShowPage(pageConfirmStop)
		ui.app.SetFocus(ui.confirmStopModal)
		return
	}

	ui.setFocusForCurrentMode()
}

// GetCurrentMode returns the currently active UI mode
func (ui *CursesUIViewImpl) GetCurrentMode() UIMode {
	return ui.currentMode
}

// ShowStopConfirmation shows or hides the stop confirmation dialog
func (ui *CursesUIViewImpl) ShowStopConfirmation(show bool) {
	if ui.confirming == show {
		return
	}
	ui.confirming = show
	if show {
		ui.confirmStopModal.SetFocus(0)
		ui.pages.ShowPage(pageConfirmStop)
		ui.app.SetFocus(ui.confirmStopModal)
		return
	}
	ui.pages.HidePage(pageConfirmStop)
	ui.setFocusForCurrentMode()
}

// setFocusForCurrentMode sets focus to the first widget in the current mode
func (ui *CursesUIViewImpl) setFocusForCurrentMode() {
	if widgets := ui.getTabWidgetsForCurrentMode(); len(widgets) > 0 {
		ui.app.SetFocus(widgets[0])
	}
}

// getTabWidgetsForCurrentMode returns the tab widgets for the current mode
func (ui *CursesUIViewImpl) getTabWidgetsForCurrentMode() []*tview.Box {
	switch ui.currentMode {
	case UIModeWorkoutSelection:
		return ui.workoutSelectionTabWidgets
	case UIModePlayer:
		return ui.playerTabWidgets
	default:
		return nil
	}
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Escape closes the dialog first, then quits
		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}

		// the modal owns the keyboard while it is open
		if ui.confirming {
			return event
		}

		// Number keys for mode switching (1-9)
		if event.Key() == tcell.KeyRune {
			if mode, ok := GetUIModeByKey(event.Rune()); ok {
				controller.OnModeChange(mode)
				return nil
			}
		}

		// Tab to switch focus between widgets in current mode
		if event.Key() == tcell.KeyTab {
			widgets := ui.getTabWidgetsForCurrentMode()
			for i, w := range widgets {
				if w.HasFocus() {
					ui.app.SetFocus(widgets[(i+1)%len(widgets)])
					break
				}
			}
			return nil
		}

		if ui.currentMode != UIModePlayer {
			return event
		}

		switch event.Key() {
		case tcell.KeyLeft:
			controller.ScrubBackward()
			return nil
		case tcell.KeyRight:
			controller.ScrubForward()
			return nil
		case tcell.KeyRune:
			switch event.Rune() {
			case ' ':
				controller.TogglePlayback()
				return nil
			case 'x', 'X':
				controller.RequestStop()
				return nil
			case 'r', 'R':
				controller.RestartWorkout()
				return nil
			}
		}
		return event
	})
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprint(ui.logView, tview.Escape(line))
	return err
}

// UpdatePlayerState updates the clock face and exercise board
func (ui *CursesUIViewImpl) UpdatePlayerState(state timer.PlayerState) {
	if ui.clockPanel == nil || ui.boardPanel == nil {
		return
	}
	ui.clockPanel.SetText(formatClockFace(state))
	ui.boardPanel.SetText(formatExerciseBoard(state))

	title := " Exercises "
	if state.Workout != nil && state.Snapshot.Section.SectionName != "" {
		title = fmt.Sprintf(" %s ", state.Snapshot.Section.SectionName)
	}
	ui.boardPanel.SetTitle(title)
}

// Draw refreshes/redraws the UI
func (ui *CursesUIViewImpl) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.mainFlex, true)
	ui.setFocusForCurrentMode()
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}
