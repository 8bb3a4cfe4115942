package trainer

import (
	"github.com/lowaak/interval-timer/internal/timer"
)

// UIMode represents the current UI mode/screen
type UIMode int

const (
	UIModeWorkoutSelection UIMode = iota // Workout list and details
	UIModePlayer                         // Clock face and exercise board
)

// UIModeInfo contains display information for a UI mode
type UIModeInfo struct {
	Mode        UIMode
	DisplayName string
	KeyBinding  rune // The number key to activate this mode (1-9)
}

// AllUIModes defines all available UI modes in order
var AllUIModes = []UIModeInfo{
	{Mode: UIModeWorkoutSelection, DisplayName: "Workout Selection", KeyBinding: '1'},
	{Mode: UIModePlayer, DisplayName: "Timer", KeyBinding: '2'},
}

// GetUIModeByKey returns the mode for a given key binding
func GetUIModeByKey(key rune) (UIMode, bool) {
	for _, info := range AllUIModes {
		if info.KeyBinding == key {
			return info.Mode, true
		}
	}
	return 0, false
}

// GetUIModeInfo returns the info for a given mode
func GetUIModeInfo(mode UIMode) (UIModeInfo, bool) {
	for _, info := range AllUIModes {
		if info.Mode == mode {
			return info, true
		}
	}
	return UIModeInfo{}, false
}

// DefaultScrubStepSeconds is how far one arrow key press moves the clock
const DefaultScrubStepSeconds = 10

// phaseColors are the tview color tags used for each phase on the clock face
var phaseColors = map[timer.Phase]string{
	timer.PhaseSetup:    "yellow",
	timer.PhaseWork:     "green",
	timer.PhaseRest:     "blue",
	timer.PhaseSetRest:  "purple",
	timer.PhaseComplete: "white",
}

func phaseColor(p timer.Phase) string {
	if c, ok := phaseColors[p]; ok {
		return c
	}
	return "white"
}

const progressBarWidth = 30
