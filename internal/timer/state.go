package timer

import (
	"github.com/lowaak/interval-timer/internal/workout"
)

// Phase of a section's playback
type Phase string

const (
	PhaseSetup    Phase = "setup"
	PhaseWork     Phase = "work"
	PhaseRest     Phase = "rest"
	PhaseSetRest  Phase = "set_rest"
	PhaseComplete Phase = "complete"
)

// DisplayName returns the label shown on the clock face
func (p Phase) DisplayName() string {
	switch p {
	case PhaseSetup:
		return "Get Ready"
	case PhaseWork:
		return "Work"
	case PhaseRest:
		return "Rest"
	case PhaseSetRest:
		return "Set Rest"
	case PhaseComplete:
		return "Complete"
	default:
		return string(p)
	}
}

// State is the playback state of one section. All times are in seconds.
// StationRotation is zero-based and only moves for rotating stations.
type State struct {
	Phase                Phase
	CurrentSet           int
	CurrentExerciseIndex int
	StationRotation      int
	ColorRotation        int
	TimeRemaining        int
	ElapsedTime          int
	IsPaused             bool
}

// ExerciseView is one line of the exercise board
type ExerciseView struct {
	Label string
	Name  string
	Reps  workout.RepCount
	Color string
	Notes string
	Idle  bool
}

// Snapshot is the render-ready view of a section at one instant
type Snapshot struct {
	State
	SectionName  string
	TimerType    workout.TimerType
	TotalSeconds int
	Sets         int
	Rotations    int
	Exercises    []ExerciseView

	// what follows the current phase; NextPhase is PhaseComplete at the end
	NextPhase        Phase
	NextDuration     int
	NextExerciseName string
}

// variant captures how the timer types differ. The phase sequence is shared.
type variant struct {
	slots         int
	rotations     int
	rotatesColors bool
	countdownOnly bool
	work          func(slot int) int
	rest          func(slot int) int
}

func variantFor(t workout.TimerType, c workout.Config) variant {
	shared := func(d workout.Duration) func(int) int {
		seconds := d.TotalSeconds()
		return func(int) int { return seconds }
	}

	switch t {
	case workout.TimerTypeWholeRoomSame:
		return variant{
			slots:     len(c.Exercises),
			rotations: 1,
			work:      c.ExerciseWork,
			rest:      c.ExerciseRest,
		}
	case workout.TimerTypeWholeRoomRotational:
		return variant{
			slots:         len(c.Exercises),
			rotations:     1,
			rotatesColors: true,
			work:          shared(c.WorkTime),
			rest:          shared(c.RestTime),
		}
	case workout.TimerTypeStations:
		return variant{
			slots:     c.MaxStationExercises(),
			rotations: c.Rotations(),
			work:      shared(c.WorkTime),
			rest:      shared(c.RestTime),
		}
	default:
		total := c.TotalTime.TotalSeconds()
		return variant{
			slots:         1,
			rotations:     1,
			countdownOnly: true,
			work:          func(int) int { return total },
			rest:          func(int) int { return 0 },
		}
	}
}
