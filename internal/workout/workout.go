package workout

import (
	"encoding/json"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// TimerType selects the playback variant of a section
type TimerType string

const (
	TimerTypeWholeRoomSame       TimerType = "whole_room_same"
	TimerTypeWholeRoomRotational TimerType = "whole_room_rotational"
	TimerTypeStations            TimerType = "stations"
	TimerTypeGetItDone           TimerType = "get_it_done"
)

// AllTimerTypes lists the supported variants in display order
var AllTimerTypes = []TimerType{
	TimerTypeWholeRoomSame,
	TimerTypeWholeRoomRotational,
	TimerTypeStations,
	TimerTypeGetItDone,
}

// Valid reports whether t is one of the supported variants
func (t TimerType) Valid() bool {
	for _, known := range AllTimerTypes {
		if t == known {
			return true
		}
	}
	return false
}

// DisplayName returns a human readable label
func (t TimerType) DisplayName() string {
	switch t {
	case TimerTypeWholeRoomSame:
		return "Whole Room - Same Exercise"
	case TimerTypeWholeRoomRotational:
		return "Whole Room - Rotational"
	case TimerTypeStations:
		return "Stations"
	case TimerTypeGetItDone:
		return "Get It Done"
	default:
		return string(t)
	}
}

// RepCount is a display string; it decodes from numbers ("10") and text ("AMRAP", "10/side")
type RepCount string

func (r *RepCount) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	switch {
	case trimmed == "null":
		*r = ""
	case strings.HasPrefix(trimmed, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*r = RepCount(s)
	default:
		// keep the literal text of numbers so 10 stays "10" rather than "1e+01"
		if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
			return newConfigError("reps", "must be a number or a string")
		}
		*r = RepCount(trimmed)
	}
	return nil
}

func (r *RepCount) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return newConfigError("reps", "must be a number or a string")
	}
	*r = RepCount(value.Value)
	return nil
}

// Exercise is one movement inside a section or station
type Exercise struct {
	Name          string     `json:"name" yaml:"name"`
	Reps          RepCount   `json:"reps,omitempty" yaml:"reps,omitempty"`
	Color         string     `json:"color,omitempty" yaml:"color,omitempty"`
	Notes         string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	WorkTime      *Duration  `json:"workTime,omitempty" yaml:"work_time,omitempty"`
	RestTime      *Duration  `json:"restTime,omitempty" yaml:"rest_time,omitempty"`
	UsePerSetReps bool       `json:"usePerSetReps,omitempty" yaml:"use_per_set_reps,omitempty"`
	PerSetReps    []RepCount `json:"perSetReps,omitempty" yaml:"per_set_reps,omitempty"`
}

// RepsForSet returns the per-set override for the 1-based set when enabled
// and present, otherwise the default rep count.
func (e Exercise) RepsForSet(set int) RepCount {
	if e.UsePerSetReps && set >= 1 && set <= len(e.PerSetReps) {
		if override := e.PerSetReps[set-1]; strings.TrimSpace(string(override)) != "" {
			return override
		}
	}
	return e.Reps
}

// Station is a fixed spot in the room with its own exercise list
type Station struct {
	Name      string     `json:"name,omitempty" yaml:"name,omitempty"`
	Exercises []Exercise `json:"exercises" yaml:"exercises"`
}

// Config is the variant-specific configuration of one timer section.
// Fields that a variant does not use are ignored.
type Config struct {
	Sets            int        `json:"sets,omitempty" yaml:"sets,omitempty"`
	SetupTime       Duration   `json:"setupTime" yaml:"setup_time"`
	WorkTime        Duration   `json:"workTime" yaml:"work_time"`
	RestTime        Duration   `json:"restTime" yaml:"rest_time"`
	RestBetweenSets Duration   `json:"restBetweenSets" yaml:"rest_between_sets"`
	TotalTime       Duration   `json:"totalTime" yaml:"total_time"`
	Exercises       []Exercise `json:"exercises,omitempty" yaml:"exercises,omitempty"`
	Stations        []Station  `json:"stations,omitempty" yaml:"stations,omitempty"`
	RotateStations  bool       `json:"rotateStations,omitempty" yaml:"rotate_stations,omitempty"`
}

// UnmarshalJSON tolerates sets stored as a string
func (c *Config) UnmarshalJSON(b []byte) error {
	type plain Config
	aux := struct {
		*plain
		Sets looseInt `json:"sets"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.Sets = int(aux.Sets)
	return nil
}

// ExerciseWork returns the work time of exercise i, falling back to the shared work time
func (c Config) ExerciseWork(i int) int {
	if i >= 0 && i < len(c.Exercises) && c.Exercises[i].WorkTime != nil {
		return c.Exercises[i].WorkTime.TotalSeconds()
	}
	return c.WorkTime.TotalSeconds()
}

// ExerciseRest returns the rest time of exercise i, falling back to the shared rest time
func (c Config) ExerciseRest(i int) int {
	if i >= 0 && i < len(c.Exercises) && c.Exercises[i].RestTime != nil {
		return c.Exercises[i].RestTime.TotalSeconds()
	}
	return c.RestTime.TotalSeconds()
}

// MaxStationExercises is the exercise count of the busiest station
func (c Config) MaxStationExercises() int {
	most := 0
	for _, st := range c.Stations {
		most = max(most, len(st.Exercises))
	}
	return most
}

// Rotations is how many times groups move between stations
func (c Config) Rotations() int {
	if !c.RotateStations {
		return 1
	}
	return max(len(c.Stations), 1)
}

// Section is one timer block of a workout
type Section struct {
	Name      string    `json:"name" yaml:"name"`
	TimerType TimerType `json:"timer_type" yaml:"timer_type"`
	Config    Config    `json:"config" yaml:"config"`
}

// Workout as stored in the entity store. Older records carry a single
// WorkoutType/WorkoutConfig pair instead of TimerSections.
type Workout struct {
	ID               string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name             string    `json:"name" yaml:"name"`
	Description      string    `json:"description,omitempty" yaml:"description,omitempty"`
	TimerSections    []Section `json:"timer_sections,omitempty" yaml:"timer_sections,omitempty"`
	AssignedTeams    []string  `json:"assigned_teams,omitempty" yaml:"assigned_teams,omitempty"`
	AssignedAthletes []string  `json:"assigned_athletes,omitempty" yaml:"assigned_athletes,omitempty"`

	WorkoutType   TimerType `json:"workout_type,omitempty" yaml:"workout_type,omitempty"`
	WorkoutConfig *Config   `json:"workout_config,omitempty" yaml:"workout_config,omitempty"`
}

// Sections returns the timer sections, converting the legacy single-timer form
func (w Workout) Sections() []Section {
	if len(w.TimerSections) > 0 {
		return w.TimerSections
	}
	if w.WorkoutType == "" || w.WorkoutConfig == nil {
		return nil
	}
	return []Section{{Name: w.Name, TimerType: w.WorkoutType, Config: *w.WorkoutConfig}}
}

// Validate rejects workouts that cannot be played
func (w Workout) Validate() error {
	sections := w.Sections()
	if len(sections) == 0 {
		return newConfigError("timer_sections", "workout has no timer sections")
	}
	for i, s := range sections {
		if err := s.Validate(); err != nil {
			if s.Name == "" {
				return inSection(strconv.Itoa(i+1), err)
			}
			return err
		}
	}
	return nil
}
