package workout

import "fmt"

// TotalSeconds is the closed-form playback length of a section configured
// as timer type t. Empty exercise or station lists contribute nothing.
func (c Config) TotalSeconds(t TimerType) int {
	sets := max(c.Sets, 1)
	setup := c.SetupTime.TotalSeconds()
	betweenSets := c.RestBetweenSets.TotalSeconds()
	interval := c.WorkTime.TotalSeconds() + c.RestTime.TotalSeconds()

	switch t {
	case TimerTypeWholeRoomSame:
		perSet := 0
		for i := range c.Exercises {
			perSet += c.ExerciseWork(i) + c.ExerciseRest(i)
		}
		return setup + sets*perSet + (sets-1)*betweenSets
	case TimerTypeWholeRoomRotational:
		return setup + sets*(len(c.Exercises)*interval) + (sets-1)*betweenSets
	case TimerTypeStations:
		rotations := c.Rotations()
		return setup + sets*rotations*(c.MaxStationExercises()*interval) + (sets-1)*rotations*betweenSets
	case TimerTypeGetItDone:
		return c.TotalTime.TotalSeconds()
	default:
		return 0
	}
}

// TotalSeconds of the section
func (s Section) TotalSeconds() int {
	return s.Config.TotalSeconds(s.TimerType)
}

// TotalSeconds of the whole workout, the sum of its sections
func (w Workout) TotalSeconds() int {
	total := 0
	for _, s := range w.Sections() {
		total += s.TotalSeconds()
	}
	return total
}

// Validate rejects a section the timer cannot play
func (s Section) Validate() error {
	if !s.TimerType.Valid() {
		return &ConfigError{
			Section: s.Name,
			Field:   "timer_type",
			Reason:  fmt.Sprintf("%q is not supported", s.TimerType),
			Err:     ErrUnknownTimerType,
		}
	}
	if err := s.Config.Validate(s.TimerType); err != nil {
		return inSection(s.Name, err)
	}
	return nil
}

// Validate checks the fields used by timer type t
func (c Config) Validate(t TimerType) error {
	durations := []struct {
		field string
		d     Duration
	}{
		{"setupTime", c.SetupTime},
		{"workTime", c.WorkTime},
		{"restTime", c.RestTime},
		{"restBetweenSets", c.RestBetweenSets},
		{"totalTime", c.TotalTime},
	}
	for _, entry := range durations {
		if err := entry.d.Validate(entry.field); err != nil {
			return err
		}
	}
	if err := validateExercises("exercises", c.Exercises); err != nil {
		return err
	}
	for i, st := range c.Stations {
		if err := validateExercises(fmt.Sprintf("stations[%d].exercises", i), st.Exercises); err != nil {
			return err
		}
	}

	switch t {
	case TimerTypeWholeRoomSame, TimerTypeWholeRoomRotational:
		if len(c.Exercises) == 0 {
			return newConfigError("exercises", "at least one exercise is required")
		}
		if c.Sets < 1 {
			return newConfigError("sets", fmt.Sprintf("must be at least 1 (got %d)", c.Sets))
		}
	case TimerTypeStations:
		if len(c.Stations) == 0 {
			return newConfigError("stations", "at least one station is required")
		}
		if c.MaxStationExercises() == 0 {
			return newConfigError("stations", "at least one station needs an exercise")
		}
		if c.Sets < 1 {
			return newConfigError("sets", fmt.Sprintf("must be at least 1 (got %d)", c.Sets))
		}
	case TimerTypeGetItDone:
		if len(c.Exercises) == 0 {
			return newConfigError("exercises", "at least one exercise is required")
		}
	default:
		return &ConfigError{Field: "timer_type", Reason: fmt.Sprintf("%q is not supported", t), Err: ErrUnknownTimerType}
	}

	if c.TotalSeconds(t) <= 0 {
		return newConfigError("config", "section has no playable time")
	}
	return nil
}

func validateExercises(field string, exercises []Exercise) error {
	for i, ex := range exercises {
		if ex.WorkTime != nil {
			if err := ex.WorkTime.Validate(fmt.Sprintf("%s[%d].workTime", field, i)); err != nil {
				return err
			}
		}
		if ex.RestTime != nil {
			if err := ex.RestTime.Validate(fmt.Sprintf("%s[%d].restTime", field, i)); err != nil {
				return err
			}
		}
	}
	return nil
}
