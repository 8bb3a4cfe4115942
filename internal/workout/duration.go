package workout

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Duration is a {minutes, seconds} pair as entered in the workout editor
type Duration struct {
	Minutes int `json:"minutes" yaml:"minutes"`
	Seconds int `json:"seconds" yaml:"seconds"`
}

// DurationOf builds a normalized Duration from a number of seconds
func DurationOf(totalSeconds int) Duration {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	return Duration{Minutes: totalSeconds / 60, Seconds: totalSeconds % 60}
}

// TotalSeconds returns minutes*60 + seconds
func (d Duration) TotalSeconds() int {
	return d.Minutes*60 + d.Seconds
}

// IsZero reports whether the duration is empty
func (d Duration) IsZero() bool {
	return d.TotalSeconds() == 0
}

func (d Duration) String() string {
	return fmt.Sprintf("%d:%02d", d.Minutes, d.Seconds)
}

// Validate checks minutes >= 0 and seconds in [0,59]
func (d Duration) Validate(field string) error {
	if d.Minutes < 0 {
		return newConfigError(field, fmt.Sprintf("minutes must not be negative (got %d)", d.Minutes))
	}
	if d.Seconds < 0 || d.Seconds > 59 {
		return newConfigError(field, fmt.Sprintf("seconds must be between 0 and 59 (got %d)", d.Seconds))
	}
	return nil
}

// UnmarshalJSON accepts {"minutes":m,"seconds":s} where either component may be
// a number or a numeric string, a "m:ss" string, or a bare number of seconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" {
		*d = Duration{}
		return nil
	}
	if strings.HasPrefix(trimmed, "{") {
		var raw struct {
			Minutes looseInt `json:"minutes"`
			Seconds looseInt `json:"seconds"`
		}
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		*d = Duration{Minutes: int(raw.Minutes), Seconds: int(raw.Seconds)}
		return nil
	}
	var s string
	if strings.HasPrefix(trimmed, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = trimmed
	}
	parsed, err := parseClock(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// UnmarshalYAML accepts the same shapes as UnmarshalJSON
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := parseClock(value.Value)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case yaml.MappingNode:
		var raw struct {
			Minutes looseInt `yaml:"minutes"`
			Seconds looseInt `yaml:"seconds"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		*d = Duration{Minutes: int(raw.Minutes), Seconds: int(raw.Seconds)}
		return nil
	default:
		return newConfigError("duration", fmt.Sprintf("unsupported YAML node at line %d", value.Line))
	}
}

// parseClock parses "m:ss" or a bare number of seconds
func parseClock(s string) (Duration, error) {
	s = strings.TrimSpace(s)
	if before, after, found := strings.Cut(s, ":"); found {
		minutes, err := parseLooseInt(before)
		if err != nil {
			return Duration{}, err
		}
		seconds, err := parseLooseInt(after)
		if err != nil {
			return Duration{}, err
		}
		return Duration{Minutes: minutes, Seconds: seconds}, nil
	}
	total, err := parseLooseInt(s)
	if err != nil {
		return Duration{}, err
	}
	if total < 0 {
		return Duration{Seconds: total}, nil
	}
	return DurationOf(total), nil
}

// looseInt decodes from a JSON/YAML number or a numeric string.
// Records from the entity store are not strictly typed.
type looseInt int

func (n *looseInt) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if trimmed == "null" {
		*n = 0
		return nil
	}
	s := trimmed
	if strings.HasPrefix(trimmed, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	v, err := parseLooseInt(s)
	if err != nil {
		return err
	}
	*n = looseInt(v)
	return nil
}

func (n *looseInt) UnmarshalYAML(value *yaml.Node) error {
	v, err := parseLooseInt(value.Value)
	if err != nil {
		return err
	}
	*n = looseInt(v)
	return nil
}

func parseLooseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, newConfigError("duration", fmt.Sprintf("%q is not a whole number", s))
	}
	return int(f), nil
}
