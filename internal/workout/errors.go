package workout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is the root of every configuration error returned by this package
	ErrInvalidConfig = errors.New("invalid workout configuration")

	// ErrUnknownTimerType is returned for a timer_type outside the supported set
	ErrUnknownTimerType = fmt.Errorf("%w: unknown timer type", ErrInvalidConfig)
)

// ConfigError describes a single rejected configuration field.
// Section is empty for errors that are not tied to a timer section.
type ConfigError struct {
	Section string
	Field   string
	Reason  string
	Err     error
}

func (e *ConfigError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("section %q: %s: %s", e.Section, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidConfig
}

func newConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

// inSection tags err with the section name if it is a ConfigError
func inSection(name string, err error) error {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) && cfgErr.Section == "" {
		cfgErr.Section = name
	}
	return err
}
