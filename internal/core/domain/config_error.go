package domain

import (
	"fmt"
	"strings"
)

// ConfigurationError reports every constraint a configuration violates.
// It unwraps to ErrInvalidConfiguration.
type ConfigurationError struct {
	// Subject names what was validated, e.g. "PostProcessor" or a config file path.
	Subject    string
	Violations []string
}

// Add records a violation for the given dotted path.
func (e *ConfigurationError) Add(path, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if path != "" {
		msg = path + ": " + msg
	}
	e.Violations = append(e.Violations, msg)
}

// Err returns e when at least one violation was recorded, nil otherwise.
func (e *ConfigurationError) Err() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}

func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrInvalidConfiguration.Error())
	if e.Subject != "" {
		b.WriteString(" for ")
		b.WriteString(e.Subject)
	}
	b.WriteString(":")
	for _, v := range e.Violations {
		b.WriteString("\n  - ")
		b.WriteString(v)
	}
	return b.String()
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}
