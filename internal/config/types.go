package config

import (
	"fmt"
	"time"
)

// Duration wraps time.Duration so values can be parsed from environment
// variable strings like "30s" or "2m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a standard time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Secret holds a sensitive string (API keys, connection URIs with
// credentials). It redacts itself when printed or logged; callers must use
// Value to read the underlying string.
type Secret struct {
	value string
}

// NewSecret wraps a raw value.
func NewSecret(value string) Secret {
	return Secret{value: value}
}

// String implements fmt.Stringer and always redacts.
func (s Secret) String() string {
	if s.value == "" {
		return ""
	}
	return "[REDACTED]"
}

// Value returns the underlying secret.
func (s Secret) Value() string {
	return s.value
}

// IsSet reports whether a non-empty value was provided.
func (s Secret) IsSet() bool {
	return s.value != ""
}

// UnmarshalText implements encoding.TextUnmarshaler so secrets can be
// populated from environment variables.
func (s *Secret) UnmarshalText(text []byte) error {
	s.value = string(text)
	return nil
}

// MarshalText implements encoding.TextMarshaler and never leaks the value.
func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
