package config

import (
	"errors"
	"fmt"
	"strings"
)

// MissingConfigError reports every required environment key that was absent
// or empty. All missing keys are collected in a single pass so that one
// failed startup yields the complete diagnostic.
type MissingConfigError struct {
	Keys []string
}

// Error implements the error interface
func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Keys, ", "))
}

// FieldError describes a single configuration value that was present but
// malformed: the offending key, the raw value, and the expected shape.
type FieldError struct {
	Key   string
	Value string
	Want  string
}

func (f FieldError) String() string {
	return fmt.Sprintf("%s=%q (expected %s)", f.Key, f.Value, f.Want)
}

// InvalidConfigError reports every present-but-malformed configuration value.
type InvalidConfigError struct {
	Fields []FieldError
}

// Error implements the error interface
func (e *InvalidConfigError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.String())
	}
	return fmt.Sprintf("invalid configuration: %s", strings.Join(parts, "; "))
}

// Keys returns the offending keys in declaration order.
func (e *InvalidConfigError) Keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// IsMissingConfig checks if an error is a MissingConfigError
func IsMissingConfig(err error) bool {
	var missingErr *MissingConfigError
	return errors.As(err, &missingErr)
}

// IsInvalidConfig checks if an error is an InvalidConfigError
func IsInvalidConfig(err error) bool {
	var invalidErr *InvalidConfigError
	return errors.As(err, &invalidErr)
}
