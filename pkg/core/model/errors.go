package model

import (
	"errors"
	"fmt"
)

// ErrMissingBaselineLevel is returned when the level table has no value for the
// baseline level, leaving unknown levels without a fallback
var ErrMissingBaselineLevel = errors.New("baseline level has no configured value")

// ConfigurationError is an unrecoverable configuration problem detected before
// the model is formulated
type ConfigurationError struct {
	Field string
	Key   string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s %q: %v", e.Field, e.Key, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
