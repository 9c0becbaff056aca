package models

import "fmt"

// InputError reports malformed or missing team/strength data.
type InputError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error in %s: %s", e.Field, e.Message)
}

// IncompleteScheduleError reports a schedule that cannot support the
// comparisons the tiebreak procedure requires.
type IncompleteScheduleError struct {
	Group   string `json:"group"`
	Message string `json:"message"`
}

func (e *IncompleteScheduleError) Error() string {
	return fmt.Sprintf("incomplete schedule for %s: %s", e.Group, e.Message)
}

// ConfigurationError reports invalid run configuration such as a
// non-positive trial count or malformed probability parameters.
type ConfigurationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Message)
}
