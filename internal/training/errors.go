package training

import (
	"errors"
	"fmt"
)

// ErrNoEligibleItems is returned when a valid configuration resolves to an
// empty pool.
var ErrNoEligibleItems = errors.New("no eligible items for this configuration")

// ConfigurationError is a user-facing setup problem. The caller re-renders
// the setup form with Message.
type ConfigurationError struct {
	Field   string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// StaleSessionError means there is no active session, or the answer refers to
// an item that is not the one currently dealt. Callers send the user back to
// setup.
type StaleSessionError struct {
	Reason string
}

func (e *StaleSessionError) Error() string { return "stale training session: " + e.Reason }

func staleSession(reason string) error {
	return &StaleSessionError{Reason: reason}
}

func configError(field, message string) error {
	return &ConfigurationError{Field: field, Message: message}
}
