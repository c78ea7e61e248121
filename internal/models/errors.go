package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig marks a configuration that must stop startup
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrStorageExhausted means a logbook write failed after every retry
	ErrStorageExhausted = errors.New("logbook write retries exhausted")

	// ErrElementNotFound means a page element did not appear within its bound
	ErrElementNotFound = errors.New("element not found")

	// ErrBrowserUnavailable means no browser session could be started
	ErrBrowserUnavailable = errors.New("browser unavailable")

	// ErrNotReachable means connectivity was not restored after a login
	ErrNotReachable = errors.New("internet not reachable after login")
)

// StepError reports which login step failed
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
