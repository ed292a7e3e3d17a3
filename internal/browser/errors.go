package browser

import (
	"fmt"
	"time"
)

// SessionAcquisitionError means the browser could not be started. It is
// fatal to a run.
type SessionAcquisitionError struct {
	Driver string
	Err    error
}

func (e *SessionAcquisitionError) Error() string {
	return fmt.Sprintf("acquire %s session: %v", e.Driver, e.Err)
}

func (e *SessionAcquisitionError) Unwrap() error { return e.Err }

// ElementNotFoundError means no element matched within the implicit wait.
type ElementNotFoundError struct {
	Selector string
	Wait     time.Duration
	Err      error
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element <%s> not found after %s", e.Selector, e.Wait)
}

func (e *ElementNotFoundError) Unwrap() error { return e.Err }

// NavigationTimeoutError means a page load exceeded the page-load timeout.
type NavigationTimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("navigation to %s timed out after %s", e.URL, e.Timeout)
}

func (e *NavigationTimeoutError) Unwrap() error { return e.Err }
