// Package probe declares the ordered smoke checks run against a target.
package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/hamed0406/browsersmoke/internal/browser"
	"github.com/hamed0406/browsersmoke/internal/domain"
)

// Clock is the time source used for measured checks.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Env is what a check procedure is given: the shared session, the target
// and a clock. Checks must not keep references to it.
type Env struct {
	Session browser.Session
	Target  domain.Target
	Clock   Clock
}

// Procedure performs one check. It returns a diagnostic detail on success
// and an error describing the unmet condition or fault otherwise.
type Procedure func(ctx context.Context, env Env) (detail string, err error)

// Check is a named, ordered unit of verification.
type Check struct {
	Order int
	Name  string
	Run   Procedure
}

// AssertionFailure is returned when a check's pass condition does not hold.
type AssertionFailure struct {
	Condition string
}

func (e *AssertionFailure) Error() string { return e.Condition }

func assertf(format string, args ...any) error {
	return &AssertionFailure{Condition: fmt.Sprintf(format, args...)}
}
