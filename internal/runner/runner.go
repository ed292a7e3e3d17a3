// Package runner executes the registered checks against one browser session.
package runner

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/hamed0406/browsersmoke/internal/browser"
	"github.com/hamed0406/browsersmoke/internal/domain"
	"github.com/hamed0406/browsersmoke/internal/probe"
	"github.com/hamed0406/browsersmoke/internal/report"
)

type State string

const (
	NotStarted   State = "not_started"
	SessionReady State = "session_ready"
	Executing    State = "executing"
	Completed    State = "completed"
)

type Runner struct {
	Logger   *zap.Logger
	Acquirer browser.Acquirer
	Options  browser.Options
	Registry *probe.Registry
	Reporter report.Reporter
	Target   domain.Target
	Clock    probe.Clock

	state State
}

// New fills in defaults: a no-op logger and reporter, the default
// registry and the wall clock.
func New(
	logger *zap.Logger,
	acq browser.Acquirer,
	opts browser.Options,
	reg *probe.Registry,
	rep report.Reporter,
	target domain.Target,
) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = probe.Default()
	}
	if rep == nil {
		rep = discard{}
	}
	return &Runner{
		Logger:   logger,
		Acquirer: acq,
		Options:  opts,
		Registry: reg,
		Reporter: rep,
		Target:   target,
		Clock:    probe.SystemClock(),
		state:    NotStarted,
	}
}

func (r *Runner) State() State { return r.state }

func (r *Runner) transition(s State) {
	r.Logger.Info("run_state", zap.String("from", string(r.state)), zap.String("to", string(s)))
	r.state = s
}

// Run acquires a session, executes every check in order and releases the
// session. Only a failed acquisition stops the run early; it is recorded
// in Report.Fatal and no check runs.
func (r *Runner) Run(ctx context.Context) domain.Report {
	checks := r.Registry.Checks()
	rep := domain.Report{Target: r.Target, StartedAt: r.Clock.Now()}

	r.Reporter.Start(r.Target, len(checks))
	r.Logger.Info("run_started",
		zap.String("target", string(r.Target)),
		zap.Int("checks", len(checks)),
	)

	sess, err := r.Acquirer.Acquire(ctx, r.Options)
	if err == nil && sess == nil {
		err = errors.New("acquirer returned no session")
	}
	if err != nil {
		var acq *browser.SessionAcquisitionError
		if !errors.As(err, &acq) {
			err = &browser.SessionAcquisitionError{Driver: "unknown", Err: err}
		}
		rep.Fatal = err
		rep.FinishedAt = r.Clock.Now()
		r.Logger.Error("session_acquire_failed", zap.Error(err))
		r.Reporter.Fatal(err)
		r.Reporter.Summary(rep)
		return rep
	}
	r.transition(SessionReady)

	rep.Verdicts = r.execute(ctx, sess, checks)
	rep.FinishedAt = r.Clock.Now()

	passed, failed := rep.Counts()
	r.Logger.Info("run_finished",
		zap.Bool("passed", rep.Passed()),
		zap.Int("passed_checks", passed),
		zap.Int("failed_checks", failed),
		zap.Duration("took", rep.FinishedAt.Sub(rep.StartedAt)),
	)
	r.Reporter.Summary(rep)
	return rep
}

func (r *Runner) execute(ctx context.Context, sess browser.Session, checks []probe.Check) []domain.Verdict {
	defer r.release(sess)

	r.transition(Executing)
	env := probe.Env{Session: sess, Target: r.Target, Clock: r.Clock}
	verdicts := make([]domain.Verdict, 0, len(checks))
	for _, c := range checks {
		verdicts = append(verdicts, r.runCheck(ctx, env, c))
	}
	r.transition(Completed)
	return verdicts
}

// runCheck converts every fault raised by a procedure, panics included,
// into a failed verdict.
func (r *Runner) runCheck(ctx context.Context, env probe.Env, c probe.Check) (v domain.Verdict) {
	r.Reporter.CheckStarted(c.Order, c.Name)
	r.Logger.Info("check_running", zap.Int("order", c.Order), zap.String("name", c.Name))
	start := r.Clock.Now()

	defer func() {
		if p := recover(); p != nil {
			v = domain.Fail(c.Order, c.Name, fmt.Sprintf("panic: %v", p), r.Clock.Now().Sub(start))
		}
		fields := []zap.Field{
			zap.Int("order", v.Order),
			zap.String("name", v.Name),
			zap.String("status", string(v.Status)),
			zap.Duration("elapsed", v.Elapsed),
		}
		if v.Passed() {
			r.Logger.Info("check_finished", append(fields, zap.String("detail", v.Detail))...)
		} else {
			r.Logger.Warn("check_finished", append(fields, zap.String("reason", v.Reason))...)
		}
		r.Reporter.CheckFinished(v)
	}()

	detail, err := c.Run(ctx, env)
	elapsed := r.Clock.Now().Sub(start)
	if err != nil {
		return domain.Fail(c.Order, c.Name, err.Error(), elapsed)
	}
	return domain.Pass(c.Order, c.Name, detail, elapsed)
}

func (r *Runner) release(sess browser.Session) {
	defer func() {
		if p := recover(); p != nil {
			r.Logger.Error("session_release_panic", zap.Any("panic", p))
		}
	}()
	sess.Release()
	r.Logger.Info("session_released")
}

type discard struct{}

func (discard) Start(domain.Target, int) {}
func (discard) CheckStarted(int, string) {}
func (discard) CheckFinished(domain.Verdict) {}
func (discard) Fatal(error) {}
func (discard) Summary(domain.Report) {}
