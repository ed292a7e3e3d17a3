package runner

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/browsersmoke/internal/browser"
	"github.com/hamed0406/browsersmoke/internal/browser/browsertest"
	"github.com/hamed0406/browsersmoke/internal/domain"
	"github.com/hamed0406/browsersmoke/internal/probe"
)

const target = domain.Target("http://toronto.test:3000")

// --- fakes ---

type recordingReporter struct {
	events   []string
	verdicts []domain.Verdict
	fatal    error
	summary  *domain.Report
}

func (r *recordingReporter) Start(t domain.Target, n int) { r.events = append(r.events, "start") }
func (r *recordingReporter) CheckStarted(order int, name string) {
	r.events = append(r.events, "started:"+name)
}
func (r *recordingReporter) CheckFinished(v domain.Verdict) {
	r.events = append(r.events, "finished:"+v.Name)
	r.verdicts = append(r.verdicts, v)
}
func (r *recordingReporter) Fatal(err error) {
	r.events = append(r.events, "fatal")
	r.fatal = err
}
func (r *recordingReporter) Summary(rep domain.Report) {
	r.events = append(r.events, "summary")
	r.summary = &rep
}

func goodPage() *browsertest.Session {
	html := "<html><head><title>Toronto</title></head><body>" + strings.Repeat("<p>Toronto</p>", 20) + "</body></html>"
	return browsertest.Page(string(target)+"/", "Toronto", html)
}

func outcome(pass bool) probe.Procedure {
	return func(ctx context.Context, env probe.Env) (string, error) {
		if pass {
			return "ok", nil
		}
		return "", errors.New("nope")
	}
}

// --- tests ---

func TestRun_DefaultRegistryAllPass(t *testing.T) {
	sess := goodPage()
	acq := &browsertest.Acquirer{Session: sess}
	rep := &recordingReporter{}

	r := New(zap.NewNop(), acq, browser.DefaultOptions(), nil, rep, target)
	out := r.Run(context.Background())

	require.NoError(t, out.Fatal)
	assert.True(t, out.Passed(), "%+v", out.Verdicts)
	assert.Equal(t, 0, out.ExitCode())
	assert.Len(t, out.Verdicts, 7)
	assert.Equal(t, 1, sess.Releases())
	assert.Equal(t, 1, acq.Calls)
	assert.Equal(t, browser.DefaultOptions(), acq.Opts)
	assert.Len(t, sess.Navigations(), 7, "each check navigates on its own")
	assert.Equal(t, Completed, r.State())
	assert.Equal(t, "summary", rep.events[len(rep.events)-1])
}

func TestRun_ReleasesExactlyOnce(t *testing.T) {
	combos := [][]bool{
		{true, true, true},
		{false, false, false},
		{true, false, true},
		{false, true, false},
	}
	for _, combo := range combos {
		var checks []probe.Check
		for i, pass := range combo {
			checks = append(checks, probe.Check{Order: i + 1, Name: string(rune('a' + i)), Run: outcome(pass)})
		}
		sess := goodPage()
		r := New(nil, &browsertest.Acquirer{Session: sess}, browser.DefaultOptions(), probe.MustRegistry(checks...), nil, target)
		out := r.Run(context.Background())

		assert.Equal(t, 1, sess.Releases(), "combo %v", combo)
		assert.Len(t, out.Verdicts, len(combo))
		for i, pass := range combo {
			assert.Equal(t, pass, out.Verdicts[i].Passed(), "combo %v check %d", combo, i)
		}
	}
}

func TestRun_ReleasesOnceWhenCheckPanics(t *testing.T) {
	sess := goodPage()
	reg := probe.MustRegistry(
		probe.Check{Order: 1, Name: "boom", Run: func(ctx context.Context, env probe.Env) (string, error) {
			panic("nil map write")
		}},
		probe.Check{Order: 2, Name: "after", Run: outcome(true)},
	)
	out := New(nil, &browsertest.Acquirer{Session: sess}, browser.DefaultOptions(), reg, nil, target).Run(context.Background())

	assert.Equal(t, 1, sess.Releases())
	require.Len(t, out.Verdicts, 2)
	assert.False(t, out.Verdicts[0].Passed())
	assert.Equal(t, "panic: nil map write", out.Verdicts[0].Reason)
	assert.True(t, out.Verdicts[1].Passed(), "a panic must not abort later checks")
	assert.Equal(t, 1, out.ExitCode())
}

func TestRun_InvokesInAscendingOrder(t *testing.T) {
	var seen []int
	record := func(order int) probe.Procedure {
		return func(ctx context.Context, env probe.Env) (string, error) {
			seen = append(seen, order)
			return "", nil
		}
	}
	reg := probe.MustRegistry(
		probe.Check{Order: 5, Name: "e", Run: record(5)},
		probe.Check{Order: 1, Name: "a", Run: record(1)},
		probe.Check{Order: 3, Name: "c", Run: record(3)},
		probe.Check{Order: 2, Name: "b", Run: record(2)},
	)
	rep := &recordingReporter{}
	New(nil, &browsertest.Acquirer{Session: goodPage()}, browser.DefaultOptions(), reg, rep, target).Run(context.Background())

	assert.Equal(t, []int{1, 2, 3, 5}, seen)
	assert.Equal(t, []string{
		"start",
		"started:a", "finished:a",
		"started:b", "finished:b",
		"started:c", "finished:c",
		"started:e", "finished:e",
		"summary",
	}, rep.events)
}

func TestRun_FailureDoesNotAbortLaterChecks(t *testing.T) {
	sess := goodPage()
	sess.Source = "<html><body>502 Bad Gateway</body></html>"
	rep := &recordingReporter{}

	out := New(nil, &browsertest.Acquirer{Session: sess}, browser.DefaultOptions(), nil, rep, target).Run(context.Background())

	require.Len(t, out.Verdicts, 7)
	byName := map[string]domain.Verdict{}
	for _, v := range out.Verdicts {
		byName[v.Name] = v
	}
	assert.False(t, byName["Page has content"].Passed())
	assert.False(t, byName["No server errors"].Passed())
	assert.Contains(t, byName["No server errors"].Reason, "502 bad gateway")
	assert.True(t, byName["HTTP accessible"].Passed())
	assert.Len(t, rep.verdicts, 7)
	assert.Equal(t, 1, sess.Releases())
	assert.Equal(t, 1, out.ExitCode())
}

func TestRun_AcquisitionFailureIsFatal(t *testing.T) {
	invoked := 0
	reg := probe.MustRegistry(probe.Check{Order: 1, Name: "a", Run: func(ctx context.Context, env probe.Env) (string, error) {
		invoked++
		return "", nil
	}})
	acq := &browsertest.Acquirer{Err: errors.New("chrome failed to start")}
	rep := &recordingReporter{}

	r := New(nil, acq, browser.DefaultOptions(), reg, rep, target)
	out := r.Run(context.Background())

	assert.Zero(t, invoked)
	assert.Empty(t, out.Verdicts)
	assert.False(t, out.Passed())
	assert.NotEqual(t, 0, out.ExitCode())
	var acqErr *browser.SessionAcquisitionError
	require.ErrorAs(t, out.Fatal, &acqErr)
	assert.Equal(t, []string{"start", "fatal", "summary"}, rep.events)
	assert.Equal(t, NotStarted, r.State())
}

func TestRun_WrapsUntypedAcquisitionError(t *testing.T) {
	acq := browser.AcquirerFunc(func(ctx context.Context, o browser.Options) (browser.Session, error) {
		return nil, errors.New("plain")
	})
	out := New(nil, acq, browser.DefaultOptions(), nil, nil, target).Run(context.Background())

	var acqErr *browser.SessionAcquisitionError
	assert.ErrorAs(t, out.Fatal, &acqErr)
}

func TestRun_NilSessionIsFatal(t *testing.T) {
	acq := browser.AcquirerFunc(func(ctx context.Context, o browser.Options) (browser.Session, error) {
		return nil, nil
	})
	out := New(nil, acq, browser.DefaultOptions(), nil, nil, target).Run(context.Background())
	assert.Error(t, out.Fatal)
	assert.Empty(t, out.Verdicts)
}

func TestRun_LoadTimeUsesRunnerClock(t *testing.T) {
	clock := browsertest.NewClock()
	sess := goodPage()
	sess.Clock, sess.LoadTime = clock, 31*time.Second

	r := New(nil, &browsertest.Acquirer{Session: sess}, browser.DefaultOptions(), nil, nil, target)
	r.Clock = clock
	out := r.Run(context.Background())

	for _, v := range out.Verdicts {
		if v.Name == "Load time acceptable" {
			assert.False(t, v.Passed())
			assert.Contains(t, v.Reason, "31000ms")
			assert.Equal(t, 31*time.Second, v.Elapsed)
			return
		}
	}
	t.Fatal("load time verdict missing")
}

func TestRun_LogsLifecycle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sess := goodPage()
	New(zap.New(core), &browsertest.Acquirer{Session: sess}, browser.DefaultOptions(), nil, nil, target).Run(context.Background())

	assert.Equal(t, 1, logs.FilterMessage("run_started").Len())
	assert.Equal(t, 7, logs.FilterMessage("check_running").Len())
	assert.Equal(t, 7, logs.FilterMessage("check_finished").Len())
	assert.Equal(t, 1, logs.FilterMessage("session_released").Len())
	assert.Equal(t, 1, logs.FilterMessage("run_finished").Len())

	var states []string
	for _, e := range logs.FilterMessage("run_state").All() {
		states = append(states, e.ContextMap()["to"].(string))
	}
	assert.Equal(t, []string{"session_ready", "executing", "completed"}, states)
}
