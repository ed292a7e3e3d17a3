package domain

import "time"

// Target is the base URL of the application under test.
type Target string

type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
)

// Verdict is the outcome of one check.
type Verdict struct {
	Order   int           `json:"order"`
	Name    string        `json:"name"`
	Status  Status        `json:"status"`
	Detail  string        `json:"detail,omitempty"` // measured value: title, length, elapsed, URL
	Reason  string        `json:"reason,omitempty"` // why it failed
	Elapsed time.Duration `json:"elapsed"`
}

func (v Verdict) Passed() bool { return v.Status == StatusPassed }

// Pass builds a passing verdict.
func Pass(order int, name, detail string, elapsed time.Duration) Verdict {
	return Verdict{Order: order, Name: name, Status: StatusPassed, Detail: detail, Elapsed: elapsed}
}

// Fail builds a failing verdict. An empty reason is replaced so a
// failure is never silent.
func Fail(order int, name, reason string, elapsed time.Duration) Verdict {
	if reason == "" {
		reason = "check failed"
	}
	return Verdict{Order: order, Name: name, Status: StatusFailed, Reason: reason, Elapsed: elapsed}
}

// Report aggregates the verdicts of one run in execution order.
type Report struct {
	Target     Target    `json:"target"`
	Verdicts   []Verdict `json:"verdicts"`
	Fatal      error     `json:"-"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Passed reports overall success: no fatal error, at least one verdict,
// and every verdict passed.
func (r Report) Passed() bool {
	if r.Fatal != nil || len(r.Verdicts) == 0 {
		return false
	}
	for _, v := range r.Verdicts {
		if !v.Passed() {
			return false
		}
	}
	return true
}

// Counts returns the number of passed and failed verdicts.
func (r Report) Counts() (passed, failed int) {
	for _, v := range r.Verdicts {
		if v.Passed() {
			passed++
		} else {
			failed++
		}
	}
	return passed, failed
}

// ExitCode maps the report to a process exit status.
func (r Report) ExitCode() int {
	if r.Passed() {
		return 0
	}
	return 1
}
