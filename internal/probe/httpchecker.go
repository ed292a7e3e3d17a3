package probe

import (
	"context"
	"net/http"
	"time"
)

// Reachability is the outcome of a plain HTTP GET against the target,
// made without a browser. Preflight uses it to tell a dead target apart
// from a browser problem before a run.
type Reachability struct {
	OK         bool
	StatusCode int // 0 on transport errors
	LatencyMS  float64
	FinalURL   string // after redirects
	Message    string
}

type HTTPChecker struct {
	Client *http.Client
}

func NewHTTPChecker(timeout time.Duration) *HTTPChecker {
	return &HTTPChecker{
		Client: &http.Client{Timeout: timeout},
	}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) Reachability {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return Reachability{Message: err.Error()}
	}

	resp, err := h.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		return Reachability{Message: err.Error(), LatencyMS: latency}
	}
	defer resp.Body.Close()

	return Reachability{
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 400,
		StatusCode: resp.StatusCode,
		LatencyMS:  latency,
		FinalURL:   resp.Request.URL.String(),
		Message:    resp.Status,
	}
}
