// Package browser owns the browser-control session used by a smoke run.
//
// A Session is acquired once with fixed Options, used sequentially by
// every check and released exactly once. Two backends are available:
// Chrome (chromedp, talks CDP directly) and Playwright (playwright-go).
package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Session is one open browser connection.
type Session interface {
	// Navigate loads url, bounded by the page-load timeout.
	Navigate(ctx context.Context, url string) error
	// Title returns the current document title; an empty title is not an error.
	Title(ctx context.Context) (string, error)
	// PageSource returns the serialized markup of the current document.
	PageSource(ctx context.Context) (string, error)
	// FindElement waits up to the implicit wait for an element matching tag.
	FindElement(ctx context.Context, tag string) error
	// CurrentURL returns the URL of the current document.
	CurrentURL(ctx context.Context) (string, error)
	// Release closes the session. Safe to call more than once.
	Release()
}

// Acquirer starts sessions.
type Acquirer interface {
	Acquire(ctx context.Context, opts Options) (Session, error)
}

// AcquirerFunc adapts a function to Acquirer.
type AcquirerFunc func(ctx context.Context, opts Options) (Session, error)

func (f AcquirerFunc) Acquire(ctx context.Context, opts Options) (Session, error) {
	return f(ctx, opts)
}

const (
	DriverChromedp   = "chromedp"
	DriverPlaywright = "playwright"
)

// NewAcquirer returns the backend registered under driver.
func NewAcquirer(driver string, logger *zap.Logger) (Acquirer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverChromedp:
		return &Chrome{Logger: logger}, nil
	case DriverPlaywright:
		return &Playwright{Logger: logger}, nil
	default:
		return nil, fmt.Errorf("unknown browser driver %q", driver)
	}
}

type Options struct {
	Headless           bool
	NoSandbox          bool
	DisableDevShm      bool // avoid /dev/shm exhaustion in containers
	DisableGPU         bool
	WindowWidth        int
	WindowHeight       int
	RemoteAllowOrigins string // empty leaves the flag unset
	ImplicitWait       time.Duration
	PageLoadTimeout    time.Duration
	ExecPath           string
}

// DefaultOptions is the configuration used against containerized targets.
func DefaultOptions() Options {
	return Options{
		Headless:           true,
		NoSandbox:          true,
		DisableDevShm:      true,
		DisableGPU:         true,
		WindowWidth:        1920,
		WindowHeight:       1080,
		RemoteAllowOrigins: "*",
		ImplicitWait:       10 * time.Second,
		PageLoadTimeout:    30 * time.Second,
	}
}

type flag struct {
	name  string
	value any
}

// flags lists the Chromium command-line switches for o, excluding headless.
func (o Options) flags() []flag {
	var fs []flag
	if o.NoSandbox {
		fs = append(fs, flag{"no-sandbox", true})
	}
	if o.DisableDevShm {
		fs = append(fs, flag{"disable-dev-shm-usage", true})
	}
	if o.DisableGPU {
		fs = append(fs, flag{"disable-gpu", true})
	}
	if o.WindowWidth > 0 && o.WindowHeight > 0 {
		fs = append(fs, flag{"window-size", strconv.Itoa(o.WindowWidth) + "," + strconv.Itoa(o.WindowHeight)})
	}
	if o.RemoteAllowOrigins != "" {
		fs = append(fs, flag{"remote-allow-origins", o.RemoteAllowOrigins})
	}
	return fs
}

// Args renders the switches as Chromium command-line arguments.
func (o Options) Args() []string {
	fs := o.flags()
	args := make([]string, 0, len(fs))
	for _, f := range fs {
		if b, ok := f.value.(bool); ok && b {
			args = append(args, "--"+f.name)
			continue
		}
		args = append(args, fmt.Sprintf("--%s=%v", f.name, f.value))
	}
	return args
}
