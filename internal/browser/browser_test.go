package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions_Args(t *testing.T) {
	o := DefaultOptions()

	assert.True(t, o.Headless)
	assert.Equal(t, 10*time.Second, o.ImplicitWait)
	assert.Equal(t, 30*time.Second, o.PageLoadTimeout)
	assert.Equal(t, []string{
		"--no-sandbox",
		"--disable-dev-shm-usage",
		"--disable-gpu",
		"--window-size=1920,1080",
		"--remote-allow-origins=*",
	}, o.Args())
}

func TestOptions_ArgsOmitsDisabled(t *testing.T) {
	o := Options{WindowWidth: 800}
	assert.Empty(t, o.Args(), "incomplete window size and false switches produce no args")
}

func TestNewAcquirer(t *testing.T) {
	a, err := NewAcquirer("", nil)
	require.NoError(t, err)
	assert.IsType(t, &Chrome{}, a)

	a, err = NewAcquirer(" Playwright ", nil)
	require.NoError(t, err)
	assert.IsType(t, &Playwright{}, a)

	_, err = NewAcquirer("selenium", nil)
	assert.Error(t, err)
}

func TestAcquirerFunc(t *testing.T) {
	boom := errors.New("boom")
	var got Options
	a := AcquirerFunc(func(ctx context.Context, opts Options) (Session, error) {
		got = opts
		return nil, boom
	})
	_, err := a.Acquire(context.Background(), DefaultOptions())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1920, got.WindowWidth)
}

func TestErrors_UnwrapAndMessage(t *testing.T) {
	cause := errors.New("exec: chromium not found")

	var acq error = &SessionAcquisitionError{Driver: DriverChromedp, Err: cause}
	assert.ErrorIs(t, acq, cause)
	assert.Contains(t, acq.Error(), "chromedp")

	var nf error = fmt.Errorf("check: %w", &ElementNotFoundError{Selector: "body", Wait: 10 * time.Second})
	var enf *ElementNotFoundError
	require.ErrorAs(t, nf, &enf)
	assert.Equal(t, "body", enf.Selector)
	assert.Equal(t, "element <body> not found after 10s", enf.Error())

	var nt error = &NavigationTimeoutError{URL: "http://x", Timeout: 30 * time.Second, Err: context.DeadlineExceeded}
	assert.ErrorIs(t, nt, context.DeadlineExceeded)
	assert.Contains(t, nt.Error(), "timed out after 30s")
}
