package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Playwright starts Chromium through the Playwright driver. The driver and
// browser must already be installed; see InstallDriver.
type Playwright struct {
	Logger *zap.Logger
}

type playwrightSession struct {
	log  *zap.Logger
	opts Options

	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page

	once sync.Once
}

func runOptions() *playwright.RunOptions {
	return &playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
		Stdout:   io.Discard,
		Stderr:   io.Discard,
	}
}

// InstallDriver downloads the Playwright driver and Chromium. It is the
// provisioning step run ahead of a smoke run, never during one.
func InstallDriver(stdout, stderr io.Writer) error {
	opts := runOptions()
	opts.Verbose = true
	opts.Stdout, opts.Stderr = stdout, stderr
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("install playwright driver: %w", err)
	}
	return nil
}

func (p *Playwright) Acquire(ctx context.Context, opts Options) (Session, error) {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	fail := func(err error) (Session, error) {
		return nil, &SessionAcquisitionError{Driver: DriverPlaywright, Err: err}
	}

	pw, err := playwright.Run(runOptions())
	if err != nil {
		return fail(fmt.Errorf("start playwright: %w", err))
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     opts.Args(),
	}
	if opts.ExecPath != "" {
		launch.ExecutablePath = playwright.String(opts.ExecPath)
	}
	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return fail(fmt.Errorf("launch chromium: %w", err))
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		ctxOpts.Viewport = &playwright.Size{Width: opts.WindowWidth, Height: opts.WindowHeight}
	}
	bctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return fail(fmt.Errorf("create context: %w", err))
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return fail(fmt.Errorf("create page: %w", err))
	}
	page.SetDefaultNavigationTimeout(millis(opts.PageLoadTimeout))
	page.SetDefaultTimeout(millis(opts.PageLoadTimeout))

	log.Info("browser_started",
		zap.String("driver", DriverPlaywright),
		zap.Bool("headless", opts.Headless),
		zap.Strings("args", opts.Args()),
		zap.Duration("implicit_wait", opts.ImplicitWait),
		zap.Duration("page_load_timeout", opts.PageLoadTimeout),
	)

	return &playwrightSession{
		log:     log,
		opts:    opts,
		pw:      pw,
		browser: browser,
		context: bctx,
		page:    page,
	}, nil
}

func millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}

func (s *playwrightSession) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(millis(s.opts.PageLoadTimeout)),
		WaitUntil: playwright.WaitUntilStateLoad,
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return &NavigationTimeoutError{URL: url, Timeout: s.opts.PageLoadTimeout, Err: err}
		}
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *playwrightSession) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	title, err := s.page.Title()
	if err != nil {
		return "", fmt.Errorf("read title: %w", err)
	}
	return title, nil
}

func (s *playwrightSession) PageSource(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	html, err := s.page.Content()
	if err != nil {
		return "", fmt.Errorf("read page source: %w", err)
	}
	return html, nil
}

func (s *playwrightSession) FindElement(ctx context.Context, tag string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wait := s.opts.ImplicitWait
	if wait <= 0 {
		n, err := s.page.Locator(tag).Count()
		if err != nil {
			return fmt.Errorf("query <%s>: %w", tag, err)
		}
		if n == 0 {
			return &ElementNotFoundError{Selector: tag, Wait: 0}
		}
		return nil
	}

	// head is never visible, so only require attachment.
	_, err := s.page.WaitForSelector(tag, playwright.PageWaitForSelectorOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(millis(wait)),
	})
	if err != nil {
		if errors.Is(err, playwright.ErrTimeout) {
			return &ElementNotFoundError{Selector: tag, Wait: wait, Err: err}
		}
		return fmt.Errorf("query <%s>: %w", tag, err)
	}
	return nil
}

func (s *playwrightSession) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.page.URL(), nil
}

func (s *playwrightSession) Release() {
	s.once.Do(func() {
		var err error
		err = multierr.Append(err, s.context.Close())
		err = multierr.Append(err, s.browser.Close())
		err = multierr.Append(err, s.pw.Stop())
		if err != nil {
			s.log.Warn("browser_release_error",
				zap.String("driver", DriverPlaywright),
				zap.Errors("errors", multierr.Errors(err)),
			)
			return
		}
		s.log.Info("browser_released", zap.String("driver", DriverPlaywright))
	})
}
