package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Chrome starts a local Chromium through chromedp.
type Chrome struct {
	Logger *zap.Logger
}

type chromeSession struct {
	log  *zap.Logger
	opts Options

	tab         context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc

	once sync.Once
}

func (c *Chrome) Acquire(ctx context.Context, opts Options) (Session, error) {
	log := c.Logger
	if log == nil {
		log = zap.NewNop()
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
	)
	for _, f := range opts.flags() {
		allocOpts = append(allocOpts, chromedp.Flag(f.name, f.value))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	// The browser outlives ctx; only Release tears it down.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), allocOpts...)
	tab, tabCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser and opens the first tab.
	if err := chromedp.Run(tab); err != nil {
		tabCancel()
		allocCancel()
		return nil, &SessionAcquisitionError{Driver: DriverChromedp, Err: err}
	}

	log.Info("browser_started",
		zap.String("driver", DriverChromedp),
		zap.Bool("headless", opts.Headless),
		zap.Strings("args", opts.Args()),
		zap.Duration("implicit_wait", opts.ImplicitWait),
		zap.Duration("page_load_timeout", opts.PageLoadTimeout),
	)

	return &chromeSession{
		log:         log,
		opts:        opts,
		tab:         tab,
		tabCancel:   tabCancel,
		allocCancel: allocCancel,
	}, nil
}

// bounded derives a tab context limited by d that also ends when ctx does.
func (s *chromeSession) bounded(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	tctx, cancel := context.WithTimeout(s.tab, d)
	stop := context.AfterFunc(ctx, cancel)
	return tctx, func() {
		stop()
		cancel()
	}
}

func (s *chromeSession) Navigate(ctx context.Context, url string) error {
	tctx, cancel := s.bounded(ctx, s.opts.PageLoadTimeout)
	defer cancel()

	if err := chromedp.Run(tctx, chromedp.Navigate(url)); err != nil {
		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return &NavigationTimeoutError{URL: url, Timeout: s.opts.PageLoadTimeout, Err: err}
		}
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (s *chromeSession) Title(ctx context.Context) (string, error) {
	tctx, cancel := s.bounded(ctx, s.opts.PageLoadTimeout)
	defer cancel()

	var title string
	if err := chromedp.Run(tctx, chromedp.Title(&title)); err != nil {
		return "", fmt.Errorf("read title: %w", err)
	}
	return title, nil
}

func (s *chromeSession) PageSource(ctx context.Context) (string, error) {
	tctx, cancel := s.bounded(ctx, s.opts.PageLoadTimeout)
	defer cancel()

	var html string
	err := chromedp.Run(tctx, chromedp.ActionFunc(func(ctx context.Context) error {
		node, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
		return err
	}))
	if err != nil {
		return "", fmt.Errorf("read page source: %w", err)
	}
	return html, nil
}

func (s *chromeSession) FindElement(ctx context.Context, tag string) error {
	if s.opts.ImplicitWait <= 0 {
		tctx, cancel := s.bounded(ctx, s.opts.PageLoadTimeout)
		defer cancel()

		var nodes []*cdp.Node
		if err := chromedp.Run(tctx, chromedp.Nodes(tag, &nodes, chromedp.ByQuery, chromedp.AtLeast(0))); err != nil {
			return fmt.Errorf("query <%s>: %w", tag, err)
		}
		if len(nodes) == 0 {
			return &ElementNotFoundError{Selector: tag, Wait: 0}
		}
		return nil
	}

	tctx, cancel := s.bounded(ctx, s.opts.ImplicitWait)
	defer cancel()

	if err := chromedp.Run(tctx, chromedp.WaitReady(tag, chromedp.ByQuery)); err != nil {
		if errors.Is(tctx.Err(), context.DeadlineExceeded) {
			return &ElementNotFoundError{Selector: tag, Wait: s.opts.ImplicitWait, Err: err}
		}
		return fmt.Errorf("query <%s>: %w", tag, err)
	}
	return nil
}

func (s *chromeSession) CurrentURL(ctx context.Context) (string, error) {
	tctx, cancel := s.bounded(ctx, s.opts.PageLoadTimeout)
	defer cancel()

	var url string
	if err := chromedp.Run(tctx, chromedp.Location(&url)); err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return url, nil
}

func (s *chromeSession) Release() {
	s.once.Do(func() {
		// Cancel asks the browser to close gracefully before the process is killed.
		err := chromedp.Cancel(s.tab)
		s.tabCancel()
		s.allocCancel()
		if err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("browser_release_error", zap.String("driver", DriverChromedp), zap.Error(err))
			return
		}
		s.log.Info("browser_released", zap.String("driver", DriverChromedp))
	})
}
