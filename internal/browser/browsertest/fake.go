// Package browsertest provides an in-memory browser.Session for tests.
package browsertest

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/browsersmoke/internal/browser"
)

// Clock is a manual clock. Navigations on a Session sharing it advance it
// by Session.LoadTime.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2025, 8, 18, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Session is a scripted page. The zero value serves an empty page with no
// elements at an empty URL.
type Session struct {
	PageTitle string
	Source    string
	URL       string
	Elements  map[string]bool // tags that FindElement will find
	LoadTime  time.Duration
	Clock     *Clock
	NavErr    error
	TitleErr  error
	SourceErr error
	// OnNavigate runs before every navigation; a panic propagates.
	OnNavigate func(url string)

	mu        sync.Mutex
	navigated []string
	lookups   []string
	releases  int
}

// Page returns a Session serving html at url with the usual structural
// elements present.
func Page(url, title, html string) *Session {
	return &Session{
		PageTitle: title,
		Source:    html,
		URL:       url,
		Elements:  map[string]bool{"html": true, "head": true, "body": true},
	}
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if s.OnNavigate != nil {
		s.OnNavigate(url)
	}
	s.mu.Lock()
	s.navigated = append(s.navigated, url)
	s.mu.Unlock()
	if s.Clock != nil {
		s.Clock.Advance(s.LoadTime)
	}
	return s.NavErr
}

func (s *Session) Title(ctx context.Context) (string, error) {
	return s.PageTitle, s.TitleErr
}

func (s *Session) PageSource(ctx context.Context) (string, error) {
	return s.Source, s.SourceErr
}

func (s *Session) FindElement(ctx context.Context, tag string) error {
	s.mu.Lock()
	s.lookups = append(s.lookups, tag)
	s.mu.Unlock()
	if s.Elements[tag] {
		return nil
	}
	return &browser.ElementNotFoundError{Selector: tag}
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	return s.URL, nil
}

func (s *Session) Release() {
	s.mu.Lock()
	s.releases++
	s.mu.Unlock()
}

// Releases reports how many times Release was called.
func (s *Session) Releases() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.releases
}

// Navigations returns the URLs navigated to, in order.
func (s *Session) Navigations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.navigated...)
}

// Lookups returns the tags passed to FindElement, in order.
func (s *Session) Lookups() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lookups...)
}

// Acquirer hands out Session, or fails with Err wrapped as a
// SessionAcquisitionError.
type Acquirer struct {
	Session *Session
	Err     error
	Calls   int
	Opts    browser.Options
}

func (a *Acquirer) Acquire(ctx context.Context, opts browser.Options) (browser.Session, error) {
	a.Calls++
	a.Opts = opts
	if a.Err != nil {
		return nil, &browser.SessionAcquisitionError{Driver: "fake", Err: a.Err}
	}
	return a.Session, nil
}
