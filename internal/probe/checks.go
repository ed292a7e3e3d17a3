package probe

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MinSourceLength is the markup length, in runes, a page must exceed
	// to count as having content.
	MinSourceLength = 100
	// MaxLoadTime bounds an acceptable navigation.
	MaxLoadTime = 30 * time.Second
)

var (
	serverErrorPhrases = []string{
		"500 internal server error",
		"502 bad gateway",
		"503 service unavailable",
		"cannot get", // express' default for an unknown route
	}
	scriptErrorPhrases = []string{
		"uncaught error",
		"script error",
	}
	structuralTags = []string{"html", "head", "body"}
)

// Default returns the smoke checks in their declared order.
func Default() *Registry {
	return MustRegistry(
		Check{Order: 1, Name: "Homepage loads", Run: HomepageLoads},
		Check{Order: 2, Name: "Page has content", Run: PageHasContent},
		Check{Order: 3, Name: "No server errors", Run: NoServerErrors},
		Check{Order: 4, Name: "Load time acceptable", Run: LoadTimeAcceptable},
		Check{Order: 5, Name: "HTML structure valid", Run: HTMLStructureValid},
		Check{Order: 6, Name: "No JavaScript errors", Run: NoJavaScriptErrors},
		Check{Order: 7, Name: "HTTP accessible", Run: HTTPAccessible},
	)
}

func visit(ctx context.Context, env Env) error {
	return env.Session.Navigate(ctx, string(env.Target))
}

// HomepageLoads passes when the title can be read, even if it is empty.
func HomepageLoads(ctx context.Context, env Env) (string, error) {
	if err := visit(ctx, env); err != nil {
		return "", err
	}
	title, err := env.Session.Title(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("title: %q", title), nil
}

// PageHasContent requires a body element and more than MinSourceLength
// characters of markup.
func PageHasContent(ctx context.Context, env Env) (string, error) {
	if err := visit(ctx, env); err != nil {
		return "", err
	}
	if err := env.Session.FindElement(ctx, "body"); err != nil {
		return "", err
	}
	src, err := env.Session.PageSource(ctx)
	if err != nil {
		return "", err
	}
	n := utf8.RuneCountInString(src)
	if n <= MinSourceLength {
		return "", assertf("page source has %d chars, want more than %d", n, MinSourceLength)
	}
	return fmt.Sprintf("source length: %d chars", n), nil
}

// NoServerErrors fails when the markup shows a gateway or routing error.
func NoServerErrors(ctx context.Context, env Env) (string, error) {
	if err := visit(ctx, env); err != nil {
		return "", err
	}
	return absent(ctx, env, serverErrorPhrases, "no server errors detected")
}

// LoadTimeAcceptable times the navigation itself.
func LoadTimeAcceptable(ctx context.Context, env Env) (string, error) {
	clock := env.Clock
	if clock == nil {
		clock = SystemClock()
	}
	start := clock.Now()
	if err := visit(ctx, env); err != nil {
		return "", err
	}
	elapsed := clock.Now().Sub(start)
	if elapsed >= MaxLoadTime {
		return "", assertf("page loaded in %dms, want under %dms", elapsed.Milliseconds(), MaxLoadTime.Milliseconds())
	}
	return fmt.Sprintf("loaded in %dms", elapsed.Milliseconds()), nil
}

// HTMLStructureValid requires html, head and body elements.
func HTMLStructureValid(ctx context.Context, env Env) (string, error) {
	if err := visit(ctx, env); err != nil {
		return "", err
	}
	for _, tag := range structuralTags {
		if err := env.Session.FindElement(ctx, tag); err != nil {
			return "", err
		}
	}
	return "html, head and body present", nil
}

// NoJavaScriptErrors fails when the markup shows a rendered script error.
func NoJavaScriptErrors(ctx context.Context, env Env) (string, error) {
	if err := visit(ctx, env); err != nil {
		return "", err
	}
	return absent(ctx, env, scriptErrorPhrases, "no javascript errors detected")
}

// HTTPAccessible requires the resulting URL to be an http(s) URL.
func HTTPAccessible(ctx context.Context, env Env) (string, error) {
	if err := visit(ctx, env); err != nil {
		return "", err
	}
	u, err := env.Session.CurrentURL(ctx)
	if err != nil {
		return "", err
	}
	if u == "" {
		return "", assertf("current URL is empty")
	}
	if !strings.HasPrefix(u, "http") {
		return "", assertf("current URL %q does not start with http", u)
	}
	return "url: " + u, nil
}

// absent reads the case-folded markup and fails on the first phrase found.
func absent(ctx context.Context, env Env, phrases []string, ok string) (string, error) {
	src, err := env.Session.PageSource(ctx)
	if err != nil {
		return "", err
	}
	src = strings.ToLower(src)
	for _, p := range phrases {
		if strings.Contains(src, p) {
			return "", assertf("page contains %q", p)
		}
	}
	return ok, nil
}
