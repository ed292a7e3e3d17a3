// cmd/preflight/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/hamed0406/browsersmoke/internal/config"
	"github.com/hamed0406/browsersmoke/internal/probe"
)

var chromeNames = []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "headless-shell"}

type preflight struct {
	out, errOut io.Writer
	lookPath    func(string) (string, error)
	reach       func(ctx context.Context, target string) probe.Reachability
	failed      bool
}

func main() {
	_ = godotenv.Load()
	p := &preflight{
		out:      os.Stdout,
		errOut:   os.Stderr,
		lookPath: exec.LookPath,
		reach:    probe.NewHTTPChecker(5 * time.Second).Check,
	}
	if !p.runFile(os.Getenv("SMOKE_CONFIG")) {
		os.Exit(1)
	}
}

func (p *preflight) fail(msg string) {
	fmt.Fprintln(p.errOut, "✖", msg)
	p.failed = true
}
func (p *preflight) warn(msg string) { fmt.Fprintln(p.errOut, "⚠", msg) }
func (p *preflight) ok(msg string) { fmt.Fprintln(p.out, "✔", msg) }

// runFile loads the same layered config `smoke run` uses (without the
// --url override) and checks it.
func (p *preflight) runFile(path string) bool {
	cfg, err := config.Load(path, "")
	if err != nil {
		p.fail("SMOKE_CONFIG: " + err.Error())
		return false
	}
	if path != "" {
		p.ok("SMOKE_CONFIG=" + path)
	}
	return p.run(cfg)
}

// run reports every problem it finds and returns false if any is fatal.
func (p *preflight) run(cfg config.Config) bool {
	if cfg.Target == config.DefaultTarget {
		p.warn("no target set (APP_URL or config target); the default " + config.DefaultTarget + " will be tested.")
	}
	u, err := url.Parse(cfg.Target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		p.fail("target " + cfg.Target + " is not an http(s) URL.")
	} else {
		p.ok("target=" + cfg.Target)
		res := p.reach(context.Background(), cfg.Target)
		if res.OK {
			p.ok(fmt.Sprintf("target answered %s in %.0f ms", res.Message, res.LatencyMS))
		} else {
			p.warn("target not reachable over plain HTTP (" + res.Message + "); checks will likely fail.")
		}
	}

	switch cfg.Driver {
	case "chromedp":
		p.checkChrome(cfg.ChromePath)
	case "playwright":
		p.ok("driver=playwright (run `smoke install-driver` once if the browser is missing)")
	default:
		p.fail("BROWSER_DRIVER " + cfg.Driver + " is not one of chromedp, playwright.")
	}

	if err := writable(cfg.LogDir); err != nil {
		p.fail("LOG_DIR " + cfg.LogDir + " is not writable: " + err.Error())
	} else {
		p.ok("LOG_DIR=" + cfg.LogDir)
	}

	if p.failed {
		return false
	}
	p.ok("preflight passed")
	return true
}

func (p *preflight) checkChrome(path string) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			p.fail("CHROME_PATH " + path + " does not exist.")
			return
		}
		p.ok("CHROME_PATH=" + path)
		return
	}
	for _, name := range chromeNames {
		if found, err := p.lookPath(name); err == nil {
			p.ok("chromium found at " + found)
			return
		}
	}
	p.warn("no chromium on PATH and CHROME_PATH unset; chromedp will try its default locations.")
}

func writable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".preflight-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(filepath.Clean(name))
}
