package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/browsersmoke/internal/browser"
	"github.com/hamed0406/browsersmoke/internal/config"
	"github.com/hamed0406/browsersmoke/internal/domain"
	"github.com/hamed0406/browsersmoke/internal/logging"
	"github.com/hamed0406/browsersmoke/internal/probe"
	"github.com/hamed0406/browsersmoke/internal/report"
	"github.com/hamed0406/browsersmoke/internal/runner"
)

type runOptions struct {
	url        string
	configPath string
	driver     string
	headed     bool

	headless    bool
	headlessSet bool // --headless was given explicitly
}

func (o *runOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.url, "url", "", "base URL under test (overrides APP_URL)")
	cmd.Flags().StringVar(&o.configPath, "config", "", "YAML config file (default $SMOKE_CONFIG)")
	cmd.Flags().StringVar(&o.driver, "driver", "", "browser backend: chromedp or playwright (default $BROWSER_DRIVER)")
	cmd.Flags().BoolVar(&o.headed, "headed", false, "show the browser window")
	cmd.Flags().BoolVar(&o.headless, "headless", true, "run without a browser window (overrides HEADLESS)")
	cmd.MarkFlagsMutuallyExclusive("headed", "headless")
}

// from records which optional flags were set on cmd.
func (o runOptions) from(cmd *cobra.Command) runOptions {
	o.headlessSet = cmd.Flags().Changed("headless")
	return o
}

func (a *app) runCmd() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the smoke checks (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), opts.from(cmd))
		},
	}
	opts.bind(cmd)
	return cmd
}

func (a *app) run(ctx context.Context, opts runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	path := opts.configPath
	if path == "" {
		path = os.Getenv("SMOKE_CONFIG")
	}
	cfg, err := config.Load(path, opts.url)
	if err != nil {
		return err
	}
	if opts.driver != "" {
		cfg.Driver = opts.driver
	}
	switch {
	case opts.headed:
		cfg.Headless = false
	case opts.headlessSet:
		cfg.Headless = opts.headless
	}

	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	acq, err := a.newAcquirer(cfg.Driver, logger)
	if err != nil {
		return err
	}

	logger.Info("config_loaded",
		zap.String("target", cfg.Target),
		zap.String("driver", cfg.Driver),
		zap.String("config_file", path),
	)

	r := runner.New(logger, acq, browserOptions(cfg), probe.Default(), report.NewConsole(a.stdout), domain.Target(cfg.Target))
	if rep := r.Run(ctx); !rep.Passed() {
		return errChecksFailed
	}
	return nil
}

func browserOptions(cfg config.Config) browser.Options {
	o := browser.DefaultOptions()
	o.Headless = cfg.Headless
	o.WindowWidth, o.WindowHeight = cfg.WindowWidth, cfg.WindowHeight
	o.ImplicitWait = cfg.ImplicitWait
	o.PageLoadTimeout = cfg.PageLoadTimeout
	o.ExecPath = cfg.ChromePath
	return o
}
