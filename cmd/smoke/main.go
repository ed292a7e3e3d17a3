// Command smoke drives a headless browser against a running web app and
// exits non-zero unless every smoke check passes.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hamed0406/browsersmoke/internal/browser"
)

// errChecksFailed signals a completed run with failures; the report has
// already been printed.
var errChecksFailed = errors.New("smoke checks failed")

// app holds the collaborators the commands need, so tests can swap the
// browser backend.
type app struct {
	stdout, stderr io.Writer
	newAcquirer    func(driver string, logger *zap.Logger) (browser.Acquirer, error)
	installDriver  func(stdout, stderr io.Writer) error
}

func main() {
	_ = godotenv.Load()

	a := &app{
		stdout:        os.Stdout,
		stderr:        os.Stderr,
		newAcquirer:   browser.NewAcquirer,
		installDriver: browser.InstallDriver,
	}
	os.Exit(a.execute(os.Args[1:]))
}

func (a *app) execute(args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	if err := root.Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintln(a.stderr, "✖", err)
		}
		return 1
	}
	return 0
}

func (a *app) rootCmd() *cobra.Command {
	var opts runOptions

	root := &cobra.Command{
		Use:   "smoke",
		Short: "Run browser smoke checks against a web app",
		Long: `Starts one headless Chromium session, runs the smoke checks in order
against the target URL and exits 1 if any check fails.

The target is taken from --url, then APP_URL, then the built-in default.

Examples:
  smoke --url http://localhost:3000
  APP_URL=http://toronto_web_dev:3000 smoke run
  smoke checks
  smoke install-driver`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), opts.from(cmd))
		},
	}
	opts.bind(root)

	root.AddCommand(a.runCmd(), a.checksCmd(), a.installCmd())
	return root
}
