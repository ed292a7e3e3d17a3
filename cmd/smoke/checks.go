package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hamed0406/browsersmoke/internal/probe"
)

func (a *app) checksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "checks",
		Short: "List the smoke checks in execution order",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, c := range probe.Default().Checks() {
				fmt.Fprintf(a.stdout, "%d. %s\n", c.Order, c.Name)
			}
		},
	}
}

func (a *app) installCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "install-driver",
		Short: "Download the Playwright driver and Chromium",
		Long: `Provisions the browser used by --driver playwright. Run it once before
smoke runs (for example in the CI image build); "smoke run" never installs
anything itself. The chromedp driver uses a locally installed Chromium.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.installDriver(a.stdout, a.stderr); err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, "✔ playwright driver installed")
			return nil
		},
	}
}
