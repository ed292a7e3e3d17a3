// Package report prints run progress and the final summary to the console.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/hamed0406/browsersmoke/internal/domain"
)

// Reporter observes a run. It never influences outcomes.
type Reporter interface {
	Start(target domain.Target, checks int)
	CheckStarted(order int, name string)
	CheckFinished(v domain.Verdict)
	Fatal(err error)
	Summary(r domain.Report)
}

const rule = "=========================================="

// Console writes human-readable progress lines to W. Colors are used only
// when W is a terminal.
type Console struct {
	w      io.Writer
	pass   lipgloss.Style
	fail   lipgloss.Style
	dim    lipgloss.Style
	banner lipgloss.Style
}

func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:      w,
		pass:   r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		fail:   r.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
		dim:    r.NewStyle().Foreground(lipgloss.Color("245")),
		banner: r.NewStyle().Bold(true),
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.w, format, args...)
}

func (c *Console) Start(target domain.Target, checks int) {
	c.printf("%s\n%s\n%s\n", rule, c.banner.Render("🧪 Smoke Test Suite"), rule)
	c.printf("Testing URL: %s\n", target)
	c.printf("%s\n", c.dim.Render(fmt.Sprintf("%d checks registered", checks)))
}

func (c *Console) CheckStarted(order int, name string) {
	c.printf("\n🧪 Test %d: %s...\n", order, name)
}

func (c *Console) CheckFinished(v domain.Verdict) {
	took := c.dim.Render("(" + v.Elapsed.Round(time.Millisecond).String() + ")")
	if v.Passed() {
		line := v.Name
		if v.Detail != "" {
			line += " - " + v.Detail
		}
		c.printf("%s %s %s\n", c.pass.Render("✅"), line, took)
		return
	}
	c.printf("%s %s - %s %s\n", c.fail.Render("❌"), v.Name, v.Reason, took)
}

func (c *Console) Fatal(err error) {
	c.printf("\n%s %s\n", c.fail.Render("💥 Setup failed:"), err)
}

func (c *Console) Summary(r domain.Report) {
	passed, failed := r.Counts()
	status := c.pass.Render("PASSED")
	if !r.Passed() {
		status = c.fail.Render("FAILED")
	}

	c.printf("\n%s\n", rule)
	c.printf("%s\n", c.banner.Render("🏁 Test Suite Completed"))
	c.printf("%d passed, %d failed: %s\n", passed, failed, status)
	if r.Fatal != nil {
		c.printf("no checks ran: %v\n", r.Fatal)
	}
	for _, v := range r.Verdicts {
		if !v.Passed() {
			c.printf("  %s #%d %s: %s\n", c.fail.Render("✖"), v.Order, v.Name, v.Reason)
		}
	}
	if !r.FinishedAt.IsZero() && !r.StartedAt.IsZero() {
		c.printf("%s\n", c.dim.Render("took "+r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()))
	}
	c.printf("%s\n", rule)
}
