package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/snippetrunner/internal/application/execution"
	domainexec "github.com/alexisbeaulieu97/snippetrunner/internal/domain/execution"
	"github.com/alexisbeaulieu97/snippetrunner/internal/infrastructure/store"
	"github.com/alexisbeaulieu97/snippetrunner/pkg/diff"
)

var (
	passStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	detailStyle = lipgloss.NewStyle().PaddingLeft(2)
)

func newTestCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <fixture.yaml>...",
		Short: "Run programs against local fixtures and compare their output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFixtures(cmd.Context(), cmd, root, args)
		},
	}

	return cmd
}

func runFixtures(ctx context.Context, cmd *cobra.Command, root *rootFlags, paths []string) error {
	fixtures := make([]domainexec.TestCase, 0, len(paths))
	for _, path := range paths {
		fixture, err := store.LoadTestCase(path)
		if err != nil {
			return err
		}
		if fixture.ID == "" {
			fixture.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		fixtures = append(fixtures, fixture)
	}

	cfg, log, err := loadConfig(ctx, root, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	driver, err := newDriver(cfg, log)
	if err != nil {
		return err
	}
	svc := execution.NewService(nil, driver, execution.WithLogger(log.Layer("application")))

	failed := 0
	for _, fixture := range fixtures {
		report := svc.TestFixture(ctx, fixture)
		if !report.Verdict.Passed() {
			failed++
		}
		renderReport(cmd.OutOrStdout(), fixture, report)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\n%d passed, %d failed\n", len(fixtures)-failed, failed)
	if failed > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// renderReport writes one status line per fixture, followed by the error or
// an output diff when it failed.
func renderReport(w io.Writer, fixture domainexec.TestCase, report domainexec.TestReport) {
	status := passStyle.Render("PASS")
	if !report.Verdict.Passed() {
		status = failStyle.Render("FAIL")
	}
	fmt.Fprintf(w, "%s %s %s\n", status, report.TestID, mutedStyle.Render(report.Duration.Round(time.Microsecond).String()))

	if report.Verdict.Passed() {
		return
	}
	if report.Verdict.ErrorMessage != "" {
		fmt.Fprintln(w, detailStyle.Render("error: "+report.Verdict.ErrorMessage))
		return
	}
	for _, m := range report.Verdict.OutputMismatch {
		fmt.Fprintln(w, detailStyle.Render(fmt.Sprintf("expected %q, got %q", m.Expected, m.Actual)))
	}
	if d := diff.Lines(fixture.Outputs, report.Outputs, "expected", "actual"); d != "" {
		fmt.Fprintln(w, detailStyle.Render(strings.TrimRight(d, "\n")))
	}
}
