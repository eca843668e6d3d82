package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"titlemark/internal/check"
	"titlemark/internal/config"
	"titlemark/internal/history"
	"titlemark/internal/logging"
	"titlemark/internal/markers"
	"titlemark/internal/scan"
)

// ErrViolationsFound makes the process exit non-zero when a check finds problems.
var ErrViolationsFound = errors.New("marker violations found")

const (
	formatText  = "text"
	formatTable = "table"
	formatJSON  = "json"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var (
		format    string
		noHistory bool
		disable   []string
	)

	cmd := &cobra.Command{
		Use:   "check <path>...",
		Short: "Check beatmap files for misformatted version markers",
		Long: "Scan files or directories for beatmaps and report version markers such as\n" +
			"\"(TV Size)\" or \"(Sped Up Ver.)\" that are not written in their canonical form.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			switch format {
			case formatText, formatTable, formatJSON:
			default:
				return fmt.Errorf("unsupported --format %q (want text, table or json)", format)
			}
			validator, err := buildValidator(cfg, disable)
			if err != nil {
				return err
			}

			logger := ctx.ensureLogger()
			runCtx := cmd.Context()

			paths, err := scan.Discover(runCtx, args, scan.Options{
				Extensions:    cfg.Check.Extensions,
				IncludeHidden: cfg.Check.IncludeHidden,
			})
			if err != nil {
				return err
			}
			logger.Debug("discovered beatmaps", logging.Int("files", len(paths)))

			report, err := check.NewRunner(validator, logger, cfg.Check.Workers).Run(runCtx, paths)
			if err != nil {
				return err
			}

			if cfg.History.Enabled && !noHistory {
				if err := recordHistory(runCtx, ctx, cfg, report, args); err != nil {
					logging.WarnWithContext(logger, "run history not saved", "history_write_failed", logging.Error(err))
				}
			}

			out := cmd.OutOrStdout()
			switch format {
			case formatJSON:
				if err := writeJSON(cmd, checkJSON{Report: report, Diagnostics: report.Diagnostics()}); err != nil {
					return err
				}
			case formatTable:
				renderCheckTable(out, report)
			default:
				renderCheckText(out, report, shouldColorize(out))
			}

			if report.ViolationCount() > 0 {
				return fmt.Errorf("%w: %d in %d files", ErrViolationsFound, report.ViolationCount(), filesWithViolations(report))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format: text, table or json")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this run in the history database")
	cmd.Flags().StringSliceVar(&disable, "disable", nil, "Marker kinds to skip (repeatable), e.g. cut-version")
	return cmd
}

type checkJSON struct {
	Report      *check.Report      `json:"report"`
	Diagnostics []check.Diagnostic `json:"diagnostics"`
}

func buildValidator(cfg *config.Config, extra []string) (*markers.Validator, error) {
	disabled := cfg.DisabledKinds()
	for _, name := range extra {
		kind, err := markers.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("--disable: %w", err)
		}
		disabled = append(disabled, kind)
	}
	return markers.NewValidator(disabled...), nil
}

func recordHistory(runCtx context.Context, ctx *commandContext, cfg *config.Config, report *check.Report, roots []string) error {
	absRoots := make([]string, 0, len(roots))
	for _, root := range roots {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
		absRoots = append(absRoots, root)
	}
	return ctx.withHistory(func(store *history.Store) error {
		if _, err := store.Record(runCtx, report, absRoots); err != nil {
			return err
		}
		_, err := store.Prune(runCtx, cfg.History.KeepRuns)
		return err
	})
}

func filesWithViolations(report *check.Report) int {
	count := 0
	for _, f := range report.Files {
		if len(f.Violations) > 0 {
			count++
		}
	}
	return count
}

func renderCheckText(out io.Writer, report *check.Report, colorize bool) {
	for _, diag := range report.Diagnostics() {
		fmt.Fprintln(out, renderStatusLine(statusWarn, diag.Message, colorize))
		for _, path := range diag.Files {
			fmt.Fprintf(out, "    %s\n", path)
		}
	}
	for _, f := range report.Files {
		if f.Err != nil {
			fmt.Fprintln(out, renderStatusLine(statusError, f.Err.Error(), colorize))
		}
	}
	fmt.Fprintln(out, renderStatusLine(summaryKind(report), summaryLine(report), colorize))
}

func renderCheckTable(out io.Writer, report *check.Report) {
	diags := report.Diagnostics()
	if len(diags) > 0 {
		rows := make([][]string, 0, len(diags))
		for _, diag := range diags {
			rows = append(rows, []string{
				string(diag.Violation.Field),
				diag.Violation.Expected,
				diag.Violation.Actual,
				strconv.Itoa(len(diag.Files)),
			})
		}
		fmt.Fprintln(out, renderTable([]tableColumn{
			{header: "Field"},
			{header: "Expected"},
			{header: "Title", maxWidth: 60},
			{header: "Files", align: alignRight},
		}, rows))
	}
	fmt.Fprintln(out, summaryLine(report))
}

func summaryKind(report *check.Report) statusKind {
	switch {
	case report.ViolationCount() > 0:
		return statusWarn
	case report.FailedCount() > 0:
		return statusError
	default:
		return statusOK
	}
}

func summaryLine(report *check.Report) string {
	parts := []string{
		fmt.Sprintf("%d files checked", len(report.Files)),
		fmt.Sprintf("%d violations", report.ViolationCount()),
	}
	if failed := report.FailedCount(); failed > 0 {
		parts = append(parts, fmt.Sprintf("%d unreadable", failed))
	}
	return strings.Join(parts, ", ")
}
