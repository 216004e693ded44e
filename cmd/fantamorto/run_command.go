package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"fantamorto/internal/checkrun"
	"fantamorto/internal/config"
	"fantamorto/internal/logging"
	"fantamorto/internal/services"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check every roster name once and update the lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			runner, closeDeps, err := openRunner(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeDeps()

			report, err := runner.Run(cmd.Context())
			if err != nil {
				logRunFailure(cmd.Context(), logger, report.RunID, err)
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), newRunSummary(report))
			}
			printRunReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the run report as JSON")
	return cmd
}

func openRunner(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*checkrun.Runner, func(), error) {
	deps, closeDeps, err := checkrun.OpenDeps(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		if err := closeDeps(); err != nil {
			logging.WarnWithContext(logger, "failed to close list store", "store_close_failed", logging.Error(err))
		}
	}
	runner, err := checkrun.New(cfg, deps)
	if err != nil {
		release()
		return nil, nil, err
	}
	return runner, release, nil
}

func logRunFailure(ctx context.Context, logger *slog.Logger, runID string, err error) {
	logger = logging.WithContext(services.WithRunID(ctx, runID), logger)
	logging.ErrorWithContext(logger, "check run failed", "run_failed",
		logging.String(logging.FieldErrorKind, services.Kind(err)),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, runFailureHint(err)),
	)
}

func runFailureHint(err error) string {
	switch services.Kind(err) {
	case "configuration_missing":
		return "run `fantamorto config validate` and fix the reported setting"
	case "upstream_lookup":
		return "Wikipedia was unreachable; the lists were not changed, retry later"
	case "unresolved_subject":
		return "fix the roster spelling or set wikipedia.unresolved = \"drop\""
	case "persistence":
		return "check the list store; the next run retries from the last saved lists"
	default:
		return "check logs for details"
	}
}

type runSummary struct {
	RunID            string   `json:"run_id"`
	Names            int      `json:"names"`
	Dead             []string `json:"dead_signals"`
	Unresolved       []string `json:"unresolved"`
	Confirmed        []string `json:"confirmed"`
	NewlyMaybe       []string `json:"newly_maybe"`
	StillPending     []string `json:"still_pending"`
	Cleared          []string `json:"cleared"`
	AlreadyConfirmed []string `json:"already_confirmed"`
	Notified         int      `json:"notified"`
	NotifyErrors     []string `json:"notify_errors"`
	DurationMS       int64    `json:"duration_ms"`
}

func newRunSummary(report checkrun.Report) runSummary {
	summary := runSummary{
		RunID:            report.RunID,
		Names:            report.Names,
		Dead:             nonNil(report.Detection.Dead),
		Unresolved:       nonNil(report.Detection.Unresolved),
		Confirmed:        nonNil(report.Outcome.Confirmed),
		NewlyMaybe:       nonNil(report.Outcome.NewlyMaybe),
		StillPending:     nonNil(report.Outcome.StillPending),
		Cleared:          nonNil(report.Outcome.Cleared),
		AlreadyConfirmed: nonNil(report.Outcome.AlreadyConfirmed),
		Notified:         report.Outcome.Notified,
		NotifyErrors:     []string{},
		DurationMS:       report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	}
	for _, err := range report.Outcome.NotifyErrors {
		summary.NotifyErrors = append(summary.NotifyErrors, err.Error())
	}
	return summary
}

func printRunReport(w io.Writer, report checkrun.Report) {
	outcome := report.Outcome
	fmt.Fprintf(w, "Checked %s (run %s)\n", plural(report.Names, "name", "names"), report.RunID)
	for _, pass := range report.Detection.Passes {
		fmt.Fprintf(w, "  %s: queried %d, dead %d, alive %d, missing %d\n",
			pass.Language, pass.Queried, pass.Dead, pass.Alive, pass.Missing)
	}
	if len(outcome.Confirmed) == 0 {
		fmt.Fprintln(w, "Nobody died.")
	} else {
		fmt.Fprintf(w, "Confirmed dead: %s\n", joinOrDash(outcome.Confirmed))
		for _, score := range outcome.Scores {
			fmt.Fprintf(w, "  %s +%d for %s\n", score.Team, score.Points, score.Name)
		}
	}
	if len(outcome.NewlyMaybe) > 0 {
		fmt.Fprintf(w, "Maybe dead, confirming next run: %s\n", joinOrDash(outcome.NewlyMaybe))
	}
	if len(outcome.Cleared) > 0 {
		fmt.Fprintf(w, "Cleared from maybe: %s\n", joinOrDash(outcome.Cleared))
	}
	if len(report.Detection.Unresolved) > 0 {
		fmt.Fprintf(w, "Unresolved (dropped): %s\n", joinOrDash(report.Detection.Unresolved))
	}
	for _, err := range outcome.NotifyErrors {
		fmt.Fprintf(w, "Notification failed: %v\n", err)
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
