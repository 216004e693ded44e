package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"fantamorto/internal/checkrun"
	"fantamorto/internal/config"
	"fantamorto/internal/lists"
	"fantamorto/internal/roster"
	"fantamorto/internal/scoring"
)

type statusView struct {
	Backend   string               `json:"backend"`
	Confirmed []string             `json:"confirmed"`
	Maybe     []string             `json:"maybe"`
	Updated   map[string]time.Time `json:"updated,omitempty"`
	Year      int                  `json:"year"`
	Standings []scoring.Standing   `json:"standings"`
}

// updateTracker is implemented by stores that timestamp their writes.
type updateTracker interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, bool, error)
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the persisted lists and team standings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			view, err := loadStatus(cmd.Context(), ctx, cfg, time.Now().Year())
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), view)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			writeLines(out, renderSectionHeader("Lists", colorize)...)
			writeLines(out,
				renderStatusLine("Backend", statusInfo, view.Backend, colorize),
				renderStatusLine("Confirmed", listKind(view.Confirmed, statusError), plural(len(view.Confirmed), "name", "names"), colorize),
				renderStatusLine("Maybe", listKind(view.Maybe, statusWarn), plural(len(view.Maybe), "name", "names"), colorize),
			)
			if len(view.Confirmed) > 0 {
				fmt.Fprintf(out, "  Dead:  %s\n", joinOrDash(view.Confirmed))
			}
			if len(view.Maybe) > 0 {
				fmt.Fprintf(out, "  Maybe: %s\n", joinOrDash(view.Maybe))
			}
			for _, label := range []string{"confirmed", "maybe"} {
				if ts, ok := view.Updated[label]; ok {
					fmt.Fprintf(out, "  %s list updated at %s\n", label, ts.Local().Format("2006-01-02 15:04"))
				}
			}
			fmt.Fprintln(out)
			writeLines(out, renderSectionHeader(fmt.Sprintf("Standings %d", view.Year), colorize)...)
			fmt.Fprintln(out, renderStandings(view.Standings))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print status as JSON")
	return cmd
}

func loadStatus(ctx context.Context, cmdCtx *commandContext, cfg *config.Config, year int) (statusView, error) {
	logger, err := cmdCtx.logger()
	if err != nil {
		return statusView{}, fmt.Errorf("init logger: %w", err)
	}
	game, err := roster.Load(cfg.Roster.Path)
	if err != nil {
		return statusView{}, err
	}
	store, closer, err := checkrun.OpenStore(ctx, cfg, logger)
	if err != nil {
		return statusView{}, err
	}
	defer closer.Close()

	keys := checkrun.KeysFor(cfg)
	state, err := lists.Load(ctx, store, keys)
	if err != nil {
		return statusView{}, err
	}
	view := statusView{
		Backend:   backendLabel(cfg),
		Confirmed: nonNil(state.Confirmed),
		Maybe:     nonNil(state.Maybe),
		Year:      year,
		Standings: scoring.Standings(game, state.Confirmed, state.Years, year),
	}
	if tracker, ok := store.(updateTracker); ok {
		view.Updated = map[string]time.Time{}
		for label, key := range map[string]string{"confirmed": keys.Confirmed, "maybe": keys.Maybe} {
			ts, found, err := tracker.UpdatedAt(ctx, key)
			if err != nil {
				return statusView{}, err
			}
			if found {
				view.Updated[label] = ts
			}
		}
	}
	return view, nil
}

func renderStandings(standings []scoring.Standing) string {
	rows := make([][]string, 0, len(standings))
	total := 0
	for i, standing := range standings {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			standing.Team,
			strconv.Itoa(standing.Points),
			joinOrDash(standing.Deaths),
		})
		total += standing.Points
	}
	return renderTable(tableSpec{
		Headers: []string{"#", "Team", "Points", "Deaths"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
		Footer:  []string{"", "Total", strconv.Itoa(total), ""},
	})
}

func listKind(names []string, nonEmpty statusKind) statusKind {
	if len(names) == 0 {
		return statusOK
	}
	return nonEmpty
}

func backendLabel(cfg *config.Config) string {
	s := cfg.Storage
	switch s.Backend {
	case config.BackendGDrive:
		return fmt.Sprintf("gdrive (%s, %s)", s.ConfirmedDocument, s.MaybeDocument)
	case config.BackendRedis:
		return fmt.Sprintf("redis %s (prefix %q)", s.RedisAddress, s.RedisPrefix)
	default:
		return "sqlite " + s.SQLitePath
	}
}
