package main

import (
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"fantamorto/internal/roster"
	"fantamorto/internal/scoring"
)

type rosterEntry struct {
	Team      string `json:"team"`
	Name      string `json:"name"`
	BirthYear int    `json:"birth_year"`
	Age       int    `json:"age"`
	Bonus     int    `json:"bonus"`
}

func newRosterCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Show drafted names with their age and potential bonus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			game, err := roster.Load(cfg.Roster.Path)
			if err != nil {
				return err
			}
			entries := rosterEntries(game, time.Now().Year())
			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Team, e.Name, strconv.Itoa(e.BirthYear), strconv.Itoa(e.Age), strconv.Itoa(e.Bonus)})
			}
			out := cmd.OutOrStdout()
			writeLines(out, renderTable(tableSpec{
				Headers: []string{"Team", "Name", "Born", "Age", "Bonus"},
				Rows:    rows,
				Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
				Footer:  []string{plural(len(game), "team", "teams"), plural(len(game.Names()), "name", "names"), "", "", ""},
			}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the roster as JSON")
	return cmd
}

// rosterEntries lists every drafted name, highest potential bonus first
// within each team.
func rosterEntries(game roster.Roster, year int) []rosterEntry {
	var entries []rosterEntry
	for _, team := range game.Teams() {
		start := len(entries)
		for name, born := range game[team] {
			entries = append(entries, rosterEntry{
				Team:      team,
				Name:      name,
				BirthYear: born,
				Age:       scoring.Age(born, year),
				Bonus:     scoring.Bonus(born, year),
			})
		}
		teamEntries := entries[start:]
		sort.Slice(teamEntries, func(i, j int) bool {
			if teamEntries[i].Bonus != teamEntries[j].Bonus {
				return teamEntries[i].Bonus > teamEntries[j].Bonus
			}
			return teamEntries[i].Name < teamEntries[j].Name
		})
	}
	return entries
}
