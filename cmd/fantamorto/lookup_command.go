package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fantamorto/internal/checkrun"
	"fantamorto/internal/roster"
	"fantamorto/internal/wiki"
)

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var languages []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "lookup [names...]",
		Short: "Classify names against Wikipedia without touching the lists",
		Long: "Run the language cascade for the given names, or for the whole roster when\n" +
			"no names are given, and print how each one classifies. Nothing is persisted\n" +
			"and no notification is sent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			names := args
			if len(names) == 0 {
				game, err := roster.Load(cfg.Roster.Path)
				if err != nil {
					return err
				}
				names = game.Names()
			}
			if len(languages) == 0 {
				languages = cfg.Wikipedia.Languages
			}

			client, err := checkrun.NewWikiClient(cfg, logger)
			if err != nil {
				return err
			}
			resolver, err := wiki.NewResolver(client, languages, wiki.WithDropUnresolved(), wiki.WithResolverLogger(logger))
			if err != nil {
				return err
			}
			detection, err := resolver.Resolve(cmd.Context(), names)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), detection)
			}
			out := cmd.OutOrStdout()
			rows := make([][]string, 0, len(detection.Subjects))
			for _, subject := range detection.Subjects {
				edition := subject.Language
				if edition == "" {
					edition = "-"
				}
				rows = append(rows, []string{subject.Name, string(subject.Status), edition})
			}
			writeLines(out, renderTable(tableSpec{
				Headers: []string{"Name", "Status", "Edition"},
				Rows:    rows,
			}))
			fmt.Fprintf(out, "Cascade: %s; dead %d, unresolved %d\n",
				strings.Join(resolver.Languages(), " > "), len(detection.Dead), len(detection.Unresolved))
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&languages, "lang", "l", nil, "Language editions to try, in order (default from config)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the detection as JSON")
	return cmd
}
