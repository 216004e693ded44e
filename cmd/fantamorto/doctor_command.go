package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fantamorto/internal/checkrun"
	"fantamorto/internal/lists"
	"fantamorto/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the roster, Wikipedia, list store, and webhook settings",
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

			var store lists.Store
			opened, closer, openErr := checkrun.OpenStore(cmd.Context(), cfg, logger)
			if openErr == nil {
				defer closer.Close()
				store = opened
			}
			results := preflight.RunAll(cmd.Context(), cfg, store, openErr)

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			writeLines(out, renderSectionHeader("Doctor", colorize)...)
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusFailed
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			if !preflight.Passed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}
}
