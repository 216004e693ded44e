package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"fantamorto/internal/checkrun"
)

func newListsCommand(ctx *commandContext) *cobra.Command {
	listsCmd := &cobra.Command{
		Use:   "lists",
		Short: "Maintain the persisted lists",
	}
	listsCmd.AddCommand(newListsResetCommand(ctx))
	return listsCmd
}

func newListsResetCommand(ctx *commandContext) *cobra.Command {
	var maybe bool
	var confirmed bool
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Empty the maybe list, or with --confirmed --yes the confirmed list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !maybe && !confirmed {
				return errors.New("choose a list to reset with --maybe or --confirmed")
			}
			if confirmed && !yes {
				return errors.New("resetting the confirmed list re-announces every death; pass --yes to confirm")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			lock, err := checkrun.AcquireLock(cfg.Paths.LockFile)
			if err != nil {
				return err
			}
			defer lock.Release()

			store, closer, err := checkrun.OpenStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closer.Close()

			keys := checkrun.KeysFor(cfg)
			out := cmd.OutOrStdout()
			if confirmed {
				if err := store.WriteList(cmd.Context(), keys.Confirmed, []string{}); err != nil {
					return err
				}
				if keys.Years != "" {
					if err := store.WriteList(cmd.Context(), keys.Years, []string{}); err != nil {
						return err
					}
				}
				fmt.Fprintf(out, "Confirmed list %s emptied\n", keys.Confirmed)
			}
			if maybe {
				if err := store.WriteList(cmd.Context(), keys.Maybe, []string{}); err != nil {
					return err
				}
				fmt.Fprintf(out, "Maybe list %s emptied\n", keys.Maybe)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&maybe, "maybe", false, "Empty the maybe list")
	cmd.Flags().BoolVar(&confirmed, "confirmed", false, "Empty the confirmed list")
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm destructive resets")
	return cmd
}
