package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"fantamorto/internal/notifications"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification to every configured channel",
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
			fanout, err := notifications.NewFromConfig(cfg, logger)
			if err != nil {
				return err
			}
			channels := strings.Join(fanout.Channels(), ", ")
			if err := fanout.Notify(cmd.Context(), notifications.TestMessage()); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Notification not sent to every channel (%s)\n", channels)
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification sent (%s)\n", channels)
			return nil
		},
	}
}
