package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"fantamorto/internal/daemon"
	"fantamorto/internal/logging"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run checks on a schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			runner, closeDeps, err := openRunner(signalCtx, cfg, logger)
			if err != nil {
				return err
			}
			defer closeDeps()

			d, err := daemon.New(cfg, runner, logger, daemon.WithInterval(interval))
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			if err := d.Start(signalCtx); err != nil {
				return err
			}
			defer d.Stop()

			status := d.Status()
			fmt.Fprintf(cmd.OutOrStdout(), "Watching every %s (lock %s). Press Ctrl+C to stop.\n", status.Interval, status.LockFilePath)
			d.Wait()
			logger.Info("fantamorto watch shutting down", logging.String(logging.FieldEventType, "watch_shutdown"))
			return nil
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "Override schedule.interval_minutes (e.g. 30m)")
	return cmd
}
