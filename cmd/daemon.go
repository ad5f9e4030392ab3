package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/attendance-time-calculator/internal/scheduler"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the scheduled holiday sync and retention cleanup until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func runDaemon(cmd *cobra.Command, args []string) error {
	a := openApp()
	defer a.close()

	s := scheduler.New(a.cfg, a.holidays, a.tracker, a.logger)
	if s.Start() == 0 {
		a.logger.Error().Msg("no jobs scheduled")
		a.close()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	a.logger.Info().Msg("shutting down")

	s.Stop()
	return nil
}
