package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/mlcortes/wburn/internal/daemon"

	"github.com/spf13/cobra"
)

var (
	flagDaemonAddr     string
	flagDaemonInterval time.Duration
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run a local budget monitor with HTTP/SSE endpoints",
	Long:  "Keep the engine refreshed on an interval and serve its state at /v1/status and /v1/stream for status bars and dashboards.",
	RunE:  runDaemon,
}

func init() {
	daemonCmd.Flags().StringVar(&flagDaemonAddr, "addr", "127.0.0.1:8788", "HTTP listen address")
	daemonCmd.Flags().DurationVar(&flagDaemonInterval, "interval", 30*time.Second, "Refresh interval")
	rootCmd.AddCommand(daemonCmd)
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	e, _, err := newEngine()
	if err != nil {
		return err
	}

	svc := daemon.New(e, daemon.Config{
		Addr:     flagDaemonAddr,
		Interval: flagDaemonInterval,
	}, newLogger("daemon"))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return svc.Run(ctx)
}
