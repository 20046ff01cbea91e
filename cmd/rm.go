package cmd

import (
	"github.com/mlcortes/wburn/internal/engine"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an expense",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(_ *cobra.Command, args []string) error {
	e, cfg, err := newEngine()
	if err != nil {
		return err
	}

	if err := e.DeleteExpense(args[0]); err != nil {
		return err
	}
	if err := awaitNotification(e); err != nil {
		return err
	}

	if s := settle(e); s.Phase == engine.PhaseSuccess {
		renderWeek(cfg, s)
	}
	return nil
}
