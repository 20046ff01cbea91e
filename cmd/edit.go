package cmd

import (
	"github.com/mlcortes/wburn/internal/engine"

	"github.com/spf13/cobra"
)

var (
	flagEditAmount string
	flagEditDesc   string
	flagEditDate   string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update an existing expense",
	Long:  "Update an expense by id. All three fields are sent, so pass the full new values.",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	editCmd.Flags().StringVar(&flagEditAmount, "amount", "", "New amount")
	editCmd.Flags().StringVar(&flagEditDesc, "desc", "", "New description")
	editCmd.Flags().StringVar(&flagEditDate, "date", "", "New date (YYYY-MM-DD)")
	_ = editCmd.MarkFlagRequired("amount")
	_ = editCmd.MarkFlagRequired("desc")
	_ = editCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(editCmd)
}

func runEdit(_ *cobra.Command, args []string) error {
	amount, description, date, err := parseExpenseArgs(flagEditAmount, flagEditDesc, flagEditDate)
	if err != nil {
		return err
	}

	e, cfg, err := newEngine()
	if err != nil {
		return err
	}

	if err := e.UpdateExpense(args[0], amount, description, date); err != nil {
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
