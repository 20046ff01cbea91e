package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mlcortes/wburn/internal/cli"
	"github.com/mlcortes/wburn/internal/engine"

	"github.com/spf13/cobra"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show the weekly budget",
	RunE:  runBudget,
}

var budgetSetCmd = &cobra.Command{
	Use:   "set <amount>",
	Short: "Set the weekly budget on the server",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetSet,
}

func init() {
	budgetCmd.AddCommand(budgetSetCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(_ *cobra.Command, _ []string) error {
	e, cfg, err := newEngine()
	if err != nil {
		return err
	}

	s := settle(e)
	if s.Phase == engine.PhaseError {
		return errors.New(s.Err)
	}

	currency := cfg.Appearance.Currency
	fmt.Printf("  Weekly budget: %s\n", cli.FormatMoney(currency, s.Budget))
	fmt.Printf("  Spent so far:  %s\n", cli.FormatMoney(currency, s.WeeklyTotal))
	fmt.Printf("  Remaining:     %s\n", cli.FormatMoney(currency, s.Remaining))
	return nil
}

func runBudgetSet(_ *cobra.Command, args []string) error {
	amount, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("amount %q is not a number", args[0])
	}
	if amount <= 0 {
		return errors.New("weekly budget must be greater than zero")
	}

	e, cfg, err := newEngine()
	if err != nil {
		return err
	}

	e.SetBudget(amount)
	if err := awaitNotification(e); err != nil {
		return err
	}

	if s := settle(e); s.Phase == engine.PhaseSuccess {
		fmt.Printf("  Weekly budget is now %s\n", cli.FormatMoney(cfg.Appearance.Currency, s.Budget))
	}
	return nil
}
