package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mlcortes/wburn/internal/engine"
	"github.com/mlcortes/wburn/internal/model"

	"github.com/spf13/cobra"
)

var flagAddDate string

var addCmd = &cobra.Command{
	Use:   "add <amount> <description>",
	Short: "Record a new expense",
	Args:  cobra.ExactArgs(2),
	RunE:  runAdd,
}

func init() {
	addCmd.Flags().StringVar(&flagAddDate, "date", "", "Expense date (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(addCmd)
}

// parseExpenseArgs validates user input before it reaches the engine, which
// assumes the caller has already checked it.
func parseExpenseArgs(amountArg, description, date string) (float64, string, string, error) {
	amount, err := strconv.ParseFloat(amountArg, 64)
	if err != nil {
		return 0, "", "", fmt.Errorf("amount %q is not a number", amountArg)
	}
	if amount <= 0 {
		return 0, "", "", errors.New("amount must be greater than zero")
	}

	description = strings.TrimSpace(description)
	if description == "" {
		return 0, "", "", errors.New("description must not be empty")
	}

	if date == "" {
		date = time.Now().Format(model.DateLayout)
	} else if _, err := time.Parse(model.DateLayout, date); err != nil {
		return 0, "", "", fmt.Errorf("date %q is not a YYYY-MM-DD calendar date", date)
	}

	return amount, description, date, nil
}

func runAdd(_ *cobra.Command, args []string) error {
	amount, description, date, err := parseExpenseArgs(args[0], args[1], flagAddDate)
	if err != nil {
		return err
	}

	e, cfg, err := newEngine()
	if err != nil {
		return err
	}

	e.AddExpense(amount, description, date)
	if err := awaitNotification(e); err != nil {
		return err
	}

	if s := settle(e); s.Phase == engine.PhaseSuccess {
		renderWeek(cfg, s)
	}
	return nil
}
