// Package cmd implements the wburn CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/mlcortes/wburn/internal/api"
	"github.com/mlcortes/wburn/internal/cli"
	"github.com/mlcortes/wburn/internal/config"
	"github.com/mlcortes/wburn/internal/engine"
	"github.com/mlcortes/wburn/internal/log"

	"github.com/spf13/cobra"
)

var flagVerbose bool

var rootCmd = &cobra.Command{
	Use:   "wburn",
	Short: "Weekly budget burn tracker",
	Long:  "Track this week's discretionary spending against the budget held on your shared expense server.",
	RunE:  runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

func newLogger(component string) *log.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return log.New(component, log.Config{Level: level})
}

// newClient loads config and builds the signed API client every networked
// command shares.
func newClient() (*api.Client, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, err
	}
	if err := cfg.Require(); err != nil {
		return nil, cfg, fmt.Errorf("%w\n  Run `wburn setup` first", err)
	}

	client, err := api.NewClient(cfg.Server.BaseURL, cfg.Server.SharedSecret, newLogger("api"))
	if err != nil {
		return nil, cfg, err
	}
	return client, cfg, nil
}

// newEngine builds the sync engine; construction kicks off the initial
// refresh.
func newEngine() (*engine.Engine, config.Config, error) {
	client, cfg, err := newClient()
	if err != nil {
		return nil, cfg, err
	}
	e := engine.New(client, engine.Options{
		FallbackBudget: cfg.Budget.FallbackWeekly,
		Logger:         newLogger("engine"),
	})
	return e, cfg, nil
}

// settle blocks until the engine publishes a terminal state.
func settle(e *engine.Engine) engine.State {
	for {
		s := e.State()
		if s.Phase != engine.PhaseLoading {
			return s
		}
		<-e.Updates()
	}
}

// awaitNotification blocks until a write operation reports its outcome, then
// consumes the slot. Returns an error for a failure notification so commands
// exit non-zero.
func awaitNotification(e *engine.Engine) error {
	for {
		if n, ok := e.Notification(); ok {
			e.ConsumeNotification()
			if n.IsError {
				return errors.New(n.Text)
			}
			fmt.Printf("  %s\n", n.Text)
			return nil
		}
		<-e.Updates()
	}
}

// renderWeek prints the weekly summary view for a Success state.
func renderWeek(cfg config.Config, s engine.State) {
	currency := cfg.Appearance.Currency

	fmt.Println()
	fmt.Println(cli.RenderTitle("WEEKLY SPEND"))
	fmt.Println()
	fmt.Println(cli.RenderBudgetLine(currency, s.WeeklyTotal, s.Budget, s.Remaining))
	fmt.Println()

	if len(s.Expenses) == 0 {
		fmt.Println("  No expenses recorded yet. Add one with `wburn add`.")
		return
	}

	table := cli.Table{Headers: []string{"Date", "Description", "Amount", "ID"}}
	for _, e := range s.Expenses {
		table.Rows = append(table.Rows, []string{
			cli.FormatDate(e.Date),
			e.Description,
			cli.FormatMoney(currency, e.Amount),
			e.ID,
		})
	}
	fmt.Println(cli.RenderTable(table))
}

func runSummary(_ *cobra.Command, _ []string) error {
	e, cfg, err := newEngine()
	if err != nil {
		return err
	}

	s := settle(e)
	if s.Phase == engine.PhaseError {
		return errors.New(s.Err)
	}

	renderWeek(cfg, s)
	return nil
}
