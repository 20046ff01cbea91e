package cmd

import (
	"encoding/json"
	"os"

	"github.com/mlcortes/wburn/internal/api"
	"github.com/mlcortes/wburn/internal/model"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	flagExportStart string
	flagExportEnd   string
	flagExportWeek  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump budget and expenses as JSON",
	Long:  "Fetch the budget and an optionally date-filtered expense list straight from the server and print them as JSON.",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportStart, "start", "", "Only expenses on or after this date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&flagExportEnd, "end", "", "Only expenses on or before this date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&flagExportWeek, "week", "", "Only expenses in the week commencing this date (YYYY-MM-DD)")
	rootCmd.AddCommand(exportCmd)
}

type exportPayload struct {
	WeeklyBudget float64         `json:"weekly_budget"`
	Expenses     []model.Expense `json:"expenses"`
}

func runExport(cmd *cobra.Command, _ []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	// This is a plain read of two independent endpoints, so the fetches run
	// concurrently. The engine's refresh is not involved here.
	g, ctx := errgroup.WithContext(cmd.Context())

	var payload exportPayload
	g.Go(func() error {
		weekly, err := client.FetchBudget(ctx)
		if err != nil {
			return err
		}
		payload.WeeklyBudget = weekly
		return nil
	})
	g.Go(func() error {
		expenses, err := client.FetchExpensesRange(ctx, api.RangeQuery{
			StartDate:      flagExportStart,
			EndDate:        flagExportEnd,
			WeekCommencing: flagExportWeek,
		})
		if err != nil {
			return err
		}
		model.SortByDateDesc(expenses)
		payload.Expenses = expenses
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
