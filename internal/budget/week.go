// Package budget derives the current-week spending window and totals.
package budget

import (
	"time"

	"github.com/mlcortes/wburn/internal/log"
	"github.com/mlcortes/wburn/internal/model"
)

// WeekStart returns the most recent Monday on or before today, truncated to
// midnight in today's location. A Monday maps to itself.
func WeekStart(today time.Time) time.Time {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	// time.Weekday is Sunday=0; shift so Monday yields offset 0, Sunday 6.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// WeeklyTotal sums the amounts of every expense dated on or after weekStart.
// There is no upper bound, so future-dated expenses count toward the current
// week. An expense whose date does not parse is skipped and logged, never
// fatal to the calculation.
func WeeklyTotal(expenses []model.Expense, weekStart time.Time, logger *log.Logger) float64 {
	if logger == nil {
		logger = log.Discard()
	}

	var sum float64
	for _, e := range expenses {
		d, err := time.ParseInLocation(model.DateLayout, e.Date, weekStart.Location())
		if err != nil {
			logger.Warn("skipping expense with unparseable date",
				log.FieldExpenseID, e.ID,
				"date", e.Date,
			)
			continue
		}
		if !d.Before(weekStart) {
			sum += e.Amount
		}
	}
	return sum
}

// Remaining is the weekly budget minus the weekly total. It goes negative
// when the week is overspent; callers render it as-is.
func Remaining(weeklyBudget, weeklyTotal float64) float64 {
	return weeklyBudget - weeklyTotal
}
