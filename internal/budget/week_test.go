package budget

import (
	"bytes"
	"testing"
	"time"

	"github.com/mlcortes/wburn/internal/log"
	"github.com/mlcortes/wburn/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestWeekStart(t *testing.T) {
	cases := []struct {
		name  string
		today string
		want  string
	}{
		{"monday maps to itself", "2024-06-10", "2024-06-10"},
		{"wednesday", "2024-06-12", "2024-06-10"},
		{"sunday is the prior monday", "2024-06-09", "2024-06-03"},
		{"saturday", "2024-06-15", "2024-06-10"},
		{"tuesday across month start", "2024-07-02", "2024-07-01"},
		{"wednesday across year start", "2025-01-01", "2024-12-30"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WeekStart(mustDate(t, tc.today))
			want := mustDate(t, tc.want)
			if !got.Equal(want) {
				t.Errorf("WeekStart(%s) = %s, want %s",
					tc.today, got.Format(model.DateLayout), tc.want)
			}
			if got.Weekday() != time.Monday {
				t.Errorf("WeekStart(%s) fell on %s, want Monday", tc.today, got.Weekday())
			}
		})
	}
}

func TestWeekStart_TruncatesTimeOfDay(t *testing.T) {
	late := time.Date(2024, 6, 10, 23, 59, 0, 0, time.UTC)
	got := WeekStart(late)
	if got.Hour() != 0 || got.Minute() != 0 {
		t.Fatalf("WeekStart did not truncate to midnight: %s", got)
	}
	if got.Day() != 10 {
		t.Fatalf("late Monday shifted weeks: got day %d, want 10", got.Day())
	}
}

func TestWeeklyTotal_InclusiveLowerBoundOnly(t *testing.T) {
	expenses := []model.Expense{
		{ID: "1", Amount: 20, Description: "groceries", Date: "2024-06-10"}, // Monday, in window
		{ID: "2", Amount: 5, Description: "snack", Date: "2024-06-09"},      // prior Sunday, out
		{ID: "3", Amount: 7.25, Description: "lunch", Date: "2024-06-30"},   // future-dated, counts
	}

	got := WeeklyTotal(expenses, mustDate(t, "2024-06-10"), nil)
	if got != 27.25 {
		t.Fatalf("WeeklyTotal = %.2f, want 27.25", got)
	}
}

func TestWeeklyTotal_SkipsAndLogsUnparseableDates(t *testing.T) {
	expenses := []model.Expense{
		{ID: "1", Amount: 20, Date: "2024-06-10"},
		{ID: "2", Amount: 99, Date: "not-a-date"},
		{ID: "3", Amount: 3, Date: "2024-06-11"},
	}

	var buf bytes.Buffer
	logger := log.New("budget", log.Config{Output: &buf})

	got := WeeklyTotal(expenses, mustDate(t, "2024-06-10"), logger)
	if got != 23 {
		t.Fatalf("WeeklyTotal = %.2f, want 23 (bad date excluded)", got)
	}
	if !bytes.Contains(buf.Bytes(), []byte("not-a-date")) {
		t.Fatalf("expected a log record naming the bad date, got: %s", buf.String())
	}
}

func TestWeeklyTotal_EmptyList(t *testing.T) {
	if got := WeeklyTotal(nil, mustDate(t, "2024-06-10"), nil); got != 0 {
		t.Fatalf("WeeklyTotal(nil) = %.2f, want 0", got)
	}
}

func TestRemaining_MayGoNegative(t *testing.T) {
	if got := Remaining(110, 20); got != 90 {
		t.Fatalf("Remaining(110, 20) = %.2f, want 90", got)
	}
	if got := Remaining(50, 75.5); got != -25.5 {
		t.Fatalf("Remaining(50, 75.5) = %.2f, want -25.5 (no clamping)", got)
	}
}

// Scenario from the week of 2024-06-10: two expenses, one in the prior week.
func TestWeeklyScenario(t *testing.T) {
	expenses := []model.Expense{
		{ID: "a", Amount: 20, Description: "groceries", Date: "2024-06-10"},
		{ID: "b", Amount: 5, Description: "coffee", Date: "2024-06-09"},
	}
	now := mustDate(t, "2024-06-12")

	start := WeekStart(now)
	if start.Format(model.DateLayout) != "2024-06-10" {
		t.Fatalf("WeekStart = %s, want 2024-06-10", start.Format(model.DateLayout))
	}

	total := WeeklyTotal(expenses, start, nil)
	if total != 20 {
		t.Fatalf("WeeklyTotal = %.2f, want 20", total)
	}
	if rem := Remaining(110, total); rem != 90 {
		t.Fatalf("Remaining = %.2f, want 90", rem)
	}
}
