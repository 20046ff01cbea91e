// Package model defines domain types for wburn expenses and budgets.
package model

import "sort"

// DateLayout is the calendar-date wire format used by the expense server.
// Dates carry no time or zone component.
const DateLayout = "2006-01-02"

// Expense is a single spending record. ID is assigned by the server and is
// empty on a client-built record that has not been created yet.
type Expense struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Date        string  `json:"date"` // YYYY-MM-DD
}

// SortByDateDesc orders expenses newest first. ISO calendar dates sort
// lexicographically, so no parsing is needed here; records with equal dates
// keep their server order.
func SortByDateDesc(expenses []Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date > expenses[j].Date
	})
}
