// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"time"

	"github.com/mlcortes/wburn/internal/model"
)

// FormatMoney renders an amount with the configured currency symbol and
// two-decimal precision. Negative amounts keep the sign ahead of the symbol:
// -£25.50.
func FormatMoney(currency string, amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("-%s%.2f", currency, -amount)
	}
	return fmt.Sprintf("%s%.2f", currency, amount)
}

// FormatDate renders a wire date like "Mon 10 Jun". Unparseable dates are
// shown raw so a bad record is still visible in listings.
func FormatDate(date string) string {
	d, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return date
	}
	return d.Format("Mon 02 Jan")
}
