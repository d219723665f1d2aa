// Package renderer turns the typed report rows of the allocation package
// into markdown. One function per report, each returning a self-contained
// document the CLI can print raw or through a terminal renderer.
package renderer

import (
	"fmt"

	"github.com/etnz/allocation"
)

// dollars formats a float dollar amount the way the core Money type does.
func dollars(v float64) string {
	return allocation.Dollars(v).Round().String()
}

// deltaDollars formats a float dollar amount with an explicit sign.
func deltaDollars(v float64) string {
	return allocation.Dollars(v).Round().SignedString()
}

// pct1 formats a ratio as a percentage with one decimal.
func pct1(ratio float64) string {
	return fmt.Sprintf("%.1f%%", 100*ratio)
}

// pct0 formats a ratio as a whole percentage, used where columns are tight.
func pct0(ratio float64) string {
	return fmt.Sprintf("%.0f%%", 100*ratio)
}
