// Package costing derives material and labor totals for quotes and jobs.
// Every function is pure: totals are recomputed from the line items on each
// call, so stored aggregates can never drift from their inputs.
package costing

import (
	"strconv"
	"strings"

	"github.com/buscapolo/fieldops/internal/model"
)

// ParseAmount converts a free-text numeric field to a non-negative amount.
// Empty, unparseable and negative inputs all coerce to 0; form input never
// makes an operation fail at this layer.
func ParseAmount(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// Subtotal is quantity × unit price for a single line.
func Subtotal(line model.MaterialLine) float64 {
	return ParseAmount(line.Quantity) * ParseAmount(line.UnitPrice)
}

// MaterialsTotal sums the subtotals of all lines, including lines with an
// empty description. Filtering those out before persisting is the builder's
// job, not this package's.
func MaterialsTotal(lines []model.MaterialLine) float64 {
	total := 0.0
	for _, line := range lines {
		total += Subtotal(line)
	}
	return total
}

// Total is the materials total plus the labor cost, with negative labor
// clamped to 0.
func Total(lines []model.MaterialLine, laborCost float64) float64 {
	if laborCost < 0 {
		laborCost = 0
	}
	return MaterialsTotal(lines) + laborCost
}
