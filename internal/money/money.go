// Package money renders amounts kept in minor currency units.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ToDecimal converts an amount in minor units to major units using the
// currency's standard number of fraction digits.
func ToDecimal(minor int64, unit currency.Unit) decimal.Decimal {
	scale, _ := currency.Standard.Rounding(unit)
	return decimal.New(minor, -int32(scale))
}

// Format renders minor units as "<ISO> <amount>", e.g. "USD 10.50".
func Format(minor int64, unit currency.Unit) string {
	scale, _ := currency.Standard.Rounding(unit)
	return fmt.Sprintf("%s %s", unit.String(), ToDecimal(minor, unit).StringFixed(int32(scale)))
}
