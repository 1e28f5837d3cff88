// Package money formats integer cent amounts for display and payment links.
package money

import "github.com/shopspring/decimal"

// Currency symbol appended to displayed prices.
const Currency = "€"

// FromCents converts integer cents into a two-place decimal.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Amount renders cents as a plain decimal with two places, e.g. "12.34".
func Amount(cents int64) string {
	return FromCents(cents).StringFixed(2)
}

// Format renders cents for humans, e.g. "12.34 €".
func Format(cents int64) string {
	return Amount(cents) + " " + Currency
}
