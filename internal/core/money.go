// Package core provides the domain model shared by the notes and ledger
// services: users, positioned items, amount parsing and validation.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-supplied amount string into a decimal.
//
// A non-numeric string or a negative value is a validation failure, not a
// storage failure. Full precision is kept; rounding to two decimal places
// happens only when an amount is surfaced externally (see FormatAmount).
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, NewValidationError("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, NewValidationError("invalid amount format")
	}
	if d.IsNegative() {
		return decimal.Zero, NewValidationError("amount must be non negative")
	}
	return d, nil
}

// FormatAmount renders an amount rounded to two decimal places. This is the
// only place rounding happens; internal accumulation keeps full precision.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
