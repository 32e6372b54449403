// Package domain provides core domain types for the order book aggregator.
// All financial values use decimal arithmetic via cockroachdb/apd for precision.
package domain

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// Decimal is a type alias for apd.Decimal pointer, providing ergonomic decimal arithmetic.
// Using a pointer alias allows nil checks and avoids copying large structs.
type Decimal = *apd.Decimal

// decimalContext is the default context for decimal operations with 34-digit precision.
var decimalContext = apd.BaseContext.WithPrecision(34)

// NewDecimal creates a new Decimal from a string representation.
// Returns an error if the string cannot be parsed.
//
// Example:
//
//	price, err := domain.NewDecimal("50000.12345678")
func NewDecimal(s string) (Decimal, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid decimal string %q: %w", s, err)
	}
	return d, nil
}

// Zero returns a Decimal representing zero (0).
func Zero() Decimal {
	return apd.New(0, 0)
}

// Sub returns the difference of two Decimals (a - b).
// Returns a new Decimal, does not modify inputs.
func Sub(a, b Decimal) Decimal {
	result := apd.New(0, 0)
	_, err := decimalContext.Sub(result, a, b)
	if err != nil {
		panic(fmt.Sprintf("decimal sub error: %v", err))
	}
	return result
}

// Cmp compares two Decimals and returns:
//
//	-1 if a < b
//	 0 if a == b
//	+1 if a > b
func Cmp(a, b Decimal) int {
	return a.Cmp(b)
}

// Compare is an alias for Cmp for consistency with standard library.
func Compare(a, b Decimal) int {
	return Cmp(a, b)
}

// IsZero returns true if the Decimal equals zero.
func IsZero(d Decimal) bool {
	return d.IsZero()
}

// String returns the string representation of a Decimal.
func String(d Decimal) string {
	return d.String()
}
