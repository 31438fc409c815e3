package models

import "github.com/shopspring/decimal"

// AmountPrecision is the fixed number of fractional digits balances and
// amounts carry. Amounts are decimals end to end; they are never converted
// through binary floating point.
const AmountPrecision = 2

// ValidateAmount checks that d is positive and representable at the
// supported precision.
func ValidateAmount(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrInvalidAmount
	}
	if !d.Equal(d.Round(AmountPrecision)) {
		return ErrInvalidAmount
	}
	return nil
}
