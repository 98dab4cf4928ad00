package dto

import (
	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/cipher-envelope/internal/domain/entity"
)

// Money is a yuan amount on the wire. It is written as a JSON number with two
// decimals and read from either a number or a string.
type Money struct {
	decimal.Decimal
}

// NewMoney converts cents for output
func NewMoney(cents int64) Money {
	return Money{Decimal: entity.CentsToDecimal(cents)}
}

// MarshalJSON writes the amount with exactly two decimals
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.StringFixed(entity.MaxDecimalPlaces)), nil
}

// UnmarshalJSON accepts 10, 10.5 or "10.50"
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}

// Cents converts the amount for the domain, rejecting sub-cent precision
func (m Money) Cents() (int64, error) {
	return entity.DecimalToCents(m.Decimal)
}
