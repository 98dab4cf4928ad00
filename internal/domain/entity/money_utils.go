package entity

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
)

// MaxDecimalPlaces defines the maximum number of decimal places allowed for money amounts
const MaxDecimalPlaces = 2

// MinShareInCents is the smallest amount a single envelope share may hold
const MinShareInCents int64 = 1

// ValidateAndConvertAmount validates a decimal string and converts it to cents.
// "10" becomes 1000, "10.5" becomes 1050, "10.55" becomes 1055; more than two
// decimal places is rejected.
func ValidateAndConvertAmount(amount string) (int64, error) {
	amount = strings.TrimSpace(amount)
	if len(amount) == 0 {
		return 0, fmt.Errorf("%w: empty value", errs.ErrInvalidAmount)
	}

	if strings.HasPrefix(amount, "-") {
		return 0, errs.ErrNegativeAmount
	}

	parts := strings.Split(amount, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: invalid number format", errs.ErrInvalidAmount)
	}

	var integerValue string
	if len(parts) == 1 {
		integerValue = parts[0] + "00"
	} else {
		switch len(parts[1]) {
		case 0:
			integerValue = parts[0] + "00"
		case 1:
			integerValue = parts[0] + parts[1] + "0"
		case 2:
			integerValue = parts[0] + parts[1]
		default:
			return 0, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
		}
	}

	value, err := strconv.ParseInt(integerValue, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", errs.ErrInvalidAmount, err.Error())
	}

	return value, nil
}

// DecimalToCents converts a decimal amount to cents. The amount must be
// non-negative and carry at most two decimal places.
func DecimalToCents(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, errs.ErrNegativeAmount
	}

	if !amount.Equal(amount.Truncate(MaxDecimalPlaces)) {
		return 0, fmt.Errorf("%w: maximum %d decimal places allowed", errs.ErrInvalidAmount, MaxDecimalPlaces)
	}

	cents := amount.Shift(MaxDecimalPlaces)
	if cents.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, errs.ErrAmountOverflow
	}

	return cents.IntPart(), nil
}

// CentsToDecimal converts cents to a decimal amount
func CentsToDecimal(amountInCents int64) decimal.Decimal {
	return decimal.New(amountInCents, -MaxDecimalPlaces)
}

// AmountInCentsToString converts integer amount to a decimal string
// For example:
// - 1015 becomes "10.15"
// - 1000 becomes "10.00"
func AmountInCentsToString(amountInCents int64) string {
	isNegative := amountInCents < 0
	if isNegative {
		amountInCents = -amountInCents
	}

	amountStr := strconv.FormatInt(amountInCents, 10)
	for len(amountStr) < 3 {
		amountStr = "0" + amountStr
	}

	decimalPos := len(amountStr) - 2
	wholePart := amountStr[:decimalPos]
	decimalPart := amountStr[decimalPos:]

	if isNegative {
		return "-" + wholePart + "." + decimalPart
	}
	return wholePart + "." + decimalPart
}
