package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/amirhossein-jamali/cipher-envelope/internal/domain/error"
)

func TestValidateAndConvertAmount(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected int64
		err      error
	}{
		{"lucky eights", "88.88", 8888, nil},
		{"one cent", "0.01", 1, nil},
		{"single decimal", "6.6", 660, nil},
		{"integer yuan", "200", 20000, nil},
		{"zero is parsed", "0", 0, nil},
		{"large wallet", "9999999999.99", 999999999999, nil},
		{"empty", "", 0, errs.ErrInvalidAmount},
		{"blank", " \t", 0, errs.ErrInvalidAmount},
		{"negative", "-8.88", 0, errs.ErrNegativeAmount},
		{"fraction of a cent", "0.001", 0, errs.ErrInvalidAmount},
		{"grouped digits", "1,000", 0, errs.ErrInvalidAmount},
		{"currency sign", "¥10", 0, errs.ErrInvalidAmount},
		{"two points", "1.2.3", 0, errs.ErrInvalidAmount},
		{"words", "ten", 0, errs.ErrInvalidAmount},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cents, err := ValidateAndConvertAmount(tc.input)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cents)
		})
	}
}

func TestAmountInCentsToString(t *testing.T) {
	for cents, expected := range map[int64]string{
		0:      "0.00",
		1:      "0.01",
		8888:   "88.88",
		20000:  "200.00",
		-150:   "-1.50",
		100001: "1000.01",
	} {
		assert.Equal(t, expected, AmountInCentsToString(cents), cents)
	}

	t.Run("should survive a parse round trip", func(t *testing.T) {
		for _, amount := range []string{"0.00", "0.10", "52.00", "1314.52"} {
			cents, err := ValidateAndConvertAmount(amount)
			require.NoError(t, err)
			assert.Equal(t, amount, AmountInCentsToString(cents))
		}
	})
}

func TestDecimalToCents(t *testing.T) {
	t.Run("should convert amounts with up to two decimals", func(t *testing.T) {
		testCases := []struct {
			input    string
			expected int64
		}{
			{"10", 1000},
			{"10.5", 1050},
			{"0.01", 1},
			{"100.00", 10000},
		}

		for _, tc := range testCases {
			cents, err := DecimalToCents(decimal.RequireFromString(tc.input))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, cents, tc.input)
		}
	})

	t.Run("should reject a third decimal place", func(t *testing.T) {
		_, err := DecimalToCents(decimal.RequireFromString("0.005"))
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})

	t.Run("should reject negative amounts", func(t *testing.T) {
		_, err := DecimalToCents(decimal.RequireFromString("-1"))
		assert.ErrorIs(t, err, errs.ErrNegativeAmount)
	})

	t.Run("should reject amounts beyond int64 cents", func(t *testing.T) {
		_, err := DecimalToCents(decimal.RequireFromString("999999999999999999999"))
		assert.ErrorIs(t, err, errs.ErrAmountOverflow)
	})

	t.Run("should round trip through CentsToDecimal", func(t *testing.T) {
		cents, err := DecimalToCents(CentsToDecimal(12345))
		require.NoError(t, err)
		assert.Equal(t, int64(12345), cents)
		assert.Equal(t, "123.45", CentsToDecimal(12345).StringFixed(2))
	})
}
