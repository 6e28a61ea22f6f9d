package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tiffinbox/tiffin/pkg/money"
)

func TestToMinor(t *testing.T) {
	cases := []struct {
		amount   string
		currency string
		want     int64
	}{
		{"100.00", "INR", 10000},
		{"100", "inr", 10000},
		{"35.5", "USD", 3550},
		{"500", "JPY", 500},
		{"1.234", "KWD", 1234},
		{"0.01", "EUR", 1},
	}
	for _, tc := range cases {
		got, err := money.ToMinor(decimal.RequireFromString(tc.amount), tc.currency)
		require.NoError(t, err, tc.amount+" "+tc.currency)
		assert.Equal(t, tc.want, got, tc.amount+" "+tc.currency)
	}
}

func TestToMinorRejects(t *testing.T) {
	_, err := money.ToMinor(decimal.RequireFromString("10.005"), "INR")
	assert.ErrorIs(t, err, money.ErrInexact)

	_, err = money.ToMinor(decimal.RequireFromString("10.5"), "JPY")
	assert.ErrorIs(t, err, money.ErrInexact)

	_, err = money.ToMinor(decimal.Zero, "INR")
	assert.ErrorIs(t, err, money.ErrNotPositive)

	_, err = money.ToMinor(decimal.RequireFromString("1"), "RUPEE")
	assert.ErrorIs(t, err, money.ErrCurrency)

	_, err = money.ToMinor(decimal.RequireFromString("1e30"), "INR")
	assert.ErrorIs(t, err, money.ErrOutOfRange)
}

func TestFromMinor(t *testing.T) {
	assert.True(t, money.FromMinor(10000, "INR").Equal(decimal.RequireFromString("100")))
	assert.True(t, money.FromMinor(1234, "KWD").Equal(decimal.RequireFromString("1.234")))
	assert.Equal(t, int32(0), money.Exponent("jpy"))
}
