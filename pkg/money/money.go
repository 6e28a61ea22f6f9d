// Package money converts decimal amounts to the integer minor units payment
// gateways expect.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrCurrency    = errors.New("money: currency must be a 3-letter ISO 4217 code")
	ErrNotPositive = errors.New("money: amount must be greater than zero")
	ErrInexact     = errors.New("money: amount has more decimal places than the currency allows")
	ErrOutOfRange  = errors.New("money: amount is too large")
)

// ISO 4217 minor-unit exponents that differ from 2.
var exponents = map[string]int32{
	"BIF": 0, "CLP": 0, "DJF": 0, "GNF": 0, "ISK": 0, "JPY": 0, "KMF": 0,
	"KRW": 0, "PYG": 0, "RWF": 0, "UGX": 0, "VND": 0, "VUV": 0, "XAF": 0,
	"XOF": 0, "XPF": 0,
	"BHD": 3, "IQD": 3, "JOD": 3, "KWD": 3, "LYD": 3, "OMR": 3, "TND": 3,
}

// Normalize upper-cases code and checks its shape.
func Normalize(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", ErrCurrency
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", ErrCurrency
		}
	}
	return code, nil
}

// Exponent is the number of minor-unit digits for code.
func Exponent(code string) int32 {
	if e, ok := exponents[strings.ToUpper(code)]; ok {
		return e
	}
	return 2
}

// ToMinor converts amount to minor units of currency: 100.00 INR is 10000,
// 500 JPY is 500 and 1.234 KWD is 1234.
func ToMinor(amount decimal.Decimal, currency string) (int64, error) {
	code, err := Normalize(currency)
	if err != nil {
		return 0, err
	}
	if !amount.IsPositive() {
		return 0, ErrNotPositive
	}

	minor := amount.Shift(Exponent(code))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s %s", ErrInexact, amount.String(), code)
	}
	if !minor.BigInt().IsInt64() {
		return 0, ErrOutOfRange
	}
	return minor.IntPart(), nil
}

// FromMinor is the inverse of ToMinor.
func FromMinor(minor int64, currency string) decimal.Decimal {
	return decimal.New(minor, -Exponent(currency))
}
