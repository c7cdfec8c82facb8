package model

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fraction digits kept for prices and order totals.
const MoneyScale = 2

// amountPattern matches plain non-negative amounts that fit NUMERIC(10,2):
// up to 8 integer digits and at most MoneyScale fraction digits.
var amountPattern = regexp.MustCompile(`^\d{1,8}(\.\d{1,2})?$`)

// ErrInvalidAmount is returned when a money string is not a plain amount.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a money string such as "9", "9.9" or "9.99". Exponents,
// signs and extra fraction digits are rejected.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// NormalizeAmount parses s and renders it with MoneyScale fraction digits,
// e.g. "9.9" -> "9.90", "10" -> "10.00".
func NormalizeAmount(s string) (string, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return "", err
	}
	return d.StringFixed(MoneyScale), nil
}
