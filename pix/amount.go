package pix

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// plain decimal notation with an optional exponent. strconv alone would
// also take hex floats and digit separators such as "1_000".
var decimalAmount = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// FormatAmount normalizes a decimal amount to the fixed two-decimal form
// used in the transaction amount field (e.g. "10" -> "10.00").
//
// The parsed float64 is rounded to the nearest hundredth, ties to even.
// Rounding applies to the binary value, so "1.005" (stored as
// 1.00499...) renders as "1.00" while "10.005" renders as "10.01".
func FormatAmount(amount string) (string, error) {
	amount = strings.TrimSpace(amount)
	if !decimalAmount.MatchString(amount) {
		return "", ErrInvalidAmount
	}
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return "", ErrInvalidAmount
	}
	// -0 parses without error and is not < 0
	if value == 0 {
		value = 0
	}
	return strconv.FormatFloat(value, 'f', 2, 64), nil
}

// amountIsPositive expects a value already returned by FormatAmount.
func amountIsPositive(formatted string) bool {
	value, err := strconv.ParseFloat(formatted, 64)
	return err == nil && value > 0
}
