package pix

import (
	"errors"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   string
		expected string
	}{
		{amount: "10", expected: "10.00"},
		{amount: "0.1", expected: "0.10"},
		{amount: "123.45", expected: "123.45"},
		{amount: "0", expected: "0.00"},
		{amount: "-0", expected: "0.00"},
		{amount: " 7.5 ", expected: "7.50"},
		{amount: "1e3", expected: "1000.00"},
		{amount: "0.125", expected: "0.12"},
		{amount: "0.375", expected: "0.38"},
		{amount: "10.005", expected: "10.01"},
		{amount: "1.005", expected: "1.00"},
		{amount: "0.001", expected: "0.00"},
		{amount: "+5", expected: "5.00"},
		{amount: "10.", expected: "10.00"},
		{amount: ".5", expected: "0.50"},
		{amount: "2.5E1", expected: "25.00"},
	}

	for _, test := range tests {
		formatted, err := FormatAmount(test.amount)
		if err != nil {
			t.Fatalf("unexpected error formatting '%v': %v", test.amount, err)
		}
		if formatted != test.expected {
			t.Errorf("expected '%v' but got '%v' instead", test.expected, formatted)
		}
	}
}

func TestFormatAmountInvalid(t *testing.T) {
	invalid := []string{"-1", "-10", "abc", "", "10,00", "NaN", "Inf", "-Inf", "10abc",
		"0x1p4", "0x10", "1_0", "1_000", "+Inf", "1e", ".", "1.2.3"}

	for _, amount := range invalid {
		_, err := FormatAmount(amount)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("expected '%v' for '%v' but got '%v' instead", ErrInvalidAmount, amount, err)
		}
	}
}
