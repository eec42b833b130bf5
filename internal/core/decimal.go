// Package core provides the kpitrack domain: decimal value parsing and
// formatting, calendar periods, KPI entities, and aggregate queries over
// recorded values.
//
// Values are stored as int64 cents (integer scaled by 100) so that
// formatting is exact and round-trips losslessly for any accepted input.
package core

import (
	"fmt"
	"math"
	"strconv"
)

// FormatError reports a malformed DecimalValue or Period input string.
// It is always recoverable by the caller, e.g. surfaced as a validation
// message on a form or CLI argument.
type FormatError struct {
	Input  string
	Reason string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid format %q: %s", e.Input, e.Reason)
}

// DecimalValue is an immutable fixed-point decimal with exactly two
// fraction digits, rendered with a comma decimal separator ("4750,25").
type DecimalValue struct {
	cents int64
}

// DecimalFromCents builds a DecimalValue from an already-scaled integer.
// This is the storage-boundary constructor; user input goes through
// ParseDecimalValue instead.
func DecimalFromCents(cents int64) DecimalValue {
	return DecimalValue{cents: cents}
}

// ParseDecimalValue parses a strict comma-decimal string of the form
// [-]digits,digits{2}.
//
// Unlike lenient money parsers, it rejects dot separators, missing commas,
// fractions that are not exactly two digits, and any non-digit characters.
// Bad input is never coerced to zero.
//
// Examples:
//
//	ParseDecimalValue("4750,25") -> 475025 cents
//	ParseDecimalValue("-0,50")   -> -50 cents
//	ParseDecimalValue("50.00")   -> FormatError (dot separator)
//	ParseDecimalValue("50,0")    -> FormatError (one fraction digit)
func ParseDecimalValue(s string) (DecimalValue, error) {
	if s == "" {
		return DecimalValue{}, &FormatError{Input: s, Reason: "empty input"}
	}

	body := s
	negative := false
	if body[0] == '-' {
		negative = true
		body = body[1:]
	}

	// Byte-wise scan: only ASCII digits count, multi-byte digit runes
	// are malformed input.
	comma := -1
	for i := 0; i < len(body); i++ {
		b := body[i]
		if b == ',' {
			if comma >= 0 {
				return DecimalValue{}, &FormatError{Input: s, Reason: "more than one decimal comma"}
			}
			comma = i
			continue
		}
		if b < '0' || b > '9' {
			return DecimalValue{}, &FormatError{Input: s, Reason: fmt.Sprintf("unexpected character %q", rune(b))}
		}
	}
	if comma < 0 {
		return DecimalValue{}, &FormatError{Input: s, Reason: "missing decimal comma"}
	}

	intPart := body[:comma]
	fracPart := body[comma+1:]
	if intPart == "" {
		return DecimalValue{}, &FormatError{Input: s, Reason: "missing integer digits"}
	}
	if len(fracPart) != 2 {
		return DecimalValue{}, &FormatError{Input: s, Reason: "fraction must have exactly 2 digits"}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return DecimalValue{}, &FormatError{Input: s, Reason: "integer part out of range"}
	}
	// Prevent overflow when scaling to cents
	if iv > (math.MaxInt64-99)/100 {
		return DecimalValue{}, &FormatError{Input: s, Reason: "value out of range"}
	}

	cents := iv*100 + int64(fracPart[0]-'0')*10 + int64(fracPart[1]-'0')
	if negative {
		cents = -cents
	}
	return DecimalValue{cents: cents}, nil
}

// Format renders the value back to its canonical comma-decimal form,
// zero padded to two fraction digits, sign preserved. The result always
// matches -?\d+,\d{2}; negative zero normalizes to "0,00".
func (v DecimalValue) Format() string {
	c := v.cents
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d,%02d", sign, c/100, c%100)
}

// String implements fmt.Stringer using the canonical format.
func (v DecimalValue) String() string {
	return v.Format()
}

// Cents returns the exact integer-scaled representation.
func (v DecimalValue) Cents() int64 {
	return v.cents
}

// Float returns a lossy float64 view for comparison and aggregation.
// Calculations that must stay exact use Cents instead.
func (v DecimalValue) Float() float64 {
	return float64(v.cents) / 100.0
}

// Equal reports whether both values have the same scaled representation.
func (v DecimalValue) Equal(o DecimalValue) bool {
	return v.cents == o.cents
}

// Cmp compares numerically: -1 if v < o, 0 if equal, +1 if v > o.
func (v DecimalValue) Cmp(o DecimalValue) int {
	switch {
	case v.cents < o.cents:
		return -1
	case v.cents > o.cents:
		return 1
	default:
		return 0
	}
}
