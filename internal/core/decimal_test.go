package core

import (
	"errors"
	"testing"
)

func TestParseDecimalValue(t *testing.T) {
	cases := []struct {
		in    string
		cents int64
		ok    bool
	}{
		{"0,00", 0, true},
		{"1,23", 123, true},
		{"4750,25", 475025, true},
		{"-1,23", -123, true},
		{"-0,50", -50, true},
		{"007,05", 705, true},
		{"92233720368547757,99", 9223372036854775799, true},
		{"", 0, false},
		{"1", 0, false},          // missing comma
		{"50.00", 0, false},      // dot separator
		{"50,0", 0, false},       // one fraction digit
		{"50,000", 0, false},     // three fraction digits
		{"abc", 0, false},
		{",50", 0, false},        // missing integer digits
		{"1,2,3", 0, false},      // two commas
		{" 1,00", 0, false},      // no whitespace tolerance
		{"+1,00", 0, false},      // explicit plus not allowed
		{"1,0a", 0, false},
		{"1,٥", 0, false},        // Arabic-Indic digit in fraction
		{"١٢,00", 0, false},      // Arabic-Indic digits in integer part
		{"1,5٠", 0, false},  // mixed ASCII and Unicode digits
		{"92233720368547759,00", 0, false}, // overflows int64 cents
	}
	for _, tc := range cases {
		got, err := ParseDecimalValue(tc.in)
		if tc.ok {
			if err != nil || got.Cents() != tc.cents {
				t.Fatalf("%q expected %d cents, got %d (err=%v)", tc.in, tc.cents, got.Cents(), err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("%q expected FormatError, got %T", tc.in, err)
			}
		}
	}
}

func TestDecimalValueFormat(t *testing.T) {
	cases := []struct {
		cents int64
		out   string
	}{
		{0, "0,00"},
		{5, "0,05"},
		{123, "1,23"},
		{475025, "4750,25"},
		{-50, "-0,50"},
		{-475025, "-4750,25"},
	}
	for _, tc := range cases {
		if got := DecimalFromCents(tc.cents).Format(); got != tc.out {
			t.Fatalf("%d cents expected %q, got %q", tc.cents, tc.out, got)
		}
	}
}

func TestDecimalValueRoundTrip(t *testing.T) {
	// Format(Parse(s)) returns s for every canonical input.
	for _, s := range []string{"0,00", "0,05", "1,23", "4750,25", "-0,50", "-4750,25", "123456789,99"} {
		v, err := ParseDecimalValue(s)
		if err != nil {
			t.Fatalf("%q unexpected error: %v", s, err)
		}
		if got := v.Format(); got != s {
			t.Fatalf("%q round-tripped to %q", s, got)
		}
	}
	// Leading zeros normalize, sign on zero drops.
	norm := map[string]string{"007,05": "7,05", "-0,00": "0,00"}
	for in, want := range norm {
		v, err := ParseDecimalValue(in)
		if err != nil {
			t.Fatalf("%q unexpected error: %v", in, err)
		}
		if got := v.Format(); got != want {
			t.Fatalf("%q normalized to %q, want %q", in, got, want)
		}
	}
}

func TestDecimalValueCompare(t *testing.T) {
	a := DecimalFromCents(100)
	b := DecimalFromCents(200)
	if !a.Equal(DecimalFromCents(100)) {
		t.Fatalf("expected equality on same cents")
	}
	if a.Equal(b) {
		t.Fatalf("expected inequality on different cents")
	}
	if a.Cmp(b) != -1 || b.Cmp(a) != 1 || a.Cmp(a) != 0 {
		t.Fatalf("unexpected ordering: %d %d %d", a.Cmp(b), b.Cmp(a), a.Cmp(a))
	}
}

func TestDecimalValueFloat(t *testing.T) {
	v, err := ParseDecimalValue("200,50")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := v.Float(); got != 200.5 {
		t.Fatalf("expected 200.5, got %v", got)
	}
}
