package core

import (
	"fmt"
	"time"
)

// Period is a calendar year-month identifying when a KPI value was
// recorded, rendered as "YYYY-MM".
type Period struct {
	year  int
	month time.Month
}

// Locale selects the language used for period display names.
type Locale string

const (
	LocaleEnglish Locale = "en"
	LocaleItalian Locale = "it"
)

var monthNames = map[Locale][12]string{
	LocaleEnglish: {
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	},
	LocaleItalian: {
		"Gennaio", "Febbraio", "Marzo", "Aprile", "Maggio", "Giugno",
		"Luglio", "Agosto", "Settembre", "Ottobre", "Novembre", "Dicembre",
	},
}

// NewPeriod creates a Period from year and month.
func NewPeriod(year int, month time.Month) Period {
	return Period{year: year, month: month}
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{year: t.Year(), month: t.Month()}
}

// ParsePeriod parses a strict "YYYY-MM" string: 4-digit year, dash,
// 2-digit month in [01,12]. Anything else fails with a FormatError.
func ParsePeriod(s string) (Period, error) {
	if len(s) != 7 || s[4] != '-' {
		return Period{}, &FormatError{Input: s, Reason: "expected YYYY-MM"}
	}
	// ASCII digits only; the positional arithmetic below assumes one
	// byte per digit.
	for i := 0; i < len(s); i++ {
		if i == 4 {
			continue
		}
		if s[i] < '0' || s[i] > '9' {
			return Period{}, &FormatError{Input: s, Reason: fmt.Sprintf("unexpected character %q", rune(s[i]))}
		}
	}
	year := int(s[0]-'0')*1000 + int(s[1]-'0')*100 + int(s[2]-'0')*10 + int(s[3]-'0')
	month := int(s[5]-'0')*10 + int(s[6]-'0')
	if month < 1 || month > 12 {
		return Period{}, &FormatError{Input: s, Reason: fmt.Sprintf("month %02d out of range", month)}
	}
	return Period{year: year, month: time.Month(month)}, nil
}

// Format returns the canonical "YYYY-MM" form.
func (p Period) Format() string {
	return fmt.Sprintf("%04d-%02d", p.year, int(p.month))
}

// String implements fmt.Stringer using the canonical format.
func (p Period) String() string {
	return p.Format()
}

// DisplayName returns a human-readable "Month YYYY" in the given locale.
// Unknown locales fall back to English.
func (p Period) DisplayName(loc Locale) string {
	names, ok := monthNames[loc]
	if !ok {
		names = monthNames[LocaleEnglish]
	}
	return fmt.Sprintf("%s %04d", names[int(p.month)-1], p.year)
}

// Year returns the period's year.
func (p Period) Year() int {
	return p.year
}

// Month returns the period's month.
func (p Period) Month() time.Month {
	return p.month
}

// IsZero reports whether the period is the uninitialized zero value.
func (p Period) IsZero() bool {
	return p.year == 0 && p.month == 0
}

// Compare orders periods chronologically: -1 if p is earlier than o,
// 0 if equal, +1 if later.
func (p Period) Compare(o Period) int {
	if p.year != o.year {
		if p.year < o.year {
			return -1
		}
		return 1
	}
	if p.month != o.month {
		if p.month < o.month {
			return -1
		}
		return 1
	}
	return 0
}

// Before reports whether p is chronologically earlier than o.
func (p Period) Before(o Period) bool {
	return p.Compare(o) < 0
}

// AddMonths returns the period n months after p (n may be negative).
func (p Period) AddMonths(n int) Period {
	m := p.year*12 + int(p.month) - 1 + n
	return Period{year: m / 12, month: time.Month(m%12 + 1)}
}
