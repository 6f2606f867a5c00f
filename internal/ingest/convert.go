package ingest

// convert.go turns raw cells into typed values.
//
// Reference numbers are lenient: anything unusable becomes 0. Amounts and
// dates report "no value" with ok=false and leave the policy to Coerce.

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the textual date format of every supported statement,
// e.g. "05-Jan-24".
const DateLayout = "2-Jan-06"

var (
	maxRefNumber = decimal.NewFromInt(math.MaxInt64)
	minRefNumber = decimal.NewFromInt(math.MinInt64)

	// numeric(12,2) holds at most 10 integer digits.
	amountLimit = decimal.New(1, 10)
)

// maxExponent bounds the decimal exponent of parsed cells. Comparing or
// rounding a value like "1e99999999" would materialize every digit.
const maxExponent = 30

// parseDecimal parses s, rejecting exponents outside ±maxExponent.
func parseDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseRefNumber parses a reference number, tolerating decimal and exponent
// notation ("123.0", "1.2345E+9"), and truncates it to an integer. Blank,
// unparsable or out of range input yields 0.
func ParseRefNumber(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, ok := parseDecimal(s)
	if !ok {
		return 0
	}
	d = d.Truncate(0)
	if d.GreaterThan(maxRefNumber) || d.LessThan(minRefNumber) {
		return 0
	}
	return d.IntPart()
}

// ParseAmount parses a currency amount rounded to two fraction digits.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, ok := parseDecimal(s)
	if !ok {
		return decimal.Decimal{}, false
	}
	d = d.Round(2)
	if d.Abs().GreaterThanOrEqual(amountLimit) {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ParseDate parses a date in DateLayout. Month abbreviations are matched
// case-insensitively; two-digit years 69-99 fall in the 1900s.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
