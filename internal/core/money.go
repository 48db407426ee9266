package core

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ParseCents converts a decimal amount string to cents. Both dot and comma
// decimal separators are accepted; anything past the second fractional
// digit is rounded half-up. Negative amounts are rejected, zero is not:
// a budget may legitimately be set to 0.
//
//	ParseCents("12.34") -> 1234
//	ParseCents("12,3")  -> 1230
//	ParseCents("12.345") -> 1235
func ParseCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}

	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
		if strings.ContainsRune(fracPart, '.') {
			return 0, ErrInvalidAmount
		}
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxWhole = (1<<63 - 1) / 100
	if iv > maxWhole {
		return 0, ErrInvalidAmount
	}

	var frac int64
	if len(fracPart) > 0 {
		frac = int64(fracPart[0]-'0') * 10
	}
	if len(fracPart) > 1 {
		frac += int64(fracPart[1] - '0')
	}
	if len(fracPart) > 2 && fracPart[2] >= '5' {
		frac++
	}

	return iv*100 + frac, nil
}

// Float returns the amount in currency units for JSON responses.
// Keep calculations in cents; this is presentation only.
func (m Money) Float() float64 {
	return float64(m.Cents) / 100.0
}

// String formats the amount with two decimals, e.g. "35.71" or "-12.00".
func (m Money) String() string {
	c := m.Cents
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// divideRound divides cents by n with half-up rounding away from zero.
func divideRound(cents int64, n int64) int64 {
	if n == 0 {
		return 0
	}
	if cents >= 0 {
		return (cents + n/2) / n
	}
	return -((-cents + n/2) / n)
}
