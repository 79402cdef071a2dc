// Package core provides the work log domain: jobs, entries, the hours
// calculation, period bounds and totals aggregation.
//
// This file contains helpers for parsing user supplied decimal amounts
// (hourly rates, durations) and rounding them for display.
package core

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var ErrInvalidAmount = errors.New("invalid amount")

// ParseDecimal converts a decimal string to a float.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Exponents, thousands separators and empty input are
// rejected.
//
// Examples:
//
//	ParseDecimal("12.5") -> 12.5, nil
//	ParseDecimal("7,25") -> 7.25, nil
//	ParseDecimal("-1")   -> -1, nil
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	digits := strings.TrimLeft(s, "+-")
	if len(s)-len(digits) > 1 || digits == "" {
		return 0, ErrInvalidAmount
	}
	intPart, fracPart, _ := strings.Cut(digits, ".")
	if strings.Contains(fracPart, ".") || (intPart == "" && fracPart == "") {
		return 0, ErrInvalidAmount
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ParseRate parses a non-negative hourly rate.
func ParseRate(s string) (float64, error) {
	v, err := ParseDecimal(s)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, ErrNegativeRate
	}
	return v, nil
}

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatAmount renders v with exactly two decimals.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(Round2(v), 'f', 2, 64)
}
