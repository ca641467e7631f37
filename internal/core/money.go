// Package core provides the ledger domain types and money handling.
//
// This file contains the parsing and formatting of amounts, dates and
// the "<amount> <currency>" original-amount strings kept for audit.
package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered decimal string to a non-negative amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. No
// rounding is applied.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,5")   -> 12.5, nil
//	ParseAmount("-1")     -> ErrInvalidAmount
//	ParseAmount("abc")    -> ErrParse
//	ParseAmount("1e9")    -> ErrParse
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty amount", ErrParse)
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE") {
		return decimal.Zero, fmt.Errorf("%w: amount %q uses exponent notation", ErrParse, s)
	}
	d, err := ParseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s is negative", ErrInvalidAmount, d)
	}
	return d, nil
}

// maxExponent bounds the decimal exponent accepted from stored data.
// Larger exponents make formatting expand the coefficient digit by digit.
const maxExponent = 30

// ParseDecimal parses a stored decimal such as an Amount column or a budget
// limit. Exponent forms are accepted only within ±maxExponent.
func ParseDecimal(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: amount %q", ErrParse, s)
	}
	if e := d.Exponent(); e > maxExponent || e < -maxExponent {
		return decimal.Zero, fmt.Errorf("%w: amount %q out of range", ErrParse, s)
	}
	return d, nil
}

// ParseDate validates a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q, want YYYY-MM-DD", ErrParse, s)
	}
	return t, nil
}

// FormatOriginal renders the audit string for an entered amount.
func FormatOriginal(amount decimal.Decimal, currency string) string {
	return amount.StringFixed(2) + " " + currency
}

// SplitOriginal parses an original-amount string back into amount and currency.
func SplitOriginal(s string) (decimal.Decimal, string, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return decimal.Zero, "", fmt.Errorf("%w: original amount %q", ErrParse, s)
	}
	amount, err := ParseAmount(fields[0])
	if err != nil {
		return decimal.Zero, "", err
	}
	return amount, fields[1], nil
}
