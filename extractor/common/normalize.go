// Package common provides the numeric, date and text normalization
// shared by every rule set: locale-formatted amount strings become exact
// integer minor units, share counts become fixed-point values, and
// exchange rates become exact decimals.
package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fbruell/wpx/extractor/model"
)

// NumberStyle is the detected grouping/decimal convention of a raw
// numeric string.
type NumberStyle int

const (
	// StyleGerman: "." groups thousands, "," is the decimal separator.
	StyleGerman NumberStyle = iota
	// StyleSwiss: "'" groups thousands, "." is the decimal separator.
	StyleSwiss
	// StyleUS: "," groups thousands, "." is the decimal separator.
	StyleUS
)

// AmountFactor converts major to minor currency units.
const AmountFactor = 100

// DetectNumberStyle inspects punctuation to guess the locale convention.
// An apostrophe means Swiss grouping; otherwise the relative position of
// the last "." and the last "," decides: a trailing "." is read as the
// decimal separator (US), anything else as German. This heuristic is
// deliberately kept as-is; rule sets are tuned against its quirks.
func DetectNumberStyle(raw string) NumberStyle {
	if strings.ContainsRune(raw, '\'') {
		return StyleSwiss
	}
	if strings.LastIndex(raw, ".") > strings.LastIndex(raw, ",") {
		return StyleUS
	}
	return StyleGerman
}

// stripSpaces removes all whitespace including the non-breaking spaces
// that padded PDF tables produce.
func stripSpaces(raw string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', ' ', ' ':
			return -1
		}
		return r
	}, raw)
}

// ParseDecimal parses a locale-formatted numeric string into an exact
// decimal, auto-detecting the grouping style.
func ParseDecimal(raw string) (decimal.Decimal, error) {
	cleaned := stripSpaces(raw)
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("empty numeric value %q", raw)
	}

	switch DetectNumberStyle(cleaned) {
	case StyleSwiss:
		cleaned = strings.ReplaceAll(cleaned, "'", "")
	case StyleUS:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	default: // German
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("not a valid number: %q", raw)
	}
	return d, nil
}

// ParseAmount converts a locale-formatted amount into absolute integer
// minor units (factor 100), rounded half away from zero.
func ParseAmount(raw string) (int64, error) {
	d, err := ParseDecimal(raw)
	if err != nil {
		return 0, err
	}
	return d.Abs().Shift(2).Round(0).IntPart(), nil
}

// ParseShares converts a locale-formatted share count into the
// fixed-point representation used by model.Transaction.Shares.
func ParseShares(raw string) (int64, error) {
	d, err := ParseDecimal(raw)
	if err != nil {
		return 0, err
	}
	return d.Abs().Shift(8).Round(0).IntPart(), nil
}

// ParseExchangeRate parses a rate keeping its full precision.
func ParseExchangeRate(raw string) (decimal.Decimal, error) {
	d, err := ParseDecimal(raw)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Abs(), nil
}

// FormatShares renders a fixed-point share count for notes, trimming
// trailing zeros ("10", "10.5").
func FormatShares(shares int64) string {
	return decimal.New(shares, -8).String()
}

// SharesFromInt converts a whole number of shares to fixed point.
func SharesFromInt(n int64) int64 {
	return n * model.SharesFactor
}
