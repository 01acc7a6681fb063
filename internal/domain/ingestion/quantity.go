package ingestion

import (
	"regexp"
	"strings"

	"github.com/varejo/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ErrNoDigits is returned when a quantity string contains no digits at all.
var ErrNoDigits = shared.NewDomainError("QUANTITY_NO_DIGITS", "Quantity contains no digits")

var (
	plainIntPattern  = regexp.MustCompile(`^-?\d+$`)
	singleSepPattern = regexp.MustCompile(`^-?\d+[.,]\d+$`)
	brGroupedPattern = regexp.MustCompile(`^-?\d{1,3}(?:\.\d{3})+(?:,\d+)?$`)
	usGroupedPattern = regexp.MustCompile(`^-?\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
	numericSubstring = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
)

// ParseQuantity parses a quantity string written in mixed locale
// conventions into a decimal, preserving fractional parts.
//
// Accepted forms, tried in order: plain integer, single decimal separator
// (comma or dot as the decimal mark), BR grouped thousands ("1.234,56"),
// US grouped thousands ("1,234.56"). When none match, the first numeric
// substring is extracted as a last resort ("12a" parses as 12).
func ParseQuantity(raw string) (decimal.Decimal, error) {
	s := stripSpaces(raw)
	if s == "" {
		return decimal.Zero, ErrNoDigits
	}

	switch {
	case plainIntPattern.MatchString(s):
		return decimal.NewFromString(s)
	case singleSepPattern.MatchString(s):
		return decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	case brGroupedPattern.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		return decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	case usGroupedPattern.MatchString(s):
		return decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	}

	// Last resort: take the first numeric substring.
	if sub := numericSubstring.FindString(s); sub != "" {
		return ParseQuantity(sub)
	}

	return decimal.Zero, ErrNoDigits
}

// ParseWholeQuantity parses a quantity for the bulk snapshot path: the value
// is rounded to the nearest whole unit and clamped to a minimum of zero.
func ParseWholeQuantity(raw string) (decimal.Decimal, error) {
	qty, err := ParseQuantity(raw)
	if err != nil {
		return decimal.Zero, err
	}
	qty = qty.Round(0)
	if qty.IsNegative() {
		return decimal.Zero, nil
	}
	return qty, nil
}

func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ' ':
			return -1
		}
		return r
	}, s)
}
