package scraper

import (
	"strconv"
	"strings"
)

// DefaultCurrency is the currency stamped on every record. The configured
// suppliers are French retailers, so this is a fixed policy rather than a
// detection step.
const DefaultCurrency = "EUR"

// NormalizeWhitespace collapses whitespace runs to single spaces and trims
// both ends. Empty input yields an empty string.
func NormalizeWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ExtractPrice extracts a decimal amount and currency from noisy price text
// such as "25,99 €". Every rune that is not a digit, comma or period is
// dropped and the comma is treated as the decimal separator. Empty or
// unparsable input yields (0, "EUR"); it never fails.
func ExtractPrice(text string) (float64, string) {
	if text == "" {
		return 0, DefaultCurrency
	}

	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.ReplaceAll(b.String(), ",", ".")

	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, DefaultCurrency
	}
	return price, DefaultCurrency
}
