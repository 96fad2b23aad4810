package util

import (
	"encoding/json"
	"regexp"

	"github.com/shopspring/decimal"
)

var reNonNumeric = regexp.MustCompile(`[^\d.]`)

// CleanDecimal turns a field value into a non-negative amount. Numbers are
// taken at face value, exponent included; text keeps only digits and dots.
// Anything unparseable is zero. A minus sign is dropped, so the result is
// never negative.
func CleanDecimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case json.Number:
		if d, err := decimal.NewFromString(t.String()); err == nil {
			return d.Abs()
		}
	case float64:
		return decimal.NewFromFloat(t).Abs()
	case int:
		return decimal.NewFromInt(int64(t)).Abs()
	case int64:
		return decimal.NewFromInt(t).Abs()
	}

	cleaned := reNonNumeric.ReplaceAllString(ToText(v), "")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
