package locale

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var errNotNumeric = errors.New("not a number")

// ParseAmount reads a monetary cell. Numbers are taken as-is; text is
// cleaned to [0-9,.-] and the separator that appears last is treated as
// the decimal point ("1.234,56" and "1,234.56" both give 1234.56). A lone
// comma is a decimal comma.
func ParseAmount(v any) (decimal.Decimal, error) {
	switch t := v.(type) {
	case nil:
		return decimal.Zero, newParseError("amount", v, ErrEmpty)
	case decimal.Decimal:
		return t, nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return decimal.Zero, newParseError("amount", v, errNotNumeric)
		}
		return decimal.NewFromFloat(t), nil
	case float32:
		return ParseAmount(float64(t))
	case int:
		return decimal.NewFromInt(int64(t)), nil
	case int64:
		return decimal.NewFromInt(t), nil
	}

	raw := CellString(v)
	if raw == "" {
		return decimal.Zero, newParseError("amount", v, ErrEmpty)
	}
	cleaned := cleanAmount(raw)
	if cleaned == "" {
		return decimal.Zero, newParseError("amount", v, errNotNumeric)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, newParseError("amount", v, err)
	}
	return d, nil
}

// cleanAmount reduces s to a canonical decimal literal.
func cleanAmount(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	out := b.String()

	lastComma := strings.LastIndex(out, ",")
	lastDot := strings.LastIndex(out, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			out = strings.ReplaceAll(out, ".", "")
			out = strings.Replace(out, ",", ".", 1)
		} else {
			out = strings.ReplaceAll(out, ",", "")
		}
	case lastComma >= 0:
		out = strings.ReplaceAll(out, ",", ".")
	}
	return out
}
