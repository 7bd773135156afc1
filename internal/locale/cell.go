package locale

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const nbsp = " "

// CellString renders an untyped cell value as trimmed text. Integral floats
// are printed without a fractional part so numeric document numbers survive
// as "1024" rather than "1024.0".
func CellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(strings.ReplaceAll(t, nbsp, " "))
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case decimal.Decimal:
		return t.String()
	case time.Time:
		return t.Format("2006-01-02")
	case interface{ String() string }:
		return strings.TrimSpace(t.String())
	default:
		return ""
	}
}

// IsBlank reports whether a cell carries no usable value.
func IsBlank(v any) bool {
	return CellString(v) == ""
}
