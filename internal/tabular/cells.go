package tabular

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/lessons-ledger/internal/dates"
	"github.com/shopspring/decimal"
)

// String returns the trimmed text of a cell. Whole floats print without a fraction.
func String(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return ""
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return dates.Key(val)
	case decimal.Decimal:
		return val.String()
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// Number parses a numeric cell. Blank, non-numeric and non-finite values are not numbers.
func Number(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case decimal.Decimal:
		return val, true
	case string:
		s := strings.TrimSpace(val)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// NumberOr parses a numeric cell, falling back to def.
func NumberOr(v any, def decimal.Decimal) decimal.Decimal {
	if d, ok := Number(v); ok {
		return d
	}
	return def
}

// Date parses a date cell with dates.ParseFlexible; unparseable values yield the zero time.
func Date(v any) time.Time {
	t, ok := dates.ParseFlexible(v)
	if !ok {
		return time.Time{}
	}
	return t
}

// Float returns the float64 form of a decimal for writing into a cell.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
