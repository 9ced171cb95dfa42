// Package sanitize guards every numeric field boundary: whatever a scraped
// source produced, what goes into a snapshot is a finite number.
package sanitize

import (
	"math"
	"strconv"
	"strings"
)

// Float returns v unchanged when it is finite, 0 otherwise.
func Float(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Value coerces any scraped value to a finite float64. nil, non-numeric
// strings, NaN and ±Inf all become 0; conversion failure is never an error.
func Value(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return Float(n)
	case float32:
		return Float(float64(n))
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(n, ",", "")), 64)
		if err != nil {
			return 0
		}
		return Float(f)
	default:
		return 0
	}
}

// Round rounds v to the given number of decimal places after sanitizing.
func Round(v float64, places int) float64 {
	v = Float(v)
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
