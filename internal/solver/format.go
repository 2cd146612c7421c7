package solver

import (
	"math"
	"strconv"
	"strings"
)

// formatNumber renders v the way answers are shown to users: shortest
// round-trip decimal, "Infinity", "-Infinity" or "NaN". Magnitudes of 1e21
// and above, and below 1e-6, use exponent notation.
func formatNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(v, 'e', -1, 64)
		// Go pads exponents to two digits: 1e-07 -> 1e-7
		return strings.Replace(strings.Replace(s, "e-0", "e-", 1), "e+0", "e+", 1)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatNumbers(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatNumber(v)
	}
	return strings.Join(parts, ", ")
}
