package utils

import (
	"math"
	"strconv"
	"strings"
)

// ParseDecimal parses user-entered numbers; "," is accepted as the decimal separator.
// Empty, malformed and non-finite input yields ok=false.
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// DecimalOrZero is ParseDecimal with invalid input mapped to 0.
func DecimalOrZero(s string) float64 {
	v, _ := ParseDecimal(s)
	return v
}

// FormatDecimal renders an optional number back into input form ("" for nil).
func FormatDecimal(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
