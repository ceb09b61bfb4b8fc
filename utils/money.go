package utils

import (
	"math"
	"strconv"
)

// Round2 rounds x to 2 decimal places (banking-style simple round).
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// FormatMoney renders an amount with exactly two decimals, the way totals
// are printed on tickets and in listings.
func FormatMoney(x float64) string {
	x = Round2(x)
	if x == 0 {
		x = 0 // drop negative zero
	}
	return strconv.FormatFloat(x, 'f', 2, 64)
}
