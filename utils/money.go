package utils

import "math"

// Round2 rounds x to two decimals, the precision scores and monetary amounts
// are stored at.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
