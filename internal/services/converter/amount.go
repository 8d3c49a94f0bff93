package converter

import "math"

const amountMulti = 100

// FormatAmount converts minor units into a decimal amount.
func FormatAmount(amount int) float64 {
	return float64(amount) / amountMulti
}

// ConvertAmount converts a decimal amount into minor units.
func ConvertAmount(amount float64) int {
	return int(math.Round(amount * amountMulti))
}
