package utils

import (
	"fmt"
	"math"
)

// FormatMoney keeps consistent decimal formatting for currency fields.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

// RoundCents rounds to the DECIMAL(10,2) precision used by price columns.
func RoundCents(amount float64) float64 {
	return math.Round(amount*100) / 100
}
