package services

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Nights returns the number of billable nights between checkIn and checkOut.
// A started night is billed in full. Callers guarantee checkOut > checkIn.
func Nights(checkIn, checkOut time.Time) int {
	hours := checkOut.Sub(checkIn).Hours()
	return int(math.Ceil(hours / 24))
}

// ComputeAmount returns nightlyRate multiplied by the number of nights,
// rounded to cents.
func ComputeAmount(checkIn, checkOut time.Time, nightlyRate decimal.Decimal) decimal.Decimal {
	nights := decimal.NewFromInt(int64(Nights(checkIn, checkOut)))
	return nightlyRate.Mul(nights).Round(2)
}
