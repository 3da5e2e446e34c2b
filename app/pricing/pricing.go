// Package pricing computes pro-rated renewal quotes. Everything here is pure:
// no repository access and no clock.
package pricing

import (
	"errors"
	"math/big"
	"time"
)

const DefaultFullYearDays = 365

var ErrInvalidInput = errors.New("full year days must be positive")

// ProRatedPrice returns (daysRemaining / fullYearDays) * packagePrice as an
// exact rational in the package's minor units. Negative days yield a negative
// price; clamping is left to the caller.
func ProRatedPrice(packagePrice, daysRemaining, fullYearDays int64) (*big.Rat, error) {
	if fullYearDays <= 0 {
		return nil, ErrInvalidInput
	}
	ratio := big.NewRat(daysRemaining, fullYearDays)
	return ratio.Mul(ratio, new(big.Rat).SetInt64(packagePrice)), nil
}

// DaysBetween is floor((to - from) / 24h).
func DaysBetween(from, to time.Time) int64 {
	d := to.Sub(from)
	days := int64(d / (24 * time.Hour))
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}
	return days
}

// FloorCents rounds a minor-unit price towards negative infinity.
func FloorCents(price *big.Rat) int64 {
	// Euclidean division equals floor for the always-positive denominator.
	return new(big.Int).Div(price.Num(), price.Denom()).Int64()
}

// FormatMajor renders floored minor units as a two-decimal major-unit string.
func FormatMajor(cents int64) string {
	return new(big.Rat).SetFrac64(cents, 100).FloatString(2)
}
