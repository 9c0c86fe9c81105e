// Package util provides shared rounding helpers for prices and percentages.
package util

import "math"

// RoundToTick rounds x to the nearest multiple of tick, ties away from
// zero. Break-evens snap to the $0.01 price grid and probabilities to a
// tenth of a percent this way. A non-positive tick returns x unchanged.
func RoundToTick(x, tick float64) float64 {
	if tick <= 0 {
		return x
	}
	return math.Round(x/tick) * tick
}
