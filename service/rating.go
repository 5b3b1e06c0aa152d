package service

import "math"

// NextRating folds one new rating into a running mean of n ratings and
// rounds the result to one decimal place, halves rounding up.
func NextRating(mean float64, n int, rating float64) (float64, int) {
	updated := (mean*float64(n) + rating) / float64(n+1)
	return math.Floor(updated*10+0.5) / 10, n + 1
}

// validRating reports whether r lies in [0, 5].
func validRating(r float64) bool {
	return !math.IsNaN(r) && r >= 0 && r <= 5
}
