// Package rating derives review statistics for products.
package rating

import "github.com/tuanvumaihuynh/storefront-catalog/internal/model"

// Bounds of a review rating, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

// Summarize averages integer ratings rounded half up to one decimal place.
//
// The rounding is done in integer arithmetic so the result matches the
// ROUND(AVG(rating), 1) computed by the database for the list query; a float
// division would turn ties such as 2.35 into 2.3.
func Summarize(ratings []int) model.RatingSummary {
	n := len(ratings)
	if n == 0 {
		return model.RatingSummary{}
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}

	// round(10*sum/n) half up == floor((20*sum + n) / (2n)) for non-negative sums
	tenths := (20*sum + n) / (2 * n)

	return model.RatingSummary{
		AverageRating: float64(tenths) / 10,
		TotalReviews:  n,
	}
}

// Valid reports whether r is an allowed rating value.
func Valid(r int) bool {
	return r >= MinRating && r <= MaxRating
}
