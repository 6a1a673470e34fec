package search

import (
	"errors"
	"fmt"
	"math"
)

// Raised (as a panic) when two interpreted scores cannot be ordered
var ErrIncomparable = errors.New("search: incomparable evaluation scores")

// Returns true if 'a' is strictly better than 'b', panics if any of them is NaN
func better(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		panic(fmt.Errorf("%w: %v vs %v", ErrIncomparable, a, b))
	}
	return a > b
}

func mustScore(score float64) float64 {
	if math.IsNaN(score) {
		panic(fmt.Errorf("%w: NaN score", ErrIncomparable))
	}
	return score
}
