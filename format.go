// ABOUTME: Minimal precision formatting for fitness values
// ABOUTME: Formats float64 pairs with just enough digits to show the difference

package main

import (
	"fmt"
	"math"
)

const (
	minDisplayPrecision = 2
	maxDisplayPrecision = 10
)

// FormatWithMonotonicPrecision formats curr with enough digits to distinguish it from prev,
// never using fewer than minPrecision digits. It returns the string and the precision used,
// which callers feed back in so that printed precision never shrinks during a run.
func FormatWithMonotonicPrecision(prev, curr float64, minPrecision int) (string, int) {
	precision := max(minPrecision, minimalPrecision(prev, curr), minDisplayPrecision)
	precision = min(precision, maxDisplayPrecision)

	return fmt.Sprintf("%.*f", precision, curr), precision
}

// minimalPrecision returns the digits needed to tell prev and curr apart plus one for clarity
func minimalPrecision(prev, curr float64) int {
	if math.IsNaN(prev) || math.IsNaN(curr) || math.IsInf(prev, 0) || math.IsInf(curr, 0) || prev == curr {
		return minDisplayPrecision
	}

	for precision := 1; precision <= maxDisplayPrecision; precision++ {
		if fmt.Sprintf("%.*f", precision, prev) != fmt.Sprintf("%.*f", precision, curr) {
			return min(precision+1, maxDisplayPrecision)
		}
	}

	return maxDisplayPrecision
}
