// Package stats computes the summary statistics printed under batch reports.
package stats

import (
	"math"
	"slices"
	"time"
)

// Well-known percentile thresholds.
const (
	PercentileMedian = 0.5
	PercentileP95    = 0.95
)

// Percentile returns the p-th percentile of values using linear interpolation.
// p must be in [0, 1]. The input slice is not modified.
// Returns 0 for an empty slice.
func Percentile(values []float64, p float64) float64 {
	count := len(values)
	if count == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	idx := p * float64(count-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))

	if lower == upper || upper >= count {
		return sorted[lower]
	}

	frac := idx - float64(lower)

	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// DurationPercentile is Percentile over durations.
func DurationPercentile(values []time.Duration, p float64) time.Duration {
	nanos := make([]float64, len(values))
	for i, v := range values {
		nanos[i] = float64(v)
	}

	return time.Duration(math.Round(Percentile(nanos, p)))
}
