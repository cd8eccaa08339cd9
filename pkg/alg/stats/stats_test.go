package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/astmatch/pkg/alg/stats"
)

func TestPercentile(t *testing.T) {
	t.Parallel()

	values := []float64{4, 1, 3, 2}

	assert.InDelta(t, 2.5, stats.Percentile(values, stats.PercentileMedian), 1e-9)
	assert.InDelta(t, 3.85, stats.Percentile(values, stats.PercentileP95), 1e-9)
	assert.InDelta(t, 1.0, stats.Percentile(values, 0), 1e-9)
	assert.Equal(t, []float64{4, 1, 3, 2}, values, "input must stay unsorted")
	assert.Zero(t, stats.Percentile(nil, 0.5))
}

func TestDurationPercentile(t *testing.T) {
	t.Parallel()

	got := stats.DurationPercentile([]time.Duration{time.Millisecond, 3 * time.Millisecond}, stats.PercentileMedian)

	assert.InDelta(t, float64(2*time.Millisecond), float64(got), float64(time.Microsecond))
}
