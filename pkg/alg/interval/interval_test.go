package interval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/astmatch/pkg/alg/interval"
)

type span = interval.Interval[int, string]

func sampleTree() *interval.Tree[int, string] {
	return interval.Build([]span{
		{Low: 30, High: 40, Value: "c"},
		{Low: 10, High: 20, Value: "a"},
		{Low: 0, High: 100, Value: "root"},
		{Low: 15, High: 25, Value: "b"},
		{Low: 12, High: 14, Value: "a1"},
	})
}

func values(items []span) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Value)
	}

	return out
}

func TestBuild_Empty(t *testing.T) {
	t.Parallel()

	tree := interval.Build[int, string](nil)
	assert.Nil(t, tree.QueryOverlap(0, 10))
	assert.Nil(t, tree.QueryContained(0, 10))
}

func TestBuild_SortsByLowThenHigh(t *testing.T) {
	t.Parallel()

	all := sampleTree().QueryOverlap(0, 100)
	require.Len(t, all, 5)
	assert.Equal(t, []string{"root", "a", "a1", "b", "c"}, values(all))
}

func TestQueryOverlap(t *testing.T) {
	t.Parallel()

	tree := sampleTree()

	tests := []struct {
		name      string
		low, high int
		want      []string
	}{
		{"inside a1", 13, 13, []string{"root", "a", "a1"}},
		{"between b and c", 26, 29, []string{"root"}},
		{"touches c start", 25, 30, []string{"root", "b", "c"}},
		{"past everything", 101, 200, nil},
		{"inverted range", 20, 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tree.QueryOverlap(tt.low, tt.high)
			if tt.want == nil {
				assert.Empty(t, got)

				return
			}

			assert.Equal(t, tt.want, values(got))
		})
	}
}

func TestQueryContained(t *testing.T) {
	t.Parallel()

	tree := sampleTree()

	assert.Equal(t, []string{"a", "a1"}, values(tree.QueryContained(10, 20)))
	assert.Equal(t, []string{"a", "a1", "b"}, values(tree.QueryContained(10, 25)))
	assert.Equal(t, []string{"root", "a", "a1", "b", "c"}, values(tree.QueryContained(0, 100)))
	assert.Empty(t, tree.QueryContained(11, 13))
	assert.Empty(t, tree.QueryContained(20, 10))
}

func TestQueryOverlap_MatchesBruteForce(t *testing.T) {
	t.Parallel()

	items := make([]span, 0, 200)
	for i := range 200 {
		low := (i * 37) % 500
		items = append(items, span{Low: low, High: low + i%23, Value: string(rune('a' + i%26))})
	}

	tree := interval.Build(items)

	for q := 0; q < 520; q += 7 {
		want, contained := 0, 0

		for _, it := range items {
			if it.Low <= q+5 && it.High >= q {
				want++
			}

			if it.Low >= q && it.High <= q+5 {
				contained++
			}
		}

		assert.Len(t, tree.QueryOverlap(q, q+5), want, "query [%d,%d]", q, q+5)
		assert.Len(t, tree.QueryContained(q, q+5), contained, "contained [%d,%d]", q, q+5)
	}
}
