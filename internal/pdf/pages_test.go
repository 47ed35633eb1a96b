package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePageRange(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		total   int
		want    []int
		wantErr bool
	}{
		{"empty means all", "", 5, nil, false},
		{"single", "3", 5, []int{3}, false},
		{"range", "1-3", 5, []int{1, 2, 3}, false},
		{"mixed unsorted with dupes", "5, 1-2,2", 5, []int{1, 2, 5}, false},
		{"unbounded total", "10", 0, []int{10}, false},
		{"out of range", "6", 5, nil, true},
		{"zero", "0", 5, nil, true},
		{"reversed", "3-1", 5, nil, true},
		{"garbage", "a", 5, nil, true},
		{"bad range", "1-2-3", 5, nil, true},
		{"range past the end", "4-6", 5, nil, true},
		{"huge range", "1-2000000000", 3, nil, true},
		{"huge range without total", "1-2000000000", 0, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePageRange(tt.in, tt.total)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePageRangeDoesNotExpandOutOfRangeSpans(t *testing.T) {
	allocs := testing.AllocsPerRun(5, func() {
		_, _ = ParsePageRange("1-2000000000", 3)
	})
	// A handful of small allocations for splitting and the error message.
	assert.Less(t, allocs, 20.0)

	_, err := ParsePageRange("2-100000000", 3)
	require.ErrorContains(t, err, "page 100000000 out of range (document has 3 pages)")
}
