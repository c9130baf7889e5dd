package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromValues(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	ts := FromValues([]float64{1, 2, 3}, start, 24*time.Hour)

	assert.Equal(t, 3, ts.Len())
	assert.Equal(t, []float64{1, 2, 3}, ts.Values())
	assert.Equal(t, start.Add(48*time.Hour), ts.Times()[2])
}

func TestTimeSeriesData_MeanSkipsMissing(t *testing.T) {
	ts := FromValues([]float64{math.NaN(), 2, 4}, time.Time{}, time.Hour)
	assert.InDelta(t, 3.0, ts.Mean(), 1e-12)

	var empty TimeSeriesData
	assert.Equal(t, 0.0, empty.Mean())
}

func TestCountMissing(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		leading int
		total   int
	}{
		{"none", []float64{1, 2}, 0, 0},
		{"leading only", []float64{math.NaN(), math.NaN(), 3}, 2, 2},
		{"leading and inner", []float64{math.NaN(), 1, math.NaN()}, 1, 2},
		{"empty", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			leading, total := CountMissing(tt.values)
			assert.Equal(t, tt.leading, leading)
			assert.Equal(t, tt.total, total)
		})
	}
}

func TestMissingMarker(t *testing.T) {
	assert.True(t, IsMissing(Missing()))
	assert.False(t, IsMissing(0))
}
