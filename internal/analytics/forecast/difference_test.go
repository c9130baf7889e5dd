package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenter(t *testing.T) {
	z := []float64{1, 2, 3, 6}
	centered, mean := Center(z)

	assert.InDelta(t, 3.0, mean, 1e-12)
	assert.Equal(t, []float64{-2, -1, 0, 3}, centered)
	assert.Equal(t, []float64{1, 2, 3, 6}, z, "input must not be mutated")

	empty, mean := Center(nil)
	assert.Empty(t, empty)
	assert.Equal(t, 0.0, mean)
}

func TestCenterOn(t *testing.T) {
	z := []float64{1, 2, 3, 6}
	assert.Equal(t, []float64{-1, 0, 1, 4}, CenterOn(z, 2))
	assert.Equal(t, []float64{1, 2, 3, 6}, z, "input must not be mutated")
	assert.Empty(t, CenterOn(nil, 2))

	centered, mean := Center(z)
	assert.Equal(t, centered, CenterOn(z, mean))
}

func TestDifference(t *testing.T) {
	d, err := Difference([]float64{1, 4, 9, 16})
	require.NoError(t, err)

	require.Len(t, d, 4)
	assert.True(t, IsMissing(d[0]), "first position has no predecessor")
	assert.NotEqual(t, 0.0, d[0])
	assert.Equal(t, []float64{3, 5, 7}, d[1:])
}

func TestDifference_TooShort(t *testing.T) {
	for _, z := range [][]float64{nil, {1}} {
		_, err := Difference(z)
		assert.ErrorIs(t, err, ErrInsufficientHistory)
	}
}

func TestDifference_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		z    []float64
	}{
		{"two values", []float64{5, 7}},
		{"constant", []float64{3, 3, 3, 3}},
		{"negative", []float64{-1.5, 2.25, -8, 0.125, 4}},
		{"employment", employmentSeries()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			centered, mean := Center(tt.z)
			d, err := Difference(centered)
			require.NoError(t, err)

			restored := Integrate(d, centered[0], mean)
			require.Len(t, restored, len(tt.z))
			for i := range tt.z {
				assert.InDelta(t, tt.z[i], restored[i], 1e-9, "position %d", i)
			}
		})
	}
}

func TestIntegrate_SkipsMissing(t *testing.T) {
	z := Integrate([]float64{math.NaN(), 1, math.NaN(), 2}, 0, 10)
	assert.Equal(t, []float64{10, 11, 11, 13}, z)
	assert.Empty(t, Integrate(nil, 0, 0))
}

func TestValidValues(t *testing.T) {
	x, offset, err := validValues([]float64{math.NaN(), math.NaN(), 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 2, offset)
	assert.Equal(t, []float64{1, 2}, x)

	_, _, err = validValues([]float64{math.NaN(), 1, math.NaN(), 2})
	assert.ErrorIs(t, err, ErrInvalidSeries)
}
