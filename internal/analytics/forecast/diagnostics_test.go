package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestACF(t *testing.T) {
	acf := ACF([]float64{math.NaN(), 1, 2, 3, 4, 5}, 2)
	require.Len(t, acf, 3)

	// mean 3, denominator 10
	assert.Equal(t, 1.0, acf[0])
	assert.InDelta(t, 0.4, acf[1], 1e-12)
	assert.InDelta(t, -0.1, acf[2], 1e-12)
}

func TestACF_EdgeCases(t *testing.T) {
	assert.Nil(t, ACF([]float64{1}, 3))
	assert.Nil(t, ACF([]float64{1, 2}, -1))
	assert.Equal(t, []float64{1, 0}, ACF([]float64{2, 2, 2}, 1))
	assert.Len(t, ACF([]float64{1, 2, 3}, 10), 3)
}

func TestLjungBox(t *testing.T) {
	tests := []struct {
		name      string
		residuals []float64
		check     func(t *testing.T, r *LjungBoxResult)
	}{
		{
			name:      "white noise",
			residuals: simulateAR(nil, 500, 21),
			check: func(t *testing.T, r *LjungBoxResult) {
				assert.GreaterOrEqual(t, r.PValue, 0.0)
				assert.LessOrEqual(t, r.PValue, 1.0)
			},
		},
		{
			name:      "strong autocorrelation",
			residuals: simulateAR([]float64{0.9}, 500, 21),
			check: func(t *testing.T, r *LjungBoxResult) {
				assert.Less(t, r.PValue, 0.01)
				assert.Greater(t, r.Statistic, 100.0)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := LjungBox(tt.residuals, 10, 2)
			require.NoError(t, err)
			assert.Equal(t, 10, result.Lags)
			assert.Equal(t, 8, result.DOF)
			tt.check(t, result)
		})
	}
}

func TestLjungBox_Errors(t *testing.T) {
	_, err := LjungBox([]float64{1, 2, 3}, 5, 0)
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	_, err = LjungBox(simulateAR(nil, 100, 1), 0, 0)
	assert.ErrorIs(t, err, ErrInsufficientHistory)

	_, err = LjungBox(simulateAR(nil, 100, 1), 12, 12)
	assert.ErrorIs(t, err, ErrInvalidModel)
}
