package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandDifferenced(t *testing.T) {
	tests := []struct {
		name   string
		coeffs []float64
		want   []float64
	}{
		{"ar1", []float64{0.4}, []float64{1.4, -0.4}},
		{"ar2", []float64{0.5, 0.2}, []float64{1.5, -0.3, -0.2}},
		{"zero", []float64{0, 0, 0}, []float64{1, 0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandDifferenced(tt.coeffs)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestReconstruct_ZeroCoefficientsGiveRandomWalk(t *testing.T) {
	z, _ := Center(employmentSeries())
	coeffs := make([]float64, 12)

	rec, err := Reconstruct(coeffs, z)
	require.NoError(t, err)
	require.Len(t, rec.Fitted, len(z))

	for t0 := 0; t0 < 13; t0++ {
		assert.True(t, IsMissing(rec.Fitted[t0]), "fitted[%d] should be undefined", t0)
		assert.True(t, IsMissing(rec.Residuals[t0]))
	}
	for t0 := 13; t0 < len(z); t0++ {
		assert.Equal(t, z[t0-1], rec.Fitted[t0], "fitted[%d]", t0)
	}
	assert.Equal(t, z[len(z)-1], rec.Next)
}

func TestReconstruct_MatchesDifferencedPrediction(t *testing.T) {
	z, _ := Center(employmentSeries())
	coeffs := []float64{0.3, -0.2, 0.1}
	p := len(coeffs)

	rec, err := Reconstruct(coeffs, z)
	require.NoError(t, err)

	for t0 := p + 1; t0 < len(z); t0++ {
		want := z[t0-1]
		for k := 1; k <= p; k++ {
			want += coeffs[k-1] * (z[t0-k] - z[t0-k-1])
		}
		assert.InDelta(t, want, rec.Fitted[t0], 1e-9, "fitted[%d]", t0)
		assert.InDelta(t, z[t0]-rec.Fitted[t0], rec.Residuals[t0], 1e-12)
	}
}

func TestReconstruct_NextMatchesOneStepForecast(t *testing.T) {
	z, _ := Center(employmentSeries())
	d, err := Difference(z)
	require.NoError(t, err)

	model, err := EstimateAR(d, 12, MethodCSS)
	require.NoError(t, err)

	rec, err := Reconstruct(model.Coefficients, z)
	require.NoError(t, err)
	fc, err := ForecastAR(model, d, 1, 0.95)
	require.NoError(t, err)

	assert.InDelta(t, z[len(z)-1]+fc.Forecast[0], rec.Next, 1e-9)
}

func TestReconstruct_ShortSeries(t *testing.T) {
	rec, err := Reconstruct([]float64{0.5, 0.1}, []float64{1, 2})
	require.NoError(t, err)

	assert.True(t, IsMissing(rec.Fitted[0]))
	assert.True(t, IsMissing(rec.Fitted[1]))
	assert.True(t, IsMissing(rec.Next))
}

func TestReconstruct_MissingInputPropagates(t *testing.T) {
	z := []float64{1, 2, math.NaN(), 4, 5, 6, 7}
	rec, err := Reconstruct([]float64{0.5}, z)
	require.NoError(t, err)

	// fitted[t] uses z[t-1] and z[t-2]
	assert.True(t, IsMissing(rec.Fitted[3]))
	assert.True(t, IsMissing(rec.Fitted[4]))
	assert.False(t, IsMissing(rec.Fitted[5]))
	assert.InDelta(t, 1.5*5-0.5*4, rec.Fitted[5], 1e-12)
}

func TestReconstruct_InvalidCoefficients(t *testing.T) {
	_, err := Reconstruct(nil, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidModel)

	_, err = Reconstruct([]float64{math.NaN()}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidModel)
}
