package forecast

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepSeries jumps once and then stays flat, so an AR(1) on its differences
// fits with zero residual variance.
func stepSeries(n int) []float64 {
	z := make([]float64, n)
	for i := 1; i < n; i++ {
		z[i] = 5
	}
	return z
}

func TestARModelJSON_PerfectFit(t *testing.T) {
	centered, _ := Center(stepSeries(40))
	d, err := Difference(centered)
	require.NoError(t, err)

	model, err := EstimateAR(d, 1, MethodCSS)
	require.NoError(t, err)
	require.Equal(t, 0.0, model.Sigma2)
	require.True(t, math.IsInf(model.LogLikelihood, 1))
	require.True(t, math.IsInf(model.AIC, -1))

	raw, err := json.Marshal(model)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "aic")
	assert.Nil(t, fields["aic"])
	assert.Nil(t, fields["log_likelihood"])
	assert.Equal(t, 1.0, fields["order"])

	var back ARModel
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, model.Coefficients, back.Coefficients)
	assert.True(t, math.IsInf(back.LogLikelihood, 1))
	assert.True(t, math.IsInf(back.AIC, -1))
}

func TestARModelJSON_Finite(t *testing.T) {
	model := &ARModel{
		Order:         2,
		Coefficients:  []float64{0.5, -0.2},
		Sigma2:        1.5,
		Method:        MethodML,
		LogLikelihood: -120.25,
		AIC:           246.5,
		NObs:          99,
		Mean:          3,
	}
	raw, err := json.Marshal(model)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"aic":246.5`)

	var back ARModel
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, *model, back)

	t.Run("null on an imperfect fit is undefined", func(t *testing.T) {
		var m ARModel
		require.NoError(t, json.Unmarshal([]byte(`{"order":1,"coefficients":[0.1],"sigma2":2,"aic":null}`), &m))
		assert.True(t, math.IsNaN(m.AIC))
		assert.True(t, math.IsNaN(m.LogLikelihood))
	})
}

func TestModelInfoJSON(t *testing.T) {
	info := ModelInfo{
		Algorithm:     "arima",
		Parameters:    map[string]interface{}{"p": 1, "sigma2": 0.0},
		AIC:           math.Inf(-1),
		LogLikelihood: math.Inf(1),
		DataPoints:    40,
	}
	raw, err := json.Marshal(info)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"aic":null`)
	assert.Contains(t, string(raw), `"log_likelihood":null`)

	var back ModelInfo
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "arima", back.Algorithm)
	assert.Equal(t, 40, back.DataPoints)
	assert.True(t, math.IsInf(back.AIC, -1))
	assert.True(t, math.IsInf(back.LogLikelihood, 1))
}

func TestARIMAForecaster_PerfectFitEncodes(t *testing.T) {
	f, err := GetForecaster("arima")
	require.NoError(t, err)

	result, err := f.Forecast(toDataPoints(stepSeries(40)), ForecastConfig{
		Horizon:        4,
		Order:          1,
		Confidence:     0.95,
		MinDataPoints:  10,
		DiagnosticLags: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Model.Sigma2)

	_, err = json.Marshal(result.Model)
	assert.NoError(t, err)
	_, err = json.Marshal(result.ModelInfo)
	assert.NoError(t, err)
	for _, p := range result.Predictions {
		assert.InDelta(t, 5.0, p.Value, 1e-9)
		assert.InDelta(t, p.Value, p.LowerBound, 1e-9)
	}
}
