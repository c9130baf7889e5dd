package forecast

import (
	"fmt"
	"math"
)

// ARForecast is an h-step forecast of the differenced series.
type ARForecast struct {
	Horizon    int       `json:"horizon"`
	Confidence float64   `json:"confidence"`
	Z          float64   `json:"z"`
	Sigma2     float64   `json:"sigma2"`
	Forecast   []float64 `json:"forecast"`
	Psi        []float64 `json:"psi"`
	Variance   []float64 `json:"variance"`
	Lower      []float64 `json:"lower"`
	Upper      []float64 `json:"upper"`
}

// LevelForecast is an ARForecast integrated back to the level scale.
type LevelForecast struct {
	Values   []float64 `json:"values"`
	Variance []float64 `json:"variance"`
	Lower    []float64 `json:"lower"`
	Upper    []float64 `json:"upper"`
}

// ForecastAR forecasts h steps of the differenced series d. Lags inside the
// sample use observed values; lags beyond it use earlier forecasts.
func ForecastAR(model *ARModel, d []float64, h int, confidence float64) (*ARForecast, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if h <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d: %w", h, ErrInvalidHorizon)
	}
	z, err := NormalQuantile(confidence)
	if err != nil {
		return nil, err
	}

	history, _, err := validValues(d)
	if err != nil {
		return nil, err
	}
	p := model.Order
	if len(history) < p {
		return nil, fmt.Errorf("forecasting AR(%d) needs %d observations, got %d: %w",
			p, p, len(history), ErrInsufficientHistory)
	}

	ext := make([]float64, p+h)
	copy(ext, history[len(history)-p:])
	points := make([]float64, h)
	for j := 0; j < h; j++ {
		t := p + j
		sum := 0.0
		for k := 0; k < p; k++ {
			sum += model.Coefficients[k] * ext[t-1-k]
		}
		ext[t] = sum
		points[j] = sum
	}

	psi, err := PsiWeights(model.Coefficients, h)
	if err != nil {
		return nil, err
	}
	variance, err := ForecastVariance(psi, model.Sigma2)
	if err != nil {
		return nil, err
	}

	lower, upper := intervalBounds(points, variance, z)
	return &ARForecast{
		Horizon:    h,
		Confidence: confidence,
		Z:          z,
		Sigma2:     model.Sigma2,
		Forecast:   points,
		Psi:        psi,
		Variance:   variance,
		Lower:      lower,
		Upper:      upper,
	}, nil
}

// Levels integrates the forecast starting from the last observed level.
// The level-scale psi weights are the running sums of the differenced ones.
func (f *ARForecast) Levels(last float64) (*LevelForecast, error) {
	if len(f.Forecast) == 0 {
		return nil, fmt.Errorf("empty forecast: %w", ErrInvalidHorizon)
	}

	values := make([]float64, len(f.Forecast))
	levelPsi := make([]float64, len(f.Psi))
	level, run := last, 0.0
	for j := range f.Forecast {
		level += f.Forecast[j]
		values[j] = level
		run += f.Psi[j]
		levelPsi[j] = run
	}

	variance, err := ForecastVariance(levelPsi, f.Sigma2)
	if err != nil {
		return nil, err
	}
	lower, upper := intervalBounds(values, variance, f.Z)
	return &LevelForecast{
		Values:   values,
		Variance: variance,
		Lower:    lower,
		Upper:    upper,
	}, nil
}

func intervalBounds(points, variance []float64, z float64) ([]float64, []float64) {
	lower := make([]float64, len(points))
	upper := make([]float64, len(points))
	for j, v := range points {
		margin := z * math.Sqrt(variance[j])
		lower[j] = v - margin
		upper[j] = v + margin
	}
	return lower, upper
}

// ForecastFromLevels forecasts h steps from the trailing level observations
// of the series a model was fitted to, so a stored model can be extended
// without its full history. tail needs at least Order+1 finite values. The
// model's Mean is removed before differencing and restored on the result.
func ForecastFromLevels(model *ARModel, tail []float64, h int, confidence float64) (*ARForecast, *LevelForecast, error) {
	if err := model.Validate(); err != nil {
		return nil, nil, err
	}
	if len(tail) < model.Order+1 {
		return nil, nil, fmt.Errorf("forecasting AR(%d) from levels needs %d observations, got %d: %w",
			model.Order, model.Order+1, len(tail), ErrInsufficientHistory)
	}

	for i, v := range tail {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, nil, fmt.Errorf("level at position %d is not finite: %w", i, ErrInvalidSeries)
		}
	}
	centered := CenterOn(tail, model.Mean)

	d, err := Difference(centered)
	if err != nil {
		return nil, nil, err
	}
	fc, err := ForecastAR(model, d, h, confidence)
	if err != nil {
		return nil, nil, err
	}
	levels, err := fc.Levels(centered[len(centered)-1])
	if err != nil {
		return nil, nil, err
	}

	for j := range levels.Values {
		levels.Values[j] += model.Mean
		levels.Lower[j] += model.Mean
		levels.Upper[j] += model.Mean
	}
	return fc, levels, nil
}
