package forecast

import (
	"fmt"
	"math"
	"time"
)

// ARIMAForecaster fits ARIMA(p, 1, 0): an AR(p) model on the first difference
// of the mean-centered series, with no intercept.
type ARIMAForecaster struct {
	name   string
	Order  int    // AR order p
	Method Method // Estimation method
}

// NewARIMAForecaster creates a CSS forecaster with the seasonal order 12
func NewARIMAForecaster() *ARIMAForecaster {
	return &ARIMAForecaster{name: "arima", Order: 12, Method: MethodCSS}
}

// NewARIMAForecasterWithParams creates an ARIMA forecaster with custom parameters
func NewARIMAForecasterWithParams(order int, method Method) *ARIMAForecaster {
	return &ARIMAForecaster{name: "arima", Order: order, Method: method}
}

func init() {
	RegisterForecaster("arima", NewARIMAForecaster())
	RegisterForecaster("arima_ml", &ARIMAForecaster{name: "arima_ml", Order: 12, Method: MethodML})
}

// Name returns the algorithm name
func (f *ARIMAForecaster) Name() string {
	if f.name == "" {
		return "arima"
	}
	return f.name
}

// Forecast runs difference, estimate, reconstruct and forecast over data.
// Non-zero Order and Method in config override the forecaster's own.
func (f *ARIMAForecaster) Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error) {
	order := f.Order
	if config.Order > 0 {
		order = config.Order
	}
	method := f.Method
	if config.Method != "" {
		method = config.Method
	}
	if config.Horizon <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d: %w", config.Horizon, ErrInvalidHorizon)
	}
	if len(data) < config.MinDataPoints {
		return nil, fmt.Errorf("need at least %d data points, got %d: %w",
			config.MinDataPoints, len(data), ErrInsufficientHistory)
	}

	values := make([]float64, len(data))
	for i, dp := range data {
		if math.IsNaN(dp.Value) || math.IsInf(dp.Value, 0) {
			return nil, fmt.Errorf("value at %s is not finite: %w", dp.Time.Format(time.RFC3339), ErrInvalidSeries)
		}
		values[i] = dp.Value
	}

	centered, mean := Center(values)
	diffed, err := Difference(centered)
	if err != nil {
		return nil, err
	}

	model, err := EstimateAR(diffed, order, method)
	if err != nil {
		return nil, err
	}
	model.Mean = mean

	rec, err := Reconstruct(model.Coefficients, centered)
	if err != nil {
		return nil, err
	}

	fc, err := ForecastAR(model, diffed, config.Horizon, config.Confidence)
	if err != nil {
		return nil, err
	}
	levels, err := fc.Levels(centered[len(centered)-1])
	if err != nil {
		return nil, err
	}

	interval := config.Interval
	if interval <= 0 {
		interval = inferInterval(data)
	}
	lastTime := data[len(data)-1].Time
	predictions := make([]ForecastPoint, config.Horizon)
	for j := range predictions {
		predictions[j] = ForecastPoint{
			Time:       lastTime.Add(time.Duration(j+1) * interval),
			Value:      levels.Values[j] + mean,
			LowerBound: levels.Lower[j] + mean,
			UpperBound: levels.Upper[j] + mean,
		}
	}

	fitted := make([]float64, len(rec.Fitted))
	for i, v := range rec.Fitted {
		fitted[i] = v + mean
	}

	info := ModelInfo{
		Algorithm: f.Name(),
		Parameters: map[string]interface{}{
			"p":      order,
			"d":      1,
			"q":      0,
			"method": string(method),
			"sigma2": model.Sigma2,
		},
		MAPE:          CalculateMAPE(values, fitted),
		MAE:           CalculateMAE(values, fitted),
		RMSE:          CalculateRMSE(values, fitted),
		AIC:           model.AIC,
		LogLikelihood: model.LogLikelihood,
		DataPoints:    len(data),
	}
	if config.DiagnosticLags > 0 {
		// A failed diagnostic never fails the forecast.
		if lb, err := LjungBox(rec.Residuals, config.DiagnosticLags, order); err == nil {
			info.LjungBox = lb
		}
	}

	return &ForecastResult{
		Predictions:  predictions,
		Fitted:       fitted,
		Residuals:    rec.Residuals,
		Coefficients: model.CoefficientTable(),
		Model:        model,
		Differenced:  fc,
		ModelInfo:    info,
	}, nil
}

// inferInterval takes the spacing of the last two points, defaulting to one hour.
func inferInterval(data []DataPoint) time.Duration {
	if len(data) >= 2 {
		if step := data[len(data)-1].Time.Sub(data[len(data)-2].Time); step > 0 {
			return step
		}
	}
	return time.Hour
}
