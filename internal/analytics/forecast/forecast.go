package forecast

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/soltixdb/arforecast/internal/analytics"
)

// DataPoint is an alias to the shared analytics.TimeSeriesPoint type.
type DataPoint = analytics.TimeSeriesPoint

// ForecastPoint represents a single level-scale forecast with its interval
type ForecastPoint struct {
	Time       time.Time `json:"time"`
	Value      float64   `json:"value"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
}

// ModelInfo contains metadata about the fitted model
type ModelInfo struct {
	Algorithm     string                 `json:"algorithm"`
	Parameters    map[string]interface{} `json:"parameters,omitempty"`
	MAPE          float64                `json:"mape,omitempty"` // Mean Absolute Percentage Error
	MAE           float64                `json:"mae,omitempty"`  // Mean Absolute Error
	RMSE          float64                `json:"rmse,omitempty"` // Root Mean Squared Error
	AIC           float64                `json:"aic"`
	LogLikelihood float64                `json:"log_likelihood"`
	LjungBox      *LjungBoxResult        `json:"ljung_box,omitempty"`
	DataPoints    int                    `json:"data_points"` // Number of data points used
}

// ForecastResult contains the forecast predictions and model information.
// Fitted and Residuals hold NaN where no fitted value exists.
type ForecastResult struct {
	Predictions  []ForecastPoint    `json:"predictions"`
	Fitted       []float64          `json:"fitted,omitempty"`
	Residuals    []float64          `json:"residuals,omitempty"`
	Coefficients map[string]float64 `json:"coefficients"`
	Model        *ARModel           `json:"model"`
	Differenced  *ARForecast        `json:"differenced"`
	ModelInfo    ModelInfo          `json:"model_info"`
}

// ForecastConfig holds configuration for forecasting
type ForecastConfig struct {
	Horizon        int           // Number of periods to forecast
	Order          int           // Autoregressive order p of the differenced series
	Method         Method        // Estimation method, css or ml
	Confidence     float64       // Confidence level for prediction intervals (0-1)
	MinDataPoints  int           // Minimum data points required
	Interval       time.Duration // Time interval between data points
	DiagnosticLags int           // Lags for the Ljung-Box residual test, 0 disables it
}

// DefaultForecastConfig returns default forecast configuration
func DefaultForecastConfig() ForecastConfig {
	return ForecastConfig{
		Horizon:        24,
		Order:          12,
		Method:         MethodCSS,
		Confidence:     0.95,
		MinDataPoints:  26,
		Interval:       30 * 24 * time.Hour,
		DiagnosticLags: 24,
	}
}

// Forecaster interface for all forecasting algorithms
type Forecaster interface {
	// Name returns the algorithm name
	Name() string
	// Forecast generates predictions for future time periods
	Forecast(data []DataPoint, config ForecastConfig) (*ForecastResult, error)
}

var registryMu sync.RWMutex

// Registry holds available forecasters
var forecasterRegistry = make(map[string]Forecaster)

// RegisterForecaster adds a forecaster to the registry
func RegisterForecaster(name string, forecaster Forecaster) {
	registryMu.Lock()
	defer registryMu.Unlock()
	forecasterRegistry[name] = forecaster
}

// GetForecaster returns a forecaster by name
func GetForecaster(name string) (Forecaster, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	if forecaster, ok := forecasterRegistry[name]; ok {
		return forecaster, nil
	}
	return nil, fmt.Errorf("unknown forecaster: %s", name)
}

// ListForecasters returns the sorted names of available forecasters
func ListForecasters() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(forecasterRegistry))
	for name := range forecasterRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CalculateMAPE calculates Mean Absolute Percentage Error.
// Pairs with a missing value or a zero actual are skipped.
func CalculateMAPE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if actual[i] == 0 || IsMissing(actual[i]) || IsMissing(predicted[i]) {
			continue
		}
		sum += math.Abs((actual[i] - predicted[i]) / actual[i])
		count++
	}

	if count == 0 {
		return 0
	}
	return (sum / float64(count)) * 100
}

// CalculateMAE calculates Mean Absolute Error over pairs without missing values
func CalculateMAE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if IsMissing(actual[i]) || IsMissing(predicted[i]) {
			continue
		}
		sum += math.Abs(actual[i] - predicted[i])
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// CalculateRMSE calculates Root Mean Squared Error over pairs without missing values
func CalculateRMSE(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) == 0 {
		return 0
	}

	sum := 0.0
	count := 0
	for i := range actual {
		if IsMissing(actual[i]) || IsMissing(predicted[i]) {
			continue
		}
		diff := actual[i] - predicted[i]
		sum += diff * diff
		count++
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(count))
}
