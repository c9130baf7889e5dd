package models

import (
	"github.com/soltixdb/arforecast/internal/analytics/anomaly"
	"github.com/soltixdb/arforecast/internal/analytics/forecast"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status      string   `json:"status"`
	Timestamp   string   `json:"timestamp"`
	Version     string   `json:"version"`
	Forecasters []string `json:"forecasters,omitempty"`
}

// PredictionResponse is one forecast step on the level scale
type PredictionResponse struct {
	Time       string  `json:"time"`
	Value      float64 `json:"value"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// ForecastResponse represents the result of a fit. Fitted and Residuals are
// null where the model has no fitted value.
type ForecastResponse struct {
	ModelID      string               `json:"model_id"`
	Forecaster   string               `json:"forecaster"`
	Cached       bool                 `json:"cached"`
	Saved        bool                 `json:"saved"`
	CreatedAt    string               `json:"created_at"`
	Predictions  []PredictionResponse `json:"predictions"`
	Coefficients map[string]float64   `json:"coefficients"`
	Model        *forecast.ARModel    `json:"model"`
	Fitted       []*float64           `json:"fitted"`
	Residuals    []*float64           `json:"residuals"`
	Differenced  *forecast.ARForecast `json:"differenced"`
	ModelInfo    forecast.ModelInfo   `json:"model_info"`
	Outliers     []anomaly.Outlier    `json:"outliers,omitempty"`
}

// BatchItemResponse is one result of a batch, either a forecast or an error
type BatchItemResponse struct {
	Index    int               `json:"index"`
	Forecast *ForecastResponse `json:"forecast,omitempty"`
	Error    *ErrorDetail      `json:"error,omitempty"`
}

// BatchResponse lists batch results in request order
type BatchResponse struct {
	Results []BatchItemResponse `json:"results"`
	Count   int                 `json:"count"`
	Failed  int                 `json:"failed"`
}

// ModelResponse describes a stored model
type ModelResponse struct {
	ID          string               `json:"id"`
	Forecaster  string               `json:"forecaster"`
	CreatedAt   string               `json:"created_at"`
	LastTime    string               `json:"last_time"`
	Interval    string               `json:"interval"`
	Confidence  float64              `json:"confidence"`
	Model       *forecast.ARModel    `json:"model"`
	Predictions []PredictionResponse `json:"predictions"`
	ModelInfo   forecast.ModelInfo   `json:"model_info"`
}

// ModelListResponse represents list models response
type ModelListResponse struct {
	Models []string `json:"models"`
	Count  int      `json:"count"`
}

// ModelForecastResponse is a forecast produced from a stored model
type ModelForecastResponse struct {
	ModelID     string               `json:"model_id"`
	Horizon     int                  `json:"horizon"`
	Confidence  float64              `json:"confidence"`
	Predictions []PredictionResponse `json:"predictions"`
	Differenced *forecast.ARForecast `json:"differenced"`
}

// ForecasterListResponse lists the registered forecasters
type ForecasterListResponse struct {
	Forecasters []string `json:"forecasters"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
