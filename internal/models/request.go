package models

// ForecastRequest is the body of POST /v1/forecast. The series comes either
// from Values, evenly spaced from Start by Interval, or from Points. A null
// value marks a missing observation.
type ForecastRequest struct {
	Forecaster string       `json:"forecaster,omitempty"` // arima (default), arima_ml
	Values     []*float64   `json:"values,omitempty"`
	Start      string       `json:"start,omitempty"`    // RFC3339, defaults to the epoch
	Interval   string       `json:"interval,omitempty"` // Go duration or 1m, 1h, 1d, 1w, 1mo
	Points     []PointInput `json:"points,omitempty"`
	Horizon    int          `json:"horizon,omitempty"`
	Order      int          `json:"order,omitempty"`
	Method     string       `json:"method,omitempty"` // css or ml
	Confidence float64      `json:"confidence,omitempty"`
	Outliers   string       `json:"outliers,omitempty"` // zscore, iqr or none
	Save       bool         `json:"save,omitempty"`
}

// BatchRequest is the body of POST /v1/forecast/batch
type BatchRequest struct {
	Requests []ForecastRequest `json:"requests"`
}

// PointInput is a single timestamped observation
type PointInput struct {
	Time  string   `json:"time"`
	Value *float64 `json:"value"`
}

// HasSeries reports whether the request carries any observations
func (r *ForecastRequest) HasSeries() bool {
	return len(r.Values) > 0 || len(r.Points) > 0
}
