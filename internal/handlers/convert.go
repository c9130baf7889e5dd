package handlers

import (
	"time"

	"github.com/soltixdb/arforecast/internal/analytics/forecast"
	"github.com/soltixdb/arforecast/internal/models"
	"github.com/soltixdb/arforecast/internal/services"
	"github.com/soltixdb/arforecast/internal/storage"
	"github.com/soltixdb/arforecast/internal/utils"
)

func toPredictions(points []forecast.ForecastPoint) []models.PredictionResponse {
	out := make([]models.PredictionResponse, len(points))
	for i, p := range points {
		out[i] = models.PredictionResponse{
			Time:       p.Time.Format(time.RFC3339),
			Value:      p.Value,
			LowerBound: p.LowerBound,
			UpperBound: p.UpperBound,
		}
	}
	return out
}

// jsonSafeInfo zeroes diagnostics that came out non-finite, as happens for
// a perfect fit with constant residuals.
func jsonSafeInfo(info forecast.ModelInfo) forecast.ModelInfo {
	if info.LjungBox != nil {
		lb := *info.LjungBox
		lb.Statistic = utils.FiniteOrZero(lb.Statistic)
		lb.PValue = utils.FiniteOrZero(lb.PValue)
		info.LjungBox = &lb
	}
	return info
}

func toForecastResponse(resp *services.ForecastResponse) models.ForecastResponse {
	r := resp.Result
	return models.ForecastResponse{
		ModelID:      resp.ModelID,
		Forecaster:   resp.Forecaster,
		Cached:       resp.Cached,
		Saved:        resp.Saved,
		CreatedAt:    resp.CreatedAt.Format(time.RFC3339),
		Predictions:  toPredictions(r.Predictions),
		Coefficients: r.Coefficients,
		Model:        r.Model,
		Fitted:       utils.ToNullable(r.Fitted),
		Residuals:    utils.ToNullable(r.Residuals),
		Differenced:  r.Differenced,
		ModelInfo:    jsonSafeInfo(r.ModelInfo),
		Outliers:     resp.Outliers,
	}
}

func toBatchResponse(items []services.BatchItem) models.BatchResponse {
	out := models.BatchResponse{
		Results: make([]models.BatchItemResponse, len(items)),
		Count:   len(items),
	}
	for i, item := range items {
		r := models.BatchItemResponse{Index: item.Index}
		if item.Error != nil {
			r.Error = &models.ErrorDetail{
				Code:    item.Error.Code,
				Message: item.Error.Message,
				Details: item.Error.Details,
			}
			out.Failed++
		} else {
			fr := toForecastResponse(item.Response)
			r.Forecast = &fr
		}
		out.Results[i] = r
	}
	return out
}

func toModelResponse(snap *storage.ModelSnapshot) models.ModelResponse {
	return models.ModelResponse{
		ID:          snap.ID,
		Forecaster:  snap.Forecaster,
		CreatedAt:   snap.CreatedAt.Format(time.RFC3339),
		LastTime:    snap.LastTime.Format(time.RFC3339),
		Interval:    snap.Interval.String(),
		Confidence:  snap.Confidence,
		Model:       snap.Model,
		Predictions: toPredictions(snap.Predictions),
		ModelInfo:   jsonSafeInfo(snap.ModelInfo),
	}
}
