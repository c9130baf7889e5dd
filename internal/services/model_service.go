package services

import (
	"context"
	"time"

	"github.com/soltixdb/arforecast/internal/analytics/forecast"
	"github.com/soltixdb/arforecast/internal/cache"
	"github.com/soltixdb/arforecast/internal/storage"
)

// ModelForecast is a forecast produced from a stored model
type ModelForecast struct {
	ModelID     string                   `json:"model_id"`
	Horizon     int                      `json:"horizon"`
	Confidence  float64                  `json:"confidence"`
	Predictions []forecast.ForecastPoint `json:"predictions"`
	Differenced *forecast.ARForecast     `json:"differenced"`
}

func (s *ForecastService) requireStore() error {
	if s.store == nil {
		return NewServiceError(CodeModelNotFound, "model persistence is disabled")
	}
	return nil
}

// GetModel returns a stored model snapshot
func (s *ForecastService) GetModel(ctx context.Context, id string) (*storage.ModelSnapshot, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}
	snap, err := s.store.Load(ctx, id)
	s.metrics.ObserveStore("load", err)
	if err != nil {
		return nil, classify(err)
	}
	return snap, nil
}

// ListModels returns the IDs of all stored models
func (s *ForecastService) ListModels(ctx context.Context) ([]string, error) {
	if s.store == nil {
		return []string{}, nil
	}
	ids, err := s.store.List(ctx)
	s.metrics.ObserveStore("list", err)
	if err != nil {
		return nil, classify(err)
	}
	return ids, nil
}

// DeleteModel removes a stored model
func (s *ForecastService) DeleteModel(ctx context.Context, id string) error {
	if err := s.requireStore(); err != nil {
		return err
	}
	err := s.store.Delete(ctx, id)
	s.metrics.ObserveStore("delete", err)
	if err != nil {
		return classify(err)
	}
	s.logger.WithContext(ctx).Info("Model deleted", "model_id", id)
	return nil
}

// ForecastModel extends a stored model by horizon steps from the end of the
// series it was fitted to. Zero horizon and confidence take the values the
// model was saved with.
func (s *ForecastService) ForecastModel(ctx context.Context, id string, horizon int, confidence float64) (*ModelForecast, error) {
	snap, err := s.GetModel(ctx, id)
	if err != nil {
		return nil, err
	}

	if horizon == 0 {
		horizon = len(snap.Predictions)
	}
	if horizon < 1 || (s.defaults.MaxHorizon > 0 && horizon > s.defaults.MaxHorizon) {
		return nil, NewServiceErrorWithDetails(CodeInvalidHorizon, "horizon out of range",
			map[string]interface{}{"max_horizon": s.defaults.MaxHorizon})
	}
	if confidence == 0 {
		confidence = snap.Confidence
	}

	fc, levels, err := forecast.ForecastFromLevels(snap.Model, snap.Tail, horizon, confidence)
	if err != nil {
		return nil, classify(err)
	}

	preds := make([]forecast.ForecastPoint, horizon)
	for j := range preds {
		preds[j] = forecast.ForecastPoint{
			Time:       snap.LastTime.Add(time.Duration(j+1) * snap.Interval),
			Value:      levels.Values[j],
			LowerBound: levels.Lower[j],
			UpperBound: levels.Upper[j],
		}
	}

	return &ModelForecast{
		ModelID:     snap.ID,
		Horizon:     horizon,
		Confidence:  confidence,
		Predictions: preds,
		Differenced: fc,
	}, nil
}

// Forecasters lists the registered forecaster names
func (s *ForecastService) Forecasters() []string {
	return forecast.ListForecasters()
}

// CacheStats reports result cache counters, or nil when caching is off
func (s *ForecastService) CacheStats() *cache.Stats {
	if s.cache == nil {
		return nil
	}
	stats := s.cache.Stats()
	return &stats
}

// Close releases the store and the event publisher
func (s *ForecastService) Close() error {
	var firstErr error
	if s.events != nil {
		if err := s.events.Close(); err != nil {
			firstErr = err
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
