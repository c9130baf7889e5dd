package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soltixdb/arforecast/internal/analytics"
	"github.com/soltixdb/arforecast/internal/analytics/forecast"
	"github.com/soltixdb/arforecast/internal/cache"
	"github.com/soltixdb/arforecast/internal/config"
	"github.com/soltixdb/arforecast/internal/logging"
	"github.com/soltixdb/arforecast/internal/metrics"
	"github.com/soltixdb/arforecast/internal/queue"
	"github.com/soltixdb/arforecast/internal/storage"
)

var testStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func testDefaults() config.ModelConfig {
	return config.ModelConfig{
		Order:          2,
		Method:         "css",
		Horizon:        6,
		MaxHorizon:     50,
		Confidence:     0.95,
		MinDataPoints:  10,
		DiagnosticLags: 8,
	}
}

// testSeries integrates an AR(2) process so the level series has a unit root
func testSeries(n int, seed int64) analytics.TimeSeriesData {
	rng := rand.New(rand.NewSource(seed))
	values := make([]float64, n)
	level, d1, d2 := 100.0, 0.0, 0.0
	for i := range values {
		d := 0.5*d1 - 0.2*d2 + rng.NormFloat64()
		d2, d1 = d1, d
		level += d
		values[i] = level
	}
	return analytics.FromValues(values, testStart, 24*time.Hour)
}

type fixture struct {
	svc     *ForecastService
	store   *storage.MemoryStore
	events  queue.Queue
	metrics *metrics.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c, err := cache.NewLRUWithTTL[uint64, *ForecastResponse](16, time.Minute)
	require.NoError(t, err)

	events, err := queue.NewQueue(config.QueueConfig{Type: "memory"})
	require.NoError(t, err)

	f := &fixture{
		store:   storage.NewMemoryStore(),
		events:  events,
		metrics: metrics.New(prometheus.NewRegistry()),
	}
	f.svc = NewForecastService(logging.NewNop(), testDefaults(),
		WithCache(c),
		WithStore(f.store),
		WithEvents(queue.NewEventPublisher(events, "test.forecasts")),
		WithMetrics(f.metrics),
	)
	t.Cleanup(func() { _ = f.svc.Close() })
	return f
}

func codeOf(t *testing.T, err error) string {
	t.Helper()
	var se *ServiceError
	require.True(t, errors.As(err, &se), "expected *ServiceError, got %T: %v", err, err)
	return se.Code
}

func TestExecute_Success(t *testing.T) {
	f := newFixture(t)
	series := testSeries(120, 1)

	resp, err := f.svc.Execute(context.Background(), &ForecastRequest{Series: series, Save: true})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.ModelID)
	assert.Equal(t, "arima", resp.Forecaster)
	assert.False(t, resp.Cached)
	assert.True(t, resp.Saved)

	result := resp.Result
	require.Len(t, result.Predictions, 6)
	assert.Equal(t, series[len(series)-1].Time.Add(24*time.Hour), result.Predictions[0].Time)
	assert.Equal(t, 2, result.Model.Order)
	assert.Equal(t, forecast.MethodCSS, result.Model.Method)
	assert.Len(t, result.Fitted, len(series))
	require.NotNil(t, result.ModelInfo.LjungBox)

	// persisted
	ids, err := f.svc.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{resp.ModelID}, ids)

	// event published
	msgs := f.events.(*queue.MemoryQueue).Drain("test.forecasts")
	require.Len(t, msgs, 1)
	ev, err := queue.DecodeForecastEvent(msgs[0])
	require.NoError(t, err)
	assert.Equal(t, resp.ModelID, ev.ID)
	assert.Equal(t, 6, ev.Horizon)
	assert.InDelta(t, result.Predictions[5].Value, ev.Predictions[5], 1e-12)

	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FitsTotal.WithLabelValues("css", metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.EventsTotal.WithLabelValues(metrics.OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StoreOpsTotal.WithLabelValues("save", metrics.OutcomeSuccess)))
}

func TestExecute_Cache(t *testing.T) {
	f := newFixture(t)
	req := &ForecastRequest{Series: testSeries(80, 2), Horizon: 4}

	first, err := f.svc.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := f.svc.Execute(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ModelID, second.ModelID)
	assert.Same(t, first.Result, second.Result)

	// a different horizon is a different key
	req.Horizon = 5
	third, err := f.svc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, third.Cached)

	stats := f.svc.CacheStats()
	require.NotNil(t, stats)
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CacheHits))

	// only the first two fits published events
	assert.Len(t, f.events.(*queue.MemoryQueue).Drain("test.forecasts"), 2)
}

func TestExecute_SaveBypassesUnsavedCacheEntry(t *testing.T) {
	f := newFixture(t)
	req := &ForecastRequest{Series: testSeries(60, 3)}

	first, err := f.svc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Saved)

	req.Save = true
	second, err := f.svc.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.True(t, second.Saved)
	assert.NotEqual(t, first.ModelID, second.ModelID)
}

func TestExecute_Errors(t *testing.T) {
	constant := make([]float64, 40)
	for i := range constant {
		constant[i] = 5
	}
	withNaN := testSeries(40, 4)
	withNaN[20].Value = math.NaN()

	tests := []struct {
		name string
		req  *ForecastRequest
		code string
	}{
		{"nil request", nil, CodeInvalidRequest},
		{"empty series", &ForecastRequest{}, CodeInvalidRequest},
		{"horizon too large", &ForecastRequest{Series: testSeries(40, 4), Horizon: 51}, CodeInvalidHorizon},
		{"negative horizon", &ForecastRequest{Series: testSeries(40, 4), Horizon: -1}, CodeInvalidHorizon},
		{"order too large", &ForecastRequest{Series: testSeries(40, 4), Order: 1000}, CodeInvalidModel},
		{"unknown method", &ForecastRequest{Series: testSeries(40, 4), Method: "ols"}, CodeInvalidMethod},
		{"unknown forecaster", &ForecastRequest{Series: testSeries(40, 4), Forecaster: "prophet"}, CodeInvalidMethod},
		{"bad confidence", &ForecastRequest{Series: testSeries(40, 4), Confidence: 1.5}, CodeInvalidRequest},
		{"too few points", &ForecastRequest{Series: testSeries(8, 4)}, CodeInsufficientData},
		{"too few for order", &ForecastRequest{Series: testSeries(20, 4), Order: 12}, CodeInsufficientData},
		{"constant series", &ForecastRequest{Series: analytics.FromValues(constant, testStart, time.Hour)}, CodeFitFailed},
		{"missing value", &ForecastRequest{Series: withNaN}, CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.Execute(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.code, codeOf(t, err))
		})
	}
}

func TestExecute_FitFailureDetails(t *testing.T) {
	f := newFixture(t)
	constant := make([]float64, 40)

	_, err := f.svc.Execute(context.Background(), &ForecastRequest{Series: analytics.FromValues(constant, testStart, time.Hour)})
	require.Error(t, err)

	var se *ServiceError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "css", se.Details["method"])
	assert.Equal(t, 2, se.Details["order"])
	assert.ErrorIs(t, err, forecast.ErrFitFailure)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.FitsTotal.WithLabelValues("css", metrics.OutcomeError)))
}

func TestExecute_CancelledContext(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.Execute(ctx, &ForecastRequest{Series: testSeries(40, 5)})
	require.Error(t, err)
	assert.Equal(t, CodeTimeout, codeOf(t, err))
}

func TestExecute_NamedForecaster(t *testing.T) {
	f := newFixture(t)

	resp, err := f.svc.Execute(context.Background(), &ForecastRequest{
		Forecaster: "arima_ml",
		Series:     testSeries(100, 6),
		Order:      2,
	})
	require.NoError(t, err)
	assert.Equal(t, "arima_ml", resp.Forecaster)
	assert.Equal(t, forecast.MethodML, resp.Result.Model.Method)
}

func TestExecute_WithoutOptionalCollaborators(t *testing.T) {
	svc := NewForecastService(nil, testDefaults())
	resp, err := svc.Execute(context.Background(), &ForecastRequest{Series: testSeries(50, 7), Save: true})
	require.NoError(t, err)
	assert.False(t, resp.Saved)
	assert.Nil(t, svc.CacheStats())
	assert.NoError(t, svc.Close())
}

func TestForecastModel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.Execute(ctx, &ForecastRequest{Series: testSeries(120, 8), Save: true})
	require.NoError(t, err)

	// default horizon and confidence reproduce the saved forecast
	mf, err := f.svc.ForecastModel(ctx, resp.ModelID, 0, 0)
	require.NoError(t, err)
	require.Len(t, mf.Predictions, len(resp.Result.Predictions))
	for j, p := range resp.Result.Predictions {
		assert.True(t, p.Time.Equal(mf.Predictions[j].Time), "step %d", j)
		assert.InDelta(t, p.Value, mf.Predictions[j].Value, 1e-9, "step %d", j)
		assert.InDelta(t, p.UpperBound, mf.Predictions[j].UpperBound, 1e-9, "step %d", j)
	}

	mf, err = f.svc.ForecastModel(ctx, resp.ModelID, 12, 0.8)
	require.NoError(t, err)
	assert.Len(t, mf.Predictions, 12)
	assert.Equal(t, 0.8, mf.Confidence)

	_, err = f.svc.ForecastModel(ctx, resp.ModelID, 500, 0)
	assert.Equal(t, CodeInvalidHorizon, codeOf(t, err))

	_, err = f.svc.ForecastModel(ctx, resp.ModelID, 3, 2)
	assert.Equal(t, CodeInvalidRequest, codeOf(t, err))
}

func TestModelLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.GetModel(ctx, "nope")
	assert.Equal(t, CodeModelNotFound, codeOf(t, err))

	resp, err := f.svc.Execute(ctx, &ForecastRequest{Series: testSeries(60, 9), Save: true})
	require.NoError(t, err)

	snap, err := f.svc.GetModel(ctx, resp.ModelID)
	require.NoError(t, err)
	assert.Equal(t, resp.Result.Model.Coefficients, snap.Model.Coefficients)
	assert.Len(t, snap.Tail, 3)

	require.NoError(t, f.svc.DeleteModel(ctx, resp.ModelID))
	err = f.svc.DeleteModel(ctx, resp.ModelID)
	assert.Equal(t, CodeModelNotFound, codeOf(t, err))
}

func TestModelLifecycle_NoStore(t *testing.T) {
	svc := NewForecastService(logging.NewNop(), testDefaults())
	ctx := context.Background()

	_, err := svc.GetModel(ctx, "x")
	assert.Equal(t, CodeModelNotFound, codeOf(t, err))
	assert.Equal(t, CodeModelNotFound, codeOf(t, svc.DeleteModel(ctx, "x")))

	ids, err := svc.ListModels(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{fmt.Errorf("x: %w", forecast.ErrInvalidHorizon), CodeInvalidHorizon},
		{fmt.Errorf("x: %w", forecast.ErrInvalidModel), CodeInvalidModel},
		{fmt.Errorf("x: %w", forecast.ErrInsufficientHistory), CodeInsufficientData},
		{fmt.Errorf("x: %w", forecast.ErrFitFailure), CodeFitFailed},
		{fmt.Errorf("x: %w", forecast.ErrInvalidSeries), CodeInvalidRequest},
		{fmt.Errorf("x: %w", forecast.ErrInvalidConfidence), CodeInvalidRequest},
		{fmt.Errorf("x: %w", storage.ErrModelNotFound), CodeModelNotFound},
		{fmt.Errorf("x: %w", storage.ErrInvalidID), CodeInvalidRequest},
		{context.DeadlineExceeded, CodeTimeout},
		{errors.New("disk on fire"), CodeInternal},
		{NewServiceError(CodeInvalidMethod, "m"), CodeInvalidMethod},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, classify(tt.err).Code)
		})
	}
}

func TestForecasters(t *testing.T) {
	svc := NewForecastService(logging.NewNop(), testDefaults())
	assert.Subset(t, svc.Forecasters(), []string{"arima", "arima_ml"})
}
