package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soltixdb/arforecast/internal/analytics"
	"github.com/soltixdb/arforecast/internal/analytics/anomaly"
	"github.com/soltixdb/arforecast/internal/analytics/forecast"
	"github.com/soltixdb/arforecast/internal/cache"
	"github.com/soltixdb/arforecast/internal/config"
	"github.com/soltixdb/arforecast/internal/logging"
	"github.com/soltixdb/arforecast/internal/metrics"
	"github.com/soltixdb/arforecast/internal/queue"
	"github.com/soltixdb/arforecast/internal/storage"
	"github.com/soltixdb/arforecast/internal/utils"
)

// DefaultForecaster is used when a request names none
const DefaultForecaster = "arima"

// ForecastService runs fits for requests and manages the fitted models
type ForecastService struct {
	logger   *logging.Logger
	defaults config.ModelConfig
	cache    *cache.LRUWithTTL[uint64, *ForecastResponse]
	store    storage.ModelStore
	events   *queue.EventPublisher
	metrics  *metrics.Metrics
	now      func() time.Time
}

// Option configures optional collaborators of ForecastService
type Option func(*ForecastService)

// WithCache enables result caching
func WithCache(c *cache.LRUWithTTL[uint64, *ForecastResponse]) Option {
	return func(s *ForecastService) { s.cache = c }
}

// WithStore enables model persistence
func WithStore(store storage.ModelStore) Option {
	return func(s *ForecastService) { s.store = store }
}

// WithEvents publishes an event after every fit
func WithEvents(p *queue.EventPublisher) Option {
	return func(s *ForecastService) { s.events = p }
}

// WithMetrics records Prometheus metrics
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *ForecastService) { s.metrics = m }
}

// NewForecastService creates a new ForecastService
func NewForecastService(logger *logging.Logger, defaults config.ModelConfig, opts ...Option) *ForecastService {
	if logger == nil {
		logger = logging.Global()
	}
	s := &ForecastService{
		logger:   logger,
		defaults: defaults,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForecastRequest represents a forecast request. Zero fields take the
// configured model defaults.
type ForecastRequest struct {
	Forecaster string
	Series     analytics.TimeSeriesData
	Horizon    int
	Order      int
	Method     string
	Confidence float64
	Interval   time.Duration
	Outliers   string // Residual outlier detector, "none" disables
	Save       bool
}

// ForecastResponse is the outcome of a fit
type ForecastResponse struct {
	ModelID    string                   `json:"model_id"`
	Forecaster string                   `json:"forecaster"`
	Cached     bool                     `json:"cached"`
	Saved      bool                     `json:"saved"`
	CreatedAt  time.Time                `json:"created_at"`
	Result     *forecast.ForecastResult `json:"result"`
	Outliers   []anomaly.Outlier        `json:"outliers,omitempty"`
}

// resolve fills defaults and validates the request against service limits
func (s *ForecastService) resolve(req *ForecastRequest) (string, forecast.ForecastConfig, error) {
	if req == nil || len(req.Series) == 0 {
		return "", forecast.ForecastConfig{}, NewServiceError(CodeInvalidRequest, "series is empty")
	}
	if len(req.Series) > utils.MaxSeriesLength {
		return "", forecast.ForecastConfig{}, NewServiceErrorWithDetails(CodeInvalidRequest,
			"series is too long", map[string]interface{}{"max_length": utils.MaxSeriesLength})
	}

	name := req.Forecaster
	if name == "" {
		name = DefaultForecaster
	}

	cfg := forecast.ForecastConfig{
		Horizon:        s.defaults.Horizon,
		Order:          s.defaults.Order,
		Confidence:     s.defaults.Confidence,
		MinDataPoints:  s.defaults.MinDataPoints,
		Interval:       req.Interval,
		DiagnosticLags: s.defaults.DiagnosticLags,
	}
	if req.Horizon != 0 {
		cfg.Horizon = req.Horizon
	}
	if cfg.Horizon < 1 || (s.defaults.MaxHorizon > 0 && cfg.Horizon > s.defaults.MaxHorizon) {
		return "", cfg, NewServiceErrorWithDetails(CodeInvalidHorizon,
			fmt.Sprintf("horizon must be between 1 and %d, got %d", s.defaults.MaxHorizon, cfg.Horizon),
			map[string]interface{}{"max_horizon": s.defaults.MaxHorizon})
	}

	if req.Order != 0 {
		cfg.Order = req.Order
	}
	if cfg.Order < 1 || cfg.Order > utils.MaxOrder {
		return "", cfg, NewServiceError(CodeInvalidModel,
			fmt.Sprintf("order must be between 1 and %d, got %d", utils.MaxOrder, cfg.Order))
	}

	// An explicit method overrides the forecaster's own; the default method
	// only applies to the default forecaster.
	methodName := req.Method
	if methodName == "" && req.Forecaster == "" {
		methodName = s.defaults.Method
	}
	if methodName != "" {
		method, err := forecast.ParseMethod(methodName)
		if err != nil {
			return "", cfg, NewServiceErrorWithDetails(CodeInvalidMethod, err.Error(),
				map[string]interface{}{"supported": []string{string(forecast.MethodCSS), string(forecast.MethodML)}})
		}
		cfg.Method = method
	}

	if req.Confidence != 0 {
		cfg.Confidence = req.Confidence
	}
	if cfg.Confidence <= 0 || cfg.Confidence >= 1 {
		return "", cfg, NewServiceError(CodeInvalidRequest,
			fmt.Sprintf("confidence must lie in (0, 1), got %g", cfg.Confidence))
	}

	return name, cfg, nil
}

// detector resolves the residual outlier detector, "" when detection is off
func (s *ForecastService) detector(req *ForecastRequest) (string, error) {
	name := strings.ToLower(req.Outliers)
	if name == "" {
		name = s.defaults.Outliers
	}
	if name == "" || name == "none" {
		return "", nil
	}
	if _, err := anomaly.GetDetector(name); err != nil {
		return "", NewServiceErrorWithDetails(CodeInvalidRequest, err.Error(),
			map[string]interface{}{"supported": append(anomaly.ListDetectors(), "none")})
	}
	return name, nil
}

func cacheKey(name, detector string, cfg forecast.ForecastConfig, series analytics.TimeSeriesData) uint64 {
	b := cache.NewKeyBuilder().
		String(name).
		String(detector).
		Int(cfg.Horizon).
		Int(cfg.Order).
		String(string(cfg.Method)).
		Float(cfg.Confidence).
		Int(cfg.MinDataPoints).
		Int(cfg.DiagnosticLags).
		Duration(cfg.Interval).
		Int(len(series))
	for _, p := range series {
		b.Time(p.Time).Float(p.Value)
	}
	return b.Sum()
}

// Execute fits the requested forecaster and returns its forecast. Identical
// requests are answered from the cache while the entry lives.
func (s *ForecastService) Execute(ctx context.Context, req *ForecastRequest) (*ForecastResponse, error) {
	startExec := time.Now()

	name, cfg, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	forecaster, err := forecast.GetForecaster(name)
	if err != nil {
		return nil, NewServiceErrorWithDetails(CodeInvalidMethod, err.Error(),
			map[string]interface{}{"available_forecasters": forecast.ListForecasters()})
	}

	detector, err := s.detector(req)
	if err != nil {
		return nil, err
	}

	var key uint64
	if s.cache != nil {
		key = cacheKey(name, detector, cfg, req.Series)
		cached, ok := s.cache.Get(key)
		hit := ok && (!req.Save || cached.Saved)
		s.metrics.ObserveCache(hit)
		if hit {
			resp := *cached
			resp.Cached = true
			return &resp, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, classify(err)
	}

	logger := s.logger.WithContext(ctx)
	result, err := forecaster.Forecast(req.Series, cfg)
	method := string(cfg.Method)
	if result != nil && result.Model != nil {
		method = string(result.Model.Method)
	}
	s.metrics.ObserveFit(method, cfg.Horizon, time.Since(startExec), err)
	if err != nil {
		se := classify(err)
		logger.Warn("Forecast failed",
			"forecaster", name,
			"order", cfg.Order,
			"method", method,
			"code", se.Code,
			"error", err)
		return nil, se
	}

	resp := &ForecastResponse{
		ModelID:    uuid.NewString(),
		Forecaster: name,
		CreatedAt:  s.now().UTC(),
		Result:     result,
	}

	if detector != "" {
		resp.Outliers = s.outliers(ctx, detector, req.Series, result)
	}

	if req.Save && s.store != nil {
		snap := s.snapshot(resp, req.Series, cfg)
		err := s.store.Save(ctx, snap)
		s.metrics.ObserveStore("save", err)
		if err != nil {
			logger.Error("Failed to save model", "model_id", resp.ModelID, "error", err)
		} else {
			resp.Saved = true
		}
	}

	s.publish(ctx, resp, cfg)

	if s.cache != nil {
		s.cache.Set(key, resp)
	}

	logger.Info("Forecast completed",
		"model_id", resp.ModelID,
		"forecaster", name,
		"order", result.Model.Order,
		"method", method,
		"horizon", cfg.Horizon,
		"n_obs", result.Model.NObs,
		"sigma2", result.Model.Sigma2,
		"latency_ms", time.Since(startExec).Milliseconds())

	return resp, nil
}

// outliers flags unusual one-step residuals. A detector failure only
// drops the flags.
func (s *ForecastService) outliers(ctx context.Context, detector string, series analytics.TimeSeriesData, result *forecast.ForecastResult) []anomaly.Outlier {
	cfg := anomaly.DefaultConfig()
	cfg.Threshold = s.defaults.OutlierThreshold
	found, err := anomaly.DetectOutliers(detector, series, result.Fitted, result.Residuals, cfg)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Outlier detection failed", "detector", detector, "error", err)
		return nil
	}
	return found
}

func (s *ForecastService) snapshot(resp *ForecastResponse, series analytics.TimeSeriesData, cfg forecast.ForecastConfig) *storage.ModelSnapshot {
	model := resp.Result.Model
	values := series.Values()
	tail := make([]float64, model.Order+1)
	copy(tail, values[len(values)-len(tail):])

	interval := cfg.Interval
	if preds := resp.Result.Predictions; len(preds) > 0 {
		interval = preds[0].Time.Sub(series[len(series)-1].Time)
	}

	return &storage.ModelSnapshot{
		ID:          resp.ModelID,
		Forecaster:  resp.Forecaster,
		CreatedAt:   resp.CreatedAt,
		Model:       model,
		Confidence:  cfg.Confidence,
		Interval:    interval,
		LastTime:    series[len(series)-1].Time,
		Tail:        tail,
		Predictions: resp.Result.Predictions,
		ModelInfo:   resp.Result.ModelInfo,
	}
}

// publish sends the forecast event. Failures are logged and never reach the
// caller.
func (s *ForecastService) publish(ctx context.Context, resp *ForecastResponse, cfg forecast.ForecastConfig) {
	if s.events == nil {
		return
	}

	result := resp.Result
	ev := &queue.ForecastEvent{
		ID:          resp.ModelID,
		Forecaster:  resp.Forecaster,
		Method:      string(result.Model.Method),
		Order:       result.Model.Order,
		Horizon:     cfg.Horizon,
		NObs:        result.Model.NObs,
		Sigma2:      result.Model.Sigma2,
		AIC:         utils.FiniteOrZero(result.Model.AIC),
		Confidence:  cfg.Confidence,
		Predictions: make([]float64, len(result.Predictions)),
		Lower:       make([]float64, len(result.Predictions)),
		Upper:       make([]float64, len(result.Predictions)),
		CreatedAt:   resp.CreatedAt,
	}
	for i, p := range result.Predictions {
		ev.Predictions[i] = p.Value
		ev.Lower[i] = p.LowerBound
		ev.Upper[i] = p.UpperBound
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), utils.EventPublishTimeout)
	defer cancel()

	err := s.events.PublishForecast(pubCtx, ev)
	s.metrics.ObserveEvent(err)
	if err != nil {
		s.logger.WithContext(ctx).Warn("Failed to publish forecast event",
			"model_id", resp.ModelID,
			"subject", s.events.Subject(),
			"error", err)
	}
}
