package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arforecast"

// Metrics holds the Prometheus collectors of the forecasting service
type Metrics struct {
	FitsTotal       *prometheus.CounterVec
	FitDuration     *prometheus.HistogramVec
	ForecastHorizon prometheus.Histogram
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	EventsTotal     *prometheus.CounterVec
	StoreOpsTotal   *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers all collectors with reg. Pass prometheus.NewRegistry() in
// tests to avoid duplicate registration.
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		FitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fits_total",
			Help:      "AR model fits by estimation method and outcome",
		}, []string{"method", "outcome"}),
		FitDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fit_duration_seconds",
			Help:      "Wall time of a full fit and forecast",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"method"}),
		ForecastHorizon: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_horizon",
			Help:      "Requested forecast horizons",
			Buckets:   []float64{1, 6, 12, 24, 48, 120, 365, 1000},
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Forecast requests served from the result cache",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Forecast requests that required a fit",
		}),
		EventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Forecast events by publish outcome",
		}, []string{"outcome"}),
		StoreOpsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Model store operations by kind and outcome",
		}, []string{"op", "outcome"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		gatherer: reg,
	}
}

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeSuccess
}

// ObserveFit records one fit attempt
func (m *Metrics) ObserveFit(method string, horizon int, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.FitsTotal.WithLabelValues(method, outcome(err)).Inc()
	if err == nil {
		m.FitDuration.WithLabelValues(method).Observe(elapsed.Seconds())
		m.ForecastHorizon.Observe(float64(horizon))
	}
}

// ObserveCache records a cache lookup
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
		return
	}
	m.CacheMisses.Inc()
}

// ObserveEvent records a publish attempt
func (m *Metrics) ObserveEvent(err error) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(outcome(err)).Inc()
}

// ObserveStore records a store operation such as "save" or "load"
func (m *Metrics) ObserveStore(op string, err error) {
	if m == nil {
		return
	}
	m.StoreOpsTotal.WithLabelValues(op, outcome(err)).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// FiberHandler adapts Handler for Fiber routes
func (m *Metrics) FiberHandler() fiber.Handler {
	return adaptor.HTTPHandler(m.Handler())
}

// FiberMiddleware counts requests and observes latency by matched route
func (m *Metrics) FiberMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.HTTPRequests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}
