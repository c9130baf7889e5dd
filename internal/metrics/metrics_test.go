package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveFit("css", 24, 5*time.Millisecond, nil)
	m.ObserveFit("ml", 12, time.Millisecond, errors.New("diverged"))
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveEvent(nil)
	m.ObserveStore("save", errors.New("disk full"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FitsTotal.WithLabelValues("css", OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FitsTotal.WithLabelValues("ml", OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StoreOpsTotal.WithLabelValues("save", OutcomeError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.ForecastHorizon))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveFit("css", 1, 0, nil)
		m.ObserveCache(true)
		m.ObserveEvent(nil)
		m.ObserveStore("load", nil)
	})
}

func TestMetrics_Fiber(t *testing.T) {
	m := New(prometheus.NewRegistry())

	app := fiber.New()
	app.Use(m.FiberMiddleware())
	app.Get("/metrics", m.FiberHandler())
	app.Get("/v1/models/:id", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNotFound)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/models/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/v1/models/:id", "404")))

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "arforecast_http_requests_total")
}
