package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/arforecast/internal/analytics"
	"github.com/soltixdb/arforecast/internal/models"
	"github.com/soltixdb/arforecast/internal/services"
	"github.com/soltixdb/arforecast/internal/utils"
)

// intervalAliases are the shorthand spacings accepted besides Go durations
var intervalAliases = map[string]time.Duration{
	"1m":  time.Minute,
	"5m":  5 * time.Minute,
	"15m": 15 * time.Minute,
	"30m": 30 * time.Minute,
	"1h":  time.Hour,
	"4h":  4 * time.Hour,
	"1d":  24 * time.Hour,
	"1w":  7 * 24 * time.Hour,
	"1mo": 30 * 24 * time.Hour,
}

// Forecast fits a model to the posted series and forecasts it
// POST /v1/forecast
func (h *Handler) Forecast(c *fiber.Ctx) error {
	var body models.ForecastRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest("Failed to parse JSON body", err)
	}

	req, err := h.serviceRequest(&body)
	if err != nil {
		return err
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	resp, err := h.service.Execute(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(toForecastResponse(resp))
}

// ForecastBatch fits several series concurrently. A malformed item rejects
// the whole batch; fit failures are reported per item.
// POST /v1/forecast/batch
func (h *Handler) ForecastBatch(c *fiber.Ctx) error {
	var body models.BatchRequest
	if err := c.BodyParser(&body); err != nil {
		return badRequest("Failed to parse JSON body", err)
	}

	reqs := make([]*services.ForecastRequest, len(body.Requests))
	for i := range body.Requests {
		req, err := h.serviceRequest(&body.Requests[i])
		if err != nil {
			var se *services.ServiceError
			if errors.As(err, &se) {
				if se.Details == nil {
					se.Details = map[string]interface{}{}
				}
				se.Details["index"] = i
			}
			return err
		}
		reqs[i] = req
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	items, err := h.service.ExecuteBatch(ctx, reqs)
	if err != nil {
		return err
	}

	return c.JSON(toBatchResponse(items))
}

func (h *Handler) serviceRequest(body *models.ForecastRequest) (*services.ForecastRequest, error) {
	series, interval, err := h.buildSeries(body)
	if err != nil {
		return nil, err
	}
	return &services.ForecastRequest{
		Forecaster: body.Forecaster,
		Series:     series,
		Horizon:    body.Horizon,
		Order:      body.Order,
		Method:     body.Method,
		Confidence: body.Confidence,
		Interval:   interval,
		Outliers:   body.Outliers,
		Save:       body.Save,
	}, nil
}

// Forecasters lists the registered forecasters
// GET /v1/forecasters
func (h *Handler) Forecasters(c *fiber.Ctx) error {
	return c.JSON(models.ForecasterListResponse{Forecasters: h.service.Forecasters()})
}

// CacheStats reports the result cache counters
// GET /v1/cache
func (h *Handler) CacheStats(c *fiber.Ctx) error {
	stats := h.service.CacheStats()
	if stats == nil {
		return c.JSON(fiber.Map{"enabled": false})
	}
	return c.JSON(fiber.Map{"enabled": true, "stats": stats})
}

// buildSeries turns the request body into a time series. Points keep their
// own timestamps; Values are spaced from Start by the interval.
func (h *Handler) buildSeries(body *models.ForecastRequest) (analytics.TimeSeriesData, time.Duration, error) {
	if !body.HasSeries() {
		return nil, 0, badRequest("values or points are required", nil)
	}
	if len(body.Values) > 0 && len(body.Points) > 0 {
		return nil, 0, badRequest("values and points are mutually exclusive", nil)
	}

	var interval time.Duration
	if body.Interval != "" {
		d, err := ParseInterval(body.Interval)
		if err != nil {
			return nil, 0, badRequest("invalid interval", err)
		}
		interval = d
	}

	if len(body.Points) > 0 {
		series := make(analytics.TimeSeriesData, len(body.Points))
		for i, p := range body.Points {
			ts, err := time.Parse(time.RFC3339, p.Time)
			if err != nil {
				return nil, 0, badRequest(fmt.Sprintf("points[%d].time must be RFC3339", i), err)
			}
			if i > 0 && !ts.After(series[i-1].Time) {
				return nil, 0, badRequest(fmt.Sprintf("points[%d].time is not after the previous point", i), nil)
			}
			value := analytics.Missing()
			if p.Value != nil {
				value = *p.Value
			}
			series[i] = analytics.TimeSeriesPoint{Time: ts, Value: value}
		}
		// Zero interval lets the forecaster infer it from the timestamps.
		return series, interval, nil
	}

	start := time.Unix(0, 0).UTC()
	if body.Start != "" {
		ts, err := time.Parse(time.RFC3339, body.Start)
		if err != nil {
			return nil, 0, badRequest("start must be RFC3339", err)
		}
		start = ts
	}
	if interval == 0 {
		interval = h.defaults.Interval
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return analytics.FromValues(utils.FromNullable(body.Values), start, interval), interval, nil
}

// ParseInterval accepts the aliases in intervalAliases or any positive Go
// duration.
func ParseInterval(s string) (time.Duration, error) {
	if d, ok := intervalAliases[s]; ok {
		return d, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be positive, got %s", s)
	}
	return d, nil
}
