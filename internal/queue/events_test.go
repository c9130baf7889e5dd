package queue

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingPublisher struct {
	noopPublisher
	err error
}

func (f failingPublisher) Publish(context.Context, string, []byte) error { return f.err }

func sampleEvent(id string) *ForecastEvent {
	return &ForecastEvent{
		ID:          id,
		Forecaster:  "arima",
		Method:      "css",
		Order:       12,
		Horizon:     3,
		NObs:        240,
		Sigma2:      0.04,
		AIC:         -85.2,
		Confidence:  0.95,
		Predictions: []float64{61.9, 62.0, 62.1},
		Lower:       []float64{61.5, 61.4, 61.3},
		Upper:       []float64{62.3, 62.6, 62.9},
		CreatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEventPublisher_RoundTrip(t *testing.T) {
	mem := newMemoryQueue(8)
	pub := NewEventPublisher(mem, "arforecast.forecasts")
	defer func() { _ = pub.Close() }()

	if pub.Subject() != "arforecast.forecasts" {
		t.Fatalf("unexpected subject %s", pub.Subject())
	}

	want := sampleEvent("model-1")
	if err := pub.PublishForecast(context.Background(), want); err != nil {
		t.Fatal(err)
	}

	msgs := mem.Drain("arforecast.forecasts")
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}

	got, err := DecodeForecastEvent(msgs[0])
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != want.ID || got.Order != 12 || len(got.Predictions) != 3 || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("decoded event differs: %+v", got)
	}
}

func TestEventPublisher_Batch(t *testing.T) {
	mem := newMemoryQueue(8)
	pub := NewEventPublisher(mem, "events")
	defer func() { _ = pub.Close() }()

	sent, err := pub.PublishForecasts(context.Background(), []*ForecastEvent{sampleEvent("a"), nil, sampleEvent("b")})
	if err != nil {
		t.Fatal(err)
	}
	if sent != 2 || mem.Pending("events") != 2 {
		t.Errorf("expected 2 events, sent=%d pending=%d", sent, mem.Pending("events"))
	}

	sent, err = pub.PublishForecasts(context.Background(), nil)
	if sent != 0 || err != nil {
		t.Errorf("empty batch: sent=%d err=%v", sent, err)
	}
}

func TestEventPublisher_Errors(t *testing.T) {
	if err := NewEventPublisher(nil, "s").PublishForecast(context.Background(), sampleEvent("x")); err != nil {
		t.Errorf("nil publisher should drop events, got %v", err)
	}

	boom := errors.New("broker down")
	pub := NewEventPublisher(failingPublisher{err: boom}, "s")
	if err := pub.PublishForecast(context.Background(), sampleEvent("x")); !errors.Is(err, boom) {
		t.Errorf("expected broker error, got %v", err)
	}
	if err := pub.PublishForecast(context.Background(), nil); err == nil {
		t.Error("expected error for nil event")
	}

	if _, err := DecodeForecastEvent([]byte("{not json")); err == nil {
		t.Error("expected decode error")
	}
}
