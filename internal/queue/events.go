package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ForecastEvent is published after every successful forecast
type ForecastEvent struct {
	ID          string    `json:"id"`
	Forecaster  string    `json:"forecaster"`
	Method      string    `json:"method"`
	Order       int       `json:"order"`
	Horizon     int       `json:"horizon"`
	NObs        int       `json:"n_obs"`
	Sigma2      float64   `json:"sigma2"`
	AIC         float64   `json:"aic"`
	Confidence  float64   `json:"confidence"`
	Predictions []float64 `json:"predictions"`
	Lower       []float64 `json:"lower"`
	Upper       []float64 `json:"upper"`
	CreatedAt   time.Time `json:"created_at"`
}

// EventPublisher serializes forecast events onto a single subject
type EventPublisher struct {
	pub     Publisher
	subject string
}

// NewEventPublisher wraps pub. A nil pub yields a publisher that drops events.
func NewEventPublisher(pub Publisher, subject string) *EventPublisher {
	if pub == nil {
		pub = noopPublisher{}
	}
	return &EventPublisher{pub: pub, subject: subject}
}

// Subject returns the subject events are published on
func (p *EventPublisher) Subject() string {
	return p.subject
}

// PublishForecast encodes ev as JSON and publishes it
func (p *EventPublisher) PublishForecast(ctx context.Context, ev *ForecastEvent) error {
	if ev == nil {
		return errors.New("nil forecast event")
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode forecast event %s: %w", ev.ID, err)
	}
	return p.pub.Publish(ctx, p.subject, data)
}

// PublishForecasts publishes a batch of events. Events that fail to encode
// are skipped and not counted.
func (p *EventPublisher) PublishForecasts(ctx context.Context, events []*ForecastEvent) (int, error) {
	messages := make([]BatchMessage, 0, len(events))
	for _, ev := range events {
		if ev == nil {
			continue
		}
		data, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		messages = append(messages, BatchMessage{Subject: p.subject, Data: data})
	}
	if len(messages) == 0 {
		return 0, nil
	}
	return p.pub.PublishBatch(ctx, messages)
}

// Close closes the underlying publisher
func (p *EventPublisher) Close() error {
	return p.pub.Close()
}

// DecodeForecastEvent parses a message produced by PublishForecast
func DecodeForecastEvent(data []byte) (*ForecastEvent, error) {
	var ev ForecastEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to decode forecast event: %w", err)
	}
	return &ev, nil
}
