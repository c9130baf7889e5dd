package queue

import (
	"context"
	"testing"

	"github.com/soltixdb/arforecast/internal/config"
)

func TestNewPublisher(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.QueueConfig
		wantErr bool
	}{
		{"default memory", config.QueueConfig{}, false},
		{"memory", config.QueueConfig{Type: "memory"}, false},
		{"none", config.QueueConfig{Type: "none"}, false},
		{"upper case", config.QueueConfig{Type: "MEMORY"}, false},
		{"kafka from url", config.QueueConfig{Type: "kafka", URL: "k1:9092,k2:9092"}, false},
		{"kafka without brokers", config.QueueConfig{Type: "kafka"}, true},
		{"unknown", config.QueueConfig{Type: "rabbitmq"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub, err := NewPublisher(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewPublisher() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				_ = pub.Close()
			}
		})
	}
}

func TestNewPublisher_KafkaBrokersFromURL(t *testing.T) {
	pub, err := NewPublisher(config.QueueConfig{Type: "kafka", URL: "k1:9092,k2:9092"})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = pub.Close() }()

	kp, ok := pub.(*KafkaPublisher)
	if !ok {
		t.Fatalf("expected *KafkaPublisher, got %T", pub)
	}
	if len(kp.config.Brokers) != 2 {
		t.Errorf("expected 2 brokers, got %v", kp.config.Brokers)
	}
}

func TestNewQueue(t *testing.T) {
	q, err := NewQueue(config.QueueConfig{Type: "memory"})
	if err != nil {
		t.Fatal(err)
	}
	_ = q.Close()

	if _, err := NewQueue(config.QueueConfig{Type: "kafka"}); err == nil {
		t.Error("kafka should not be consumable")
	}
}

func TestNewQueue_NATS(t *testing.T) {
	url := setupTestNATS(t)
	q, err := NewQueue(config.QueueConfig{Type: "nats", URL: url})
	if err != nil {
		t.Fatal(err)
	}
	_ = q.Close()
}

func TestNewEventPublisherFromConfig(t *testing.T) {
	pub, err := NewEventPublisherFromConfig(config.QueueConfig{Type: "none", Subject: "x"})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = pub.Close() }()

	if err := pub.PublishForecast(context.Background(), sampleEvent("x")); err != nil {
		t.Errorf("none publisher should accept events: %v", err)
	}
}
