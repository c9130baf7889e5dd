package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// KafkaConfig represents Apache Kafka producer configuration
type KafkaConfig struct {
	Brokers      []string
	BatchSize    int           // default: 100
	BatchTimeout time.Duration // default: 10ms
	RequiredAcks int           // 0=none, 1=leader, -1=all (default: 1)
	MaxAttempts  int           // default: 3
}

// KafkaPublisher writes messages to Kafka topics, one writer per topic
type KafkaPublisher struct {
	config  KafkaConfig
	writers map[string]*kafka.Writer
	mu      sync.Mutex
}

func newKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}

	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.BatchTimeout == 0 {
		cfg.BatchTimeout = 10 * time.Millisecond
	}
	if cfg.RequiredAcks == 0 {
		cfg.RequiredAcks = int(kafka.RequireOne)
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}

	return &KafkaPublisher{
		config:  cfg,
		writers: make(map[string]*kafka.Writer),
	}, nil
}

func (p *KafkaPublisher) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(p.config.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              p.config.BatchSize,
		BatchTimeout:           p.config.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(p.config.RequiredAcks),
		MaxAttempts:            p.config.MaxAttempts,
		AllowAutoTopicCreation: true,
	}
	p.writers[topic] = w
	return w
}

// Publish publishes a message to a Kafka topic
func (p *KafkaPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	msg := kafka.Message{Value: data, Time: time.Now()}
	if err := p.writer(subject).WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish to kafka topic %s: %w", subject, err)
	}
	return nil
}

// PublishBatch groups messages by topic and writes each group at once
func (p *KafkaPublisher) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	byTopic := make(map[string][]kafka.Message)
	now := time.Now()
	for _, msg := range messages {
		byTopic[msg.Subject] = append(byTopic[msg.Subject], kafka.Message{Value: msg.Data, Time: now})
	}

	sent := 0
	var lastErr error
	for topic, msgs := range byTopic {
		if err := p.writer(topic).WriteMessages(ctx, msgs...); err != nil {
			lastErr = err
			continue
		}
		sent += len(msgs)
	}

	if lastErr != nil && sent == 0 {
		return 0, fmt.Errorf("failed to publish batch: %w", lastErr)
	}
	return sent, nil
}

// Stats returns writer stats for a topic
func (p *KafkaPublisher) Stats(topic string) kafka.WriterStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	if w, ok := p.writers[topic]; ok {
		return w.Stats()
	}
	return kafka.WriterStats{}
}

// Close flushes and closes every writer
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var lastErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			lastErr = err
		}
		delete(p.writers, topic)
	}
	return lastErr
}
