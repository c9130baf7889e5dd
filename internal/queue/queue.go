package queue

import "context"

// Publisher publishes messages to a queue
type Publisher interface {
	// Publish publishes a message to a subject/topic
	Publish(ctx context.Context, subject string, data []byte) error

	// PublishBatch publishes multiple messages and returns how many succeeded
	PublishBatch(ctx context.Context, messages []BatchMessage) (int, error)

	// Close closes the connection
	Close() error
}

// BatchMessage represents a message for batch publishing
type BatchMessage struct {
	Subject string
	Data    []byte
}

// Subscriber subscribes to messages from a queue
type Subscriber interface {
	Subscribe(subject string, handler MessageHandler) error
	Unsubscribe(subject string) error
	Close() error
}

// MessageHandler handles incoming messages
type MessageHandler func(data []byte) error

// Queue combines Publisher and Subscriber interfaces. Only the memory and
// NATS backends can be consumed; Redis and Kafka are publish-only sinks.
type Queue interface {
	Publisher
	Subscriber
}

// noopPublisher drops everything. Used when events are disabled.
type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, []byte) error { return nil }

func (noopPublisher) PublishBatch(_ context.Context, messages []BatchMessage) (int, error) {
	return len(messages), nil
}

func (noopPublisher) Close() error { return nil }
