package queue

import (
	"fmt"
	"strings"

	"github.com/soltixdb/arforecast/internal/config"
	"github.com/soltixdb/arforecast/internal/utils"
)

// NewQueue creates a consumable Queue. Only memory and NATS can be read back.
func NewQueue(cfg config.QueueConfig) (Queue, error) {
	switch utils.QueueType(strings.ToLower(cfg.Type)) {
	case utils.QueueTypeMemory, "":
		return newMemoryQueue(DefaultMemoryCapacity), nil
	case utils.QueueTypeNATS:
		return newNATSQueue(natsConfig(cfg))
	default:
		return nil, fmt.Errorf("queue type %q cannot be subscribed to (supported: memory, nats)", cfg.Type)
	}
}

// NewPublisher creates a Publisher for the configured backend. Type "none"
// returns a publisher that discards messages.
func NewPublisher(cfg config.QueueConfig) (Publisher, error) {
	switch utils.QueueType(strings.ToLower(cfg.Type)) {
	case utils.QueueTypeMemory, "":
		return newMemoryQueue(DefaultMemoryCapacity), nil

	case utils.QueueTypeNATS:
		return newNATSQueue(natsConfig(cfg))

	case utils.QueueTypeRedis:
		return newRedisPublisher(RedisConfig{
			URL:      cfg.URL,
			Password: cfg.Password,
			DB:       cfg.RedisDB,
			Stream:   cfg.RedisStream,
		})

	case utils.QueueTypeKafka:
		brokers := cfg.KafkaBrokers
		if len(brokers) == 0 && cfg.URL != "" {
			brokers = strings.Split(cfg.URL, ",")
		}
		return newKafkaPublisher(KafkaConfig{Brokers: brokers})

	case utils.QueueTypeNone:
		return noopPublisher{}, nil

	default:
		return nil, fmt.Errorf("unsupported queue type: %s (supported: memory, nats, redis, kafka, none)", cfg.Type)
	}
}

// NewEventPublisherFromConfig builds the forecast event publisher
func NewEventPublisherFromConfig(cfg config.QueueConfig) (*EventPublisher, error) {
	pub, err := NewPublisher(cfg)
	if err != nil {
		return nil, err
	}
	return NewEventPublisher(pub, cfg.Subject), nil
}

func natsConfig(cfg config.QueueConfig) NATSConfig {
	return NATSConfig{
		URL:      cfg.URL,
		Username: cfg.Username,
		Password: cfg.Password,
	}
}
