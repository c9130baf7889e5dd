package queue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig represents Redis Streams configuration
type RedisConfig struct {
	URL      string // redis://host:port/db or a bare host:port
	Password string
	DB       int
	Stream   string // Stream key prefix (default: "arforecast")
	MaxLen   int64  // Approximate cap on stream length, 0 for unbounded
}

// RedisPublisher appends messages to Redis Streams. Consumers read them
// with their own consumer groups.
type RedisPublisher struct {
	client *redis.Client
	config RedisConfig
}

func newRedisPublisher(cfg RedisConfig) (*RedisPublisher, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{
			Addr:     cfg.URL,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisPublisherWithClient(client, cfg), nil
}

func newRedisPublisherWithClient(client *redis.Client, cfg RedisConfig) *RedisPublisher {
	if cfg.Stream == "" {
		cfg.Stream = "arforecast"
	}
	return &RedisPublisher{client: client, config: cfg}
}

// StreamKey converts a subject to its Redis stream key
func (p *RedisPublisher) StreamKey(subject string) string {
	return p.config.Stream + ":" + subject
}

func (p *RedisPublisher) addArgs(subject string, data []byte) *redis.XAddArgs {
	args := &redis.XAddArgs{
		Stream: p.StreamKey(subject),
		ID:     "*",
		Values: map[string]interface{}{"data": data},
	}
	if p.config.MaxLen > 0 {
		args.MaxLen = p.config.MaxLen
		args.Approx = true
	}
	return args
}

// Publish publishes a message to a Redis stream
func (p *RedisPublisher) Publish(ctx context.Context, subject string, data []byte) error {
	if err := p.client.XAdd(ctx, p.addArgs(subject, data)).Err(); err != nil {
		return fmt.Errorf("failed to publish to Redis stream %s: %w", p.StreamKey(subject), err)
	}
	return nil
}

// PublishBatch sends all messages in one pipeline
func (p *RedisPublisher) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	pipe := p.client.Pipeline()
	for _, msg := range messages {
		pipe.XAdd(ctx, p.addArgs(msg.Subject, msg.Data))
	}

	cmds, err := pipe.Exec(ctx)
	sent := 0
	for _, cmd := range cmds {
		if cmd.Err() == nil {
			sent++
		}
	}
	if err != nil && sent == 0 {
		return 0, fmt.Errorf("failed to execute batch publish: %w", err)
	}
	return sent, nil
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
