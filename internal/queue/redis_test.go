package queue

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func redisURL() string {
	if url := os.Getenv("REDIS_URL"); url != "" {
		return url
	}
	return "redis://localhost:6379"
}

func requireRedis(t *testing.T) *redis.Client {
	t.Helper()
	opts, err := redis.ParseURL(redisURL())
	if err != nil {
		t.Skipf("invalid REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		t.Skip("Redis not available, skipping test")
	}
	return client
}

func TestRedisPublisher_Publish(t *testing.T) {
	client := requireRedis(t)
	p := newRedisPublisherWithClient(client, RedisConfig{Stream: "test-arforecast", MaxLen: 100})
	defer func() { _ = p.Close() }()

	ctx := context.Background()
	key := p.StreamKey("forecasts")
	client.Del(ctx, key)
	defer client.Del(ctx, key)

	if err := p.Publish(ctx, "forecasts", []byte("one")); err != nil {
		t.Fatal(err)
	}
	sent, err := p.PublishBatch(ctx, []BatchMessage{
		{Subject: "forecasts", Data: []byte("two")},
		{Subject: "forecasts", Data: []byte("three")},
	})
	if err != nil {
		t.Fatal(err)
	}
	if sent != 2 {
		t.Errorf("expected 2 sent, got %d", sent)
	}

	n, err := client.XLen(ctx, key).Result()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("expected 3 stream entries, got %d", n)
	}
}

func TestRedisPublisher_StreamKey(t *testing.T) {
	p := newRedisPublisherWithClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), RedisConfig{})
	defer func() { _ = p.Close() }()

	if got := p.StreamKey("forecasts"); got != "arforecast:forecasts" {
		t.Errorf("unexpected stream key %s", got)
	}
	args := p.addArgs("forecasts", []byte("x"))
	if args.MaxLen != 0 || args.Approx {
		t.Error("unbounded stream should not set MaxLen")
	}
}

func TestNewRedisPublisher_Unreachable(t *testing.T) {
	_, err := newRedisPublisher(RedisConfig{URL: "redis://127.0.0.1:1"})
	if err == nil {
		t.Fatal("expected connection error")
	}
}
