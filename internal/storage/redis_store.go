package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps snapshots as string values under prefix+id
type RedisStore struct {
	client   *redis.Client
	prefix   string
	ttl      time.Duration
	compress bool
}

// NewRedisStore connects to url and verifies the connection
func NewRedisStore(url, prefix string, ttl time.Duration, compress bool) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, prefix, ttl, compress), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string, ttl time.Duration, compress bool) *RedisStore {
	if prefix == "" {
		prefix = "arforecast:model:"
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl, compress: compress}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Save implements ModelStore
func (s *RedisStore) Save(ctx context.Context, snap *ModelSnapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	data, err := encodeSnapshot(snap, s.compress)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(snap.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Load implements ModelStore
func (s *RedisStore) Load(ctx context.Context, id string) (*ModelSnapshot, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot %s: %w", id, err)
	}
	return decodeSnapshot(data)
}

// Delete implements ModelStore
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	return nil
}

// List implements ModelStore. Keys are walked with SCAN.
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		ids = append(ids, strings.TrimPrefix(iter.Val(), s.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close implements ModelStore
func (s *RedisStore) Close() error {
	return s.client.Close()
}
