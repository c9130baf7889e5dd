package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

const defaultPublishTimeout = 5 * time.Second

// NATSConfig configures the JetStream backend
type NATSConfig struct {
	URL          string
	Username     string
	Password     string
	StreamPrefix string        // Stream names are "<prefix>-<subject>" (default: "arforecast")
	Timeout      time.Duration // Connect timeout (default: 5s)
}

// NATSQueue implements Queue using NATS JetStream. Each subject gets its
// own file-backed stream, created on first use.
type NATSQueue struct {
	conn          *nats.Conn
	js            nats.JetStreamContext
	prefix        string
	streams       map[string]struct{}
	subscriptions map[string]*nats.Subscription
	mu            sync.Mutex
}

func newNATSQueue(cfg NATSConfig) (*NATSQueue, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultPublishTimeout
	}
	opts := []nats.Option{
		nats.Name("arforecast"),
		nats.Timeout(cfg.Timeout),
	}
	if cfg.Username != "" {
		opts = append(opts, nats.UserInfo(cfg.Username, cfg.Password))
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	q, err := newNATSQueueWithConn(conn, cfg.StreamPrefix)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return q, nil
}

func newNATSQueueWithConn(conn *nats.Conn, prefix string) (*NATSQueue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}
	if prefix == "" {
		prefix = "arforecast"
	}
	return &NATSQueue{
		conn:          conn,
		js:            js,
		prefix:        prefix,
		streams:       make(map[string]struct{}),
		subscriptions: make(map[string]*nats.Subscription),
	}, nil
}

func (q *NATSQueue) streamName(subject string) string {
	return q.prefix + "-" + sanitizeName(subject)
}

// ensureStream must be called with q.mu held
func (q *NATSQueue) ensureStream(subject string) error {
	if _, ok := q.streams[subject]; ok {
		return nil
	}

	name := q.streamName(subject)
	if _, err := q.js.StreamInfo(name); err != nil {
		if !errors.Is(err, nats.ErrStreamNotFound) {
			return fmt.Errorf("failed to look up stream %s: %w", name, err)
		}
		_, err = q.js.AddStream(&nats.StreamConfig{
			Name:     name,
			Subjects: []string{subject},
			Storage:  nats.FileStorage,
		})
		if err != nil {
			return fmt.Errorf("failed to create stream for subject %s: %w", subject, err)
		}
	}

	q.streams[subject] = struct{}{}
	return nil
}

// Publish waits for the JetStream ack. Without a deadline on ctx the wait is
// bounded by a default timeout.
func (q *NATSQueue) Publish(ctx context.Context, subject string, data []byte) error {
	q.mu.Lock()
	err := q.ensureStream(subject)
	q.mu.Unlock()
	if err != nil {
		return err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultPublishTimeout)
		defer cancel()
	}

	if _, err := q.js.Publish(subject, data, nats.Context(ctx)); err != nil {
		return fmt.Errorf("failed to publish to subject %s: %w", subject, err)
	}
	return nil
}

// PublishBatch queues every message asynchronously and waits once for all
// acks.
func (q *NATSQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}

	q.mu.Lock()
	for _, msg := range messages {
		if err := q.ensureStream(msg.Subject); err != nil {
			q.mu.Unlock()
			return 0, err
		}
	}
	q.mu.Unlock()

	futures := make([]nats.PubAckFuture, 0, len(messages))
	for _, msg := range messages {
		future, err := q.js.PublishAsync(msg.Subject, msg.Data)
		if err != nil {
			continue
		}
		futures = append(futures, future)
	}

	select {
	case <-q.js.PublishAsyncComplete():
	case <-ctx.Done():
		return 0, fmt.Errorf("timeout waiting for batch publish: %w", ctx.Err())
	}

	acked := 0
	for _, future := range futures {
		select {
		case <-future.Ok():
			acked++
		case <-future.Err():
		}
	}
	return acked, nil
}

// Subscribe attaches a durable, manually acked consumer to subject. Handler
// errors NAK the message for redelivery.
func (q *NATSQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}
	if err := q.ensureStream(subject); err != nil {
		return err
	}

	sub, err := q.js.Subscribe(subject, func(msg *nats.Msg) {
		if err := handler(msg.Data); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("consumer-"+sanitizeName(subject)),
		nats.ManualAck(),
		nats.MaxAckPending(100),
		nats.AckWait(30*time.Second),
		nats.MaxDeliver(3),
		nats.DeliverAll(),
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", subject, err)
	}

	q.subscriptions[subject] = sub
	return nil
}

// Unsubscribe unsubscribes from a subject
func (q *NATSQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	sub, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}
	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe from subject %s: %w", subject, err)
	}
	delete(q.subscriptions, subject)
	return nil
}

// Close drains subscriptions and closes the connection
func (q *NATSQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for subject, sub := range q.subscriptions {
		_ = sub.Unsubscribe()
		delete(q.subscriptions, subject)
	}
	q.conn.Close()
	return nil
}

// sanitizeName maps a subject onto the characters JetStream allows in
// stream and consumer names: A-Z, a-z, 0-9, dash and underscore.
func sanitizeName(subject string) string {
	out := []byte(subject)
	for i, c := range out {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
