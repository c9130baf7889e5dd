package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrQueueClosed is returned by operations on a closed queue
var ErrQueueClosed = errors.New("queue closed")

// DefaultMemoryCapacity is the per-subject buffer of the memory queue
const DefaultMemoryCapacity = 1024

// MemoryQueue implements Queue with buffered channels, one per subject.
// Used in development and tests where no broker is available.
type MemoryQueue struct {
	channels      map[string]chan []byte
	subscriptions map[string]context.CancelFunc
	capacity      int
	closed        bool
	mu            sync.Mutex
}

func newMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryQueue{
		channels:      make(map[string]chan []byte),
		subscriptions: make(map[string]context.CancelFunc),
		capacity:      capacity,
	}
}

// channel must be called with q.mu held
func (q *MemoryQueue) channel(subject string) chan []byte {
	ch, ok := q.channels[subject]
	if !ok {
		ch = make(chan []byte, q.capacity)
		q.channels[subject] = ch
	}
	return ch
}

// Publish copies data onto the subject's buffer. A full buffer is an error
// rather than a blocking send.
func (q *MemoryQueue) Publish(ctx context.Context, subject string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrQueueClosed
	}

	msg := make([]byte, len(data))
	copy(msg, data)

	select {
	case q.channel(subject) <- msg:
		return nil
	default:
		return fmt.Errorf("memory queue full for subject %s", subject)
	}
}

// PublishBatch publishes each message in turn and stops at the first
// context cancellation.
func (q *MemoryQueue) PublishBatch(ctx context.Context, messages []BatchMessage) (int, error) {
	sent := 0
	for _, msg := range messages {
		if err := q.Publish(ctx, msg.Subject, msg.Data); err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrQueueClosed) {
				return sent, err
			}
			continue
		}
		sent++
	}
	return sent, nil
}

// Subscribe starts a goroutine that hands every message on subject to
// handler. Handler errors drop the message.
func (q *MemoryQueue) Subscribe(subject string, handler MessageHandler) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if _, exists := q.subscriptions[subject]; exists {
		return fmt.Errorf("already subscribed to subject: %s", subject)
	}

	ch := q.channel(subject)
	ctx, cancel := context.WithCancel(context.Background())
	q.subscriptions[subject] = cancel

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case data, ok := <-ch:
				if !ok {
					return
				}
				_ = handler(data)
			}
		}
	}()
	return nil
}

// Unsubscribe stops delivery for subject. Buffered messages are kept.
func (q *MemoryQueue) Unsubscribe(subject string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	cancel, exists := q.subscriptions[subject]
	if !exists {
		return fmt.Errorf("not subscribed to subject: %s", subject)
	}
	cancel()
	delete(q.subscriptions, subject)
	return nil
}

// Drain removes and returns every buffered message for subject
func (q *MemoryQueue) Drain(subject string) [][]byte {
	q.mu.Lock()
	ch, ok := q.channels[subject]
	q.mu.Unlock()
	if !ok {
		return nil
	}

	var out [][]byte
	for {
		select {
		case data, open := <-ch:
			if !open {
				return out
			}
			out = append(out, data)
		default:
			return out
		}
	}
}

// Pending returns the number of buffered messages for subject
func (q *MemoryQueue) Pending(subject string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	if ch, ok := q.channels[subject]; ok {
		return len(ch)
	}
	return 0
}

// Close stops all subscribers. Further publishes fail with ErrQueueClosed.
func (q *MemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true

	for subject, cancel := range q.subscriptions {
		cancel()
		delete(q.subscriptions, subject)
	}
	for subject, ch := range q.channels {
		close(ch)
		delete(q.channels, subject)
	}
	return nil
}
