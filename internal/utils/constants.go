package utils

import "time"

// =============================================================================
// Timeout Constants
// =============================================================================

const (
	// DefaultRequestTimeout bounds a single forecast request
	DefaultRequestTimeout = 30 * time.Second

	// EventPublishTimeout bounds the asynchronous publish of a forecast event
	EventPublishTimeout = 5 * time.Second

	// ShutdownTimeout is how long the daemon waits for in-flight requests
	ShutdownTimeout = 10 * time.Second
)

// =============================================================================
// Forecast Limits
// =============================================================================

const (
	// MaxSeriesLength caps the number of observations accepted per request
	MaxSeriesLength = 100000

	// MaxOrder caps the autoregressive order accepted per request
	MaxOrder = 64
)

// =============================================================================
// Queue Type Constants
// =============================================================================

// QueueType represents the type of message queue
type QueueType string

const (
	// QueueTypeNATS represents NATS JetStream queue
	QueueTypeNATS QueueType = "nats"

	// QueueTypeRedis represents Redis Streams queue
	QueueTypeRedis QueueType = "redis"

	// QueueTypeKafka represents Apache Kafka queue
	QueueTypeKafka QueueType = "kafka"

	// QueueTypeMemory represents in-memory queue (default)
	QueueTypeMemory QueueType = "memory"

	// QueueTypeNone disables event publishing
	QueueTypeNone QueueType = "none"
)

// =============================================================================
// Store Type Constants
// =============================================================================

// StoreType represents the backend used to persist fitted models
type StoreType string

const (
	// StoreTypeFile keeps one snapshot file per model
	StoreTypeFile StoreType = "file"

	// StoreTypeRedis keeps snapshots as Redis string values
	StoreTypeRedis StoreType = "redis"

	// StoreTypeMemory keeps snapshots for the life of the process
	StoreTypeMemory StoreType = "memory"

	// StoreTypeNone disables persistence
	StoreTypeNone StoreType = "none"
)
