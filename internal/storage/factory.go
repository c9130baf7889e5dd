package storage

import (
	"fmt"
	"strings"

	"github.com/soltixdb/arforecast/internal/config"
	"github.com/soltixdb/arforecast/internal/logging"
	"github.com/soltixdb/arforecast/internal/utils"
)

// NewModelStore builds the configured store. Type "none" returns nil, nil
// and callers skip persistence.
func NewModelStore(cfg config.StoreConfig, logger *logging.Logger) (ModelStore, error) {
	switch utils.StoreType(strings.ToLower(cfg.Type)) {
	case utils.StoreTypeFile, "":
		return NewFileStore(cfg.Dir, cfg.Compress, logger)
	case utils.StoreTypeRedis:
		return NewRedisStore(cfg.RedisURL, cfg.KeyPrefix, cfg.TTL, cfg.Compress)
	case utils.StoreTypeMemory:
		return NewMemoryStore(), nil
	case utils.StoreTypeNone:
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported store type: %s (supported: file, redis, memory, none)", cfg.Type)
	}
}
