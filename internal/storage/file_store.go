package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/soltixdb/arforecast/internal/logging"
)

const snapshotExt = ".model"

// FileStore keeps one snapshot file per model under dir. Writes go to a
// temporary file first and are renamed into place.
type FileStore struct {
	dir      string
	compress bool
	logger   *logging.Logger
	mu       sync.RWMutex
}

// NewFileStore creates dir if needed
func NewFileStore(dir string, compress bool, logger *logging.Logger) (*FileStore, error) {
	if dir == "" {
		return nil, errors.New("file store requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create model directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = logging.Global()
	}
	return &FileStore{dir: dir, compress: compress, logger: logger}, nil
}

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+snapshotExt)
}

// Save implements ModelStore
func (s *FileStore) Save(ctx context.Context, snap *ModelSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := snap.Validate(); err != nil {
		return err
	}

	data, err := encodeSnapshot(snap, s.compress)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, snap.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write snapshot %s: %w", snap.ID, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync snapshot %s: %w", snap.ID, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close snapshot %s: %w", snap.ID, err)
	}

	if err := os.Rename(tmpPath, s.path(snap.ID)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", tmpPath, err)
	}

	s.logger.Debug("Model snapshot saved", "id", snap.ID, "bytes", len(data), "compressed", s.compress)
	return nil
}

// Load implements ModelStore
func (s *FileStore) Load(ctx context.Context, id string) (*ModelSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, err := os.ReadFile(s.path(id))
	s.mu.RUnlock()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", id, err)
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", id, err)
	}
	return snap, nil
}

// Delete implements ModelStore
func (s *FileStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrModelNotFound, id)
	}
	return err
}

// List implements ModelStore
func (s *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	entries, err := os.ReadDir(s.dir)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, snapshotExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// Close implements ModelStore
func (s *FileStore) Close() error { return nil }
