package storage

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/soltixdb/arforecast/internal/analytics/forecast"
)

// ErrModelNotFound is returned when no snapshot exists for an ID
var ErrModelNotFound = errors.New("model not found")

// ErrInvalidID is returned for IDs that are empty or contain characters
// outside [A-Za-z0-9_-]
var ErrInvalidID = errors.New("invalid model id")

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ModelSnapshot is a fitted model together with what is needed to forecast
// from it again without the original series.
type ModelSnapshot struct {
	ID          string                   `json:"id"`
	Forecaster  string                   `json:"forecaster"`
	CreatedAt   time.Time                `json:"created_at"`
	Model       *forecast.ARModel        `json:"model"`
	Confidence  float64                  `json:"confidence"`
	Interval    time.Duration            `json:"interval"`
	LastTime    time.Time                `json:"last_time"`
	Tail        []float64                `json:"tail"` // last Order+1 level observations
	Predictions []forecast.ForecastPoint `json:"predictions"`
	ModelInfo   forecast.ModelInfo       `json:"model_info"`
}

// Validate checks the ID and the embedded model
func (s *ModelSnapshot) Validate() error {
	if s == nil {
		return errors.New("nil snapshot")
	}
	if err := ValidateID(s.ID); err != nil {
		return err
	}
	if err := s.Model.Validate(); err != nil {
		return fmt.Errorf("snapshot %s: %w", s.ID, err)
	}
	if len(s.Tail) < s.Model.Order+1 {
		return fmt.Errorf("snapshot %s keeps %d observations, need %d", s.ID, len(s.Tail), s.Model.Order+1)
	}
	return nil
}

// ValidateID rejects IDs that are unsafe as file names or Redis keys
func ValidateID(id string) error {
	if !idPattern.MatchString(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// ModelStore persists fitted model snapshots
type ModelStore interface {
	// Save writes snap, replacing any snapshot with the same ID
	Save(ctx context.Context, snap *ModelSnapshot) error

	// Load returns the snapshot for id or ErrModelNotFound
	Load(ctx context.Context, id string) (*ModelSnapshot, error)

	// Delete removes the snapshot for id or returns ErrModelNotFound
	Delete(ctx context.Context, id string) error

	// List returns the sorted IDs of all stored snapshots
	List(ctx context.Context) ([]string, error)

	Close() error
}
