// Package anomaly flags observations whose one-step residuals are unusually
// large for a fitted model.
package anomaly

import (
	"fmt"
	"sort"
	"time"

	"github.com/soltixdb/arforecast/internal/analytics"
)

// OutlierType tells which side of the expected range a residual fell on
type OutlierType string

const (
	OutlierTypeSpike OutlierType = "spike" // Observation above its fitted value
	OutlierTypeDrop  OutlierType = "drop"  // Observation below its fitted value
)

// Outlier is an observation flagged by a detector
type Outlier struct {
	Index     int         `json:"index"`
	Time      time.Time   `json:"time"`
	Value     float64     `json:"value"`
	Fitted    float64     `json:"fitted"`
	Residual  float64     `json:"residual"`
	Score     float64     `json:"score"` // How anomalous (higher = more abnormal)
	Type      OutlierType `json:"type"`
	Expected  *Range      `json:"expected,omitempty"` // Residual range considered normal
	Algorithm string      `json:"algorithm"`
}

// Range represents the expected residual range
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// DetectorConfig holds configuration for outlier detection
type DetectorConfig struct {
	// Threshold is the detector's sensitivity, 0 for its default
	Threshold float64

	// MinResiduals is the number of defined residuals required
	MinResiduals int
}

// DefaultConfig returns default detector configuration
func DefaultConfig() DetectorConfig {
	return DetectorConfig{
		MinResiduals: 10,
	}
}

// Detector scores residuals. Missing residuals are skipped.
type Detector interface {
	// Name returns the algorithm name
	Name() string

	// DefaultThreshold is used when the config leaves Threshold at zero
	DefaultThreshold() float64

	// Detect returns the flagged residual positions
	Detect(residuals []float64, config DetectorConfig) []Result
}

// Result contains detection result for a single residual
type Result struct {
	Index    int
	Score    float64
	Type     OutlierType
	Expected *Range
}

var detectorRegistry = make(map[string]Detector)

// RegisterDetector adds a detector to the registry
func RegisterDetector(name string, detector Detector) {
	detectorRegistry[name] = detector
}

// GetDetector returns a detector by name
func GetDetector(name string) (Detector, error) {
	if detector, ok := detectorRegistry[name]; ok {
		return detector, nil
	}
	return nil, fmt.Errorf("unknown outlier detector: %s", name)
}

// ListDetectors returns the registered detector names in sorted order
func ListDetectors() []string {
	names := make([]string, 0, len(detectorRegistry))
	for name := range detectorRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DetectOutliers runs the named detector over the residuals of a fit and
// maps the flagged positions back onto the series. series, fitted and
// residuals share one index.
func DetectOutliers(algorithm string, series analytics.TimeSeriesData, fitted, residuals []float64, config DetectorConfig) ([]Outlier, error) {
	detector, err := GetDetector(algorithm)
	if err != nil {
		return nil, err
	}
	if len(fitted) != len(series) || len(residuals) != len(series) {
		return nil, fmt.Errorf("series, fitted and residuals differ in length: %d, %d, %d",
			len(series), len(fitted), len(residuals))
	}
	if config.Threshold <= 0 {
		config.Threshold = detector.DefaultThreshold()
	}

	results := detector.Detect(residuals, config)
	outliers := make([]Outlier, 0, len(results))
	for _, r := range results {
		outliers = append(outliers, Outlier{
			Index:     r.Index,
			Time:      series[r.Index].Time,
			Value:     series[r.Index].Value,
			Fitted:    fitted[r.Index],
			Residual:  residuals[r.Index],
			Score:     r.Score,
			Type:      r.Type,
			Expected:  r.Expected,
			Algorithm: detector.Name(),
		})
	}
	return outliers, nil
}

// defined returns the non-missing residuals
func defined(residuals []float64) []float64 {
	out := make([]float64, 0, len(residuals))
	for _, r := range residuals {
		if !analytics.IsMissing(r) {
			out = append(out, r)
		}
	}
	return out
}

func classify(residual float64) OutlierType {
	if residual > 0 {
		return OutlierTypeSpike
	}
	return OutlierTypeDrop
}
