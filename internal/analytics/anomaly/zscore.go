package anomaly

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/soltixdb/arforecast/internal/analytics"
)

// ZScoreDetector flags residuals more than Threshold standard deviations
// from the residual mean
type ZScoreDetector struct{}

func init() {
	RegisterDetector("zscore", &ZScoreDetector{})
}

// Name returns the algorithm name
func (z *ZScoreDetector) Name() string {
	return "zscore"
}

// DefaultThreshold is three standard deviations
func (z *ZScoreDetector) DefaultThreshold() float64 {
	return 3.0
}

// Detect finds outliers using the Z-Score method
func (z *ZScoreDetector) Detect(residuals []float64, config DetectorConfig) []Result {
	values := defined(residuals)
	if len(values) < config.MinResiduals || len(values) == 0 {
		return nil
	}

	mean, stdDev := CalculateMeanStdDev(values)
	if stdDev == 0 {
		// A perfect fit has nothing to flag
		return nil
	}

	expected := &Range{
		Min: mean - config.Threshold*stdDev,
		Max: mean + config.Threshold*stdDev,
	}

	var results []Result
	for i, r := range residuals {
		if analytics.IsMissing(r) {
			continue
		}
		score := math.Abs(CalculateZScore(r, mean, stdDev))
		if score > config.Threshold {
			results = append(results, Result{
				Index:    i,
				Score:    score,
				Type:     classify(r - mean),
				Expected: expected,
			})
		}
	}
	return results
}

// CalculateZScore calculates Z-Score for a single value given mean and stdDev
func CalculateZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}

// CalculateMeanStdDev calculates the mean and population standard deviation
func CalculateMeanStdDev(values []float64) (mean, stdDev float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(values, nil)
}
