package anomaly

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/soltixdb/arforecast/internal/analytics"
)

// IQRDetector flags residuals outside [Q1 - k*IQR, Q3 + k*IQR]. It is
// less affected by the outliers it looks for than the Z-Score.
type IQRDetector struct{}

func init() {
	RegisterDetector("iqr", &IQRDetector{})
}

// Name returns the algorithm name
func (iqr *IQRDetector) Name() string {
	return "iqr"
}

// DefaultThreshold is Tukey's fence multiplier
func (iqr *IQRDetector) DefaultThreshold() float64 {
	return 1.5
}

// Detect finds outliers using the IQR method
func (iqr *IQRDetector) Detect(residuals []float64, config DetectorConfig) []Result {
	values := defined(residuals)
	if len(values) < config.MinResiduals || len(values) == 0 {
		return nil
	}

	q1, q3, iqrValue := CalculateIQR(values)
	if iqrValue == 0 {
		return nil
	}

	lowerBound := q1 - config.Threshold*iqrValue
	upperBound := q3 + config.Threshold*iqrValue
	expected := &Range{Min: lowerBound, Max: upperBound}

	var results []Result
	for i, r := range residuals {
		if analytics.IsMissing(r) {
			continue
		}
		var score float64
		switch {
		case r < lowerBound:
			score = (lowerBound - r) / iqrValue
		case r > upperBound:
			score = (r - upperBound) / iqrValue
		default:
			continue
		}
		results = append(results, Result{
			Index:    i,
			Score:    score,
			Type:     classify(r - (q1+q3)/2),
			Expected: expected,
		})
	}
	return results
}

// CalculateIQR returns Q1, Q3, and IQR for a slice of values. Quartiles are
// the empirical quantiles of the sample.
func CalculateIQR(values []float64) (q1, q3, iqr float64) {
	if len(values) == 0 {
		return 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q3 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	return q1, q3, q3 - q1
}
