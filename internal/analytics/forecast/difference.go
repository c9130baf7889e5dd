package forecast

import (
	"fmt"

	"github.com/soltixdb/arforecast/internal/analytics"
	"gonum.org/v1/gonum/stat"
)

// IsMissing reports whether v marks an undefined position.
func IsMissing(v float64) bool {
	return analytics.IsMissing(v)
}

// Center returns z minus its own mean, together with that mean.
func Center(z []float64) ([]float64, float64) {
	if len(z) == 0 {
		return []float64{}, 0
	}
	mu := stat.Mean(z, nil)
	return CenterOn(z, mu), mu
}

// CenterOn returns z minus a given mean, such as the level a stored model
// was fitted around.
func CenterOn(z []float64, mean float64) []float64 {
	centered := make([]float64, len(z))
	for i, v := range z {
		centered[i] = v - mean
	}
	return centered
}

// Difference returns the first difference of z. The result has the same
// length as z; position 0 has no predecessor and holds the missing marker.
func Difference(z []float64) ([]float64, error) {
	if len(z) < 2 {
		return nil, fmt.Errorf("difference needs at least 2 values, got %d: %w", len(z), ErrInsufficientHistory)
	}

	d := make([]float64, len(z))
	d[0] = analytics.Missing()
	for t := 1; t < len(z); t++ {
		d[t] = z[t] - z[t-1]
	}
	return d, nil
}

// Integrate inverts Center followed by Difference: first is the centered value
// at position 0 and mean is the level removed by Center. Missing entries of d
// after position 0 are treated as zero change.
func Integrate(d []float64, first, mean float64) []float64 {
	if len(d) == 0 {
		return []float64{}
	}

	z := make([]float64, len(d))
	level := first
	z[0] = level + mean
	for t := 1; t < len(d); t++ {
		if !IsMissing(d[t]) {
			level += d[t]
		}
		z[t] = level + mean
	}
	return z
}

// validValues returns the values after the leading run of missing markers
// and the offset at which they start. Inner missing values are an error.
func validValues(x []float64) ([]float64, int, error) {
	leading, total := analytics.CountMissing(x)
	if total != leading {
		return nil, 0, fmt.Errorf("series has %d missing values after position %d: %w",
			total-leading, leading, ErrInvalidSeries)
	}
	return x[leading:], leading, nil
}
