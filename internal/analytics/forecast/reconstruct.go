package forecast

import (
	"fmt"
	"math"

	"github.com/soltixdb/arforecast/internal/analytics"
)

// Reconstruction holds in-sample fitted values on the level scale.
type Reconstruction struct {
	// Fitted has the length of the input series. Positions without p+1
	// prior observations hold the missing marker.
	Fitted []float64
	// Residuals is input minus Fitted, missing where Fitted is missing.
	Residuals []float64
	// Next is the one-step value beyond the last observation.
	Next float64
}

// ExpandDifferenced rewrites AR coefficients of the differenced series as
// coefficients of the level series: (1+phi1), (phi2-phi1), ..., (phiP-phiP-1), -phiP.
func ExpandDifferenced(coeffs []float64) []float64 {
	p := len(coeffs)
	if p == 0 {
		return []float64{1}
	}

	level := make([]float64, p+1)
	level[0] = 1 + coeffs[0]
	for k := 1; k < p; k++ {
		level[k] = coeffs[k] - coeffs[k-1]
	}
	level[p] = -coeffs[p-1]
	return level
}

// Reconstruct computes fitted values of the (centered) level series z from
// coefficients estimated on its first difference.
func Reconstruct(coeffs []float64, z []float64) (*Reconstruction, error) {
	if len(coeffs) == 0 {
		return nil, fmt.Errorf("no coefficients: %w", ErrInvalidModel)
	}
	if !allFinite(coeffs) {
		return nil, fmt.Errorf("coefficients must be finite: %w", ErrInvalidModel)
	}

	level := ExpandDifferenced(coeffs)
	n := len(z)
	rec := &Reconstruction{
		Fitted:    make([]float64, n),
		Residuals: make([]float64, n),
		Next:      analytics.Missing(),
	}

	for t := 0; t < n; t++ {
		rec.Fitted[t] = predictLevel(level, z, t)
		if IsMissing(rec.Fitted[t]) {
			rec.Residuals[t] = analytics.Missing()
			continue
		}
		rec.Residuals[t] = z[t] - rec.Fitted[t]
	}
	rec.Next = predictLevel(level, z, n)

	return rec, nil
}

// predictLevel evaluates sum_k level[k] * z[t-1-k], or the missing marker
// when a lag falls before the start of z or is itself missing.
func predictLevel(level []float64, z []float64, t int) float64 {
	if t-len(level) < 0 {
		return analytics.Missing()
	}

	sum := 0.0
	for k, c := range level {
		v := z[t-1-k]
		if IsMissing(v) {
			return analytics.Missing()
		}
		sum += c * v
	}
	if math.IsInf(sum, 0) {
		return analytics.Missing()
	}
	return sum
}
