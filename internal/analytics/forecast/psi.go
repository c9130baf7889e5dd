package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// PsiWeights returns the first h weights of the moving-average representation
// of an AR process: psi[0] = 1 and psi[j] = sum_{k=1}^{min(j,p)} psi[j-k]*phi_k.
func PsiWeights(coeffs []float64, h int) ([]float64, error) {
	if h <= 0 {
		return nil, fmt.Errorf("horizon must be positive, got %d: %w", h, ErrInvalidHorizon)
	}

	p := len(coeffs)
	psi := make([]float64, h)
	psi[0] = 1
	for j := 1; j < h; j++ {
		sum := 0.0
		for k := 1; k <= min(j, p); k++ {
			sum += psi[j-k] * coeffs[k-1]
		}
		psi[j] = sum
	}
	return psi, nil
}

// ForecastVariance returns the h-step forecast error variances
// var[j] = sigma2 * (1 + psi[1]^2 + ... + psi[j]^2). psi[0] is taken to be 1.
func ForecastVariance(psi []float64, sigma2 float64) ([]float64, error) {
	if len(psi) == 0 {
		return nil, fmt.Errorf("empty psi weights: %w", ErrInvalidHorizon)
	}
	if sigma2 < 0 || math.IsNaN(sigma2) || math.IsInf(sigma2, 0) {
		return nil, fmt.Errorf("residual variance %v must be finite and non-negative: %w", sigma2, ErrInvalidModel)
	}

	variance := make([]float64, len(psi))
	variance[0] = sigma2
	acc := 1.0
	for j := 1; j < len(psi); j++ {
		acc += psi[j] * psi[j]
		variance[j] = sigma2 * acc
	}
	return variance, nil
}

// NormalQuantile returns z such that a standard normal variable falls in
// [-z, z] with the given probability, e.g. 1.959964 for 0.95.
func NormalQuantile(confidence float64) (float64, error) {
	if !(confidence > 0 && confidence < 1) {
		return 0, fmt.Errorf("confidence %v must lie in (0, 1): %w", confidence, ErrInvalidConfidence)
	}
	alpha := 1 - confidence
	return distuv.UnitNormal.Quantile(1 - alpha/2), nil
}
