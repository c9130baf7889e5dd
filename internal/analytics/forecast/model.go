package forecast

import (
	"fmt"
	"math"
	"strings"
)

// Method selects the loss minimised by the AR estimator.
type Method string

const (
	// MethodCSS minimises the conditional sum of squares, treating the first
	// p observations as fixed.
	MethodCSS Method = "css"
	// MethodML maximises the exact Gaussian likelihood, including the first
	// p observations through the stationary covariance of the process.
	MethodML Method = "ml"
)

// ParseMethod converts a configuration string into a Method.
func ParseMethod(s string) (Method, error) {
	switch Method(strings.ToLower(strings.TrimSpace(s))) {
	case MethodCSS, "":
		return MethodCSS, nil
	case MethodML, "mle":
		return MethodML, nil
	default:
		return "", fmt.Errorf("unknown estimation method %q (supported: css, ml)", s)
	}
}

// ARModel holds the estimated parameters of an AR(p) model fitted to a
// differenced series.
type ARModel struct {
	Order         int       `json:"order"`
	Coefficients  []float64 `json:"coefficients"`
	Sigma2        float64   `json:"sigma2"`
	Method        Method    `json:"method"`
	LogLikelihood float64   `json:"log_likelihood"`
	AIC           float64   `json:"aic"`
	NObs          int       `json:"n_obs"`
	Mean          float64   `json:"mean"`
}

// Validate checks the coefficient count against the order and the variance
// for sign and finiteness.
func (m *ARModel) Validate() error {
	if m == nil {
		return fmt.Errorf("nil model: %w", ErrInvalidModel)
	}
	if m.Order < 1 {
		return fmt.Errorf("order must be positive, got %d: %w", m.Order, ErrInvalidModel)
	}
	if len(m.Coefficients) != m.Order {
		return fmt.Errorf("expected %d coefficients, got %d: %w", m.Order, len(m.Coefficients), ErrInvalidModel)
	}
	for i, c := range m.Coefficients {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("coefficient ar%d is not finite: %w", i+1, ErrInvalidModel)
		}
	}
	if math.IsNaN(m.Sigma2) || math.IsInf(m.Sigma2, 0) || m.Sigma2 < 0 {
		return fmt.Errorf("residual variance %v must be finite and non-negative: %w", m.Sigma2, ErrInvalidModel)
	}
	return nil
}

// CoefficientTable returns parameter name to value, ar1..arP plus sigma2.
func (m *ARModel) CoefficientTable() map[string]float64 {
	table := make(map[string]float64, len(m.Coefficients)+1)
	for i, c := range m.Coefficients {
		table[fmt.Sprintf("ar%d", i+1)] = c
	}
	table["sigma2"] = m.Sigma2
	return table
}

// IsStationary reports whether the AR polynomial has all roots outside the
// unit circle, checked through the partial autocorrelations.
func (m *ARModel) IsStationary() bool {
	_, ok := arToPACF(m.Coefficients)
	return ok
}
