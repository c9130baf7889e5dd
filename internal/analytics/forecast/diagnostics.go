package forecast

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// LjungBoxResult is the outcome of a Ljung-Box portmanteau test.
type LjungBoxResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Lags      int     `json:"lags"`
	DOF       int     `json:"dof"`
}

// ACF returns sample autocorrelations for lags 0..maxLag. Missing values are
// dropped before computing. The result is nil when fewer than two values remain.
func ACF(x []float64, maxLag int) []float64 {
	values := make([]float64, 0, len(x))
	for _, v := range x {
		if !IsMissing(v) {
			values = append(values, v)
		}
	}
	n := len(values)
	if n < 2 || maxLag < 0 {
		return nil
	}
	if maxLag >= n {
		maxLag = n - 1
	}

	mu := stat.Mean(values, nil)
	denom := 0.0
	for _, v := range values {
		denom += (v - mu) * (v - mu)
	}

	acf := make([]float64, maxLag+1)
	acf[0] = 1
	if denom == 0 {
		return acf
	}
	for k := 1; k <= maxLag; k++ {
		num := 0.0
		for t := k; t < n; t++ {
			num += (values[t] - mu) * (values[t-k] - mu)
		}
		acf[k] = num / denom
	}
	return acf
}

// LjungBox tests residuals for autocorrelation up to lags. fitdf is the
// number of estimated parameters and is subtracted from the degrees of freedom.
func LjungBox(residuals []float64, lags, fitdf int) (*LjungBoxResult, error) {
	acf := ACF(residuals, lags)
	n := 0
	for _, v := range residuals {
		if !IsMissing(v) {
			n++
		}
	}
	if lags < 1 || acf == nil || lags >= n {
		return nil, fmt.Errorf("ljung-box with %d lags needs more than %d residuals, got %d: %w",
			lags, lags, n, ErrInsufficientHistory)
	}
	dof := lags - fitdf
	if dof < 1 {
		return nil, fmt.Errorf("ljung-box has %d degrees of freedom (lags %d, fitted %d): %w",
			dof, lags, fitdf, ErrInvalidModel)
	}

	q := 0.0
	for k := 1; k <= lags; k++ {
		q += acf[k] * acf[k] / float64(n-k)
	}
	q *= float64(n) * float64(n+2)

	chi := distuv.ChiSquared{K: float64(dof)}
	return &LjungBoxResult{
		Statistic: q,
		PValue:    chi.Survival(q),
		Lags:      lags,
		DOF:       dof,
	}, nil
}
