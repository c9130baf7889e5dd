package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

const (
	mlMaxIterations     = 500
	mlGradientThreshold = 1e-6
	// mlAcceptGradient is the largest gradient norm at which a stalled line
	// search is still reported as a fit.
	mlAcceptGradient = 1e-3
	// pacfLimit keeps the starting partial autocorrelations away from +-1.
	pacfLimit = 0.98
)

// EstimateAR fits an AR(p) model without intercept to the differenced series d.
// Leading missing markers of d are skipped.
func EstimateAR(d []float64, p int, method Method) (*ARModel, error) {
	if p < 1 {
		return nil, fmt.Errorf("order must be positive, got %d: %w", p, ErrInvalidModel)
	}

	x, _, err := validValues(d)
	if err != nil {
		return nil, err
	}
	for i, v := range x {
		if math.IsInf(v, 0) {
			return nil, fmt.Errorf("value at position %d is infinite: %w", i, ErrInvalidSeries)
		}
	}
	if floats.Norm(x, math.Inf(1)) == 0 {
		return nil, fitFailure(method, p, "series has no variation", nil)
	}
	// Need more conditioned residuals than parameters.
	if len(x)-p <= p {
		return nil, fmt.Errorf("AR(%d) needs at least %d observations, got %d: %w",
			p, 2*p+1, len(x), ErrInsufficientHistory)
	}

	switch method {
	case MethodCSS:
		return estimateCSS(x, p)
	case MethodML:
		return estimateML(x, p)
	default:
		return nil, fmt.Errorf("unknown estimation method %q: %w", method, ErrInvalidModel)
	}
}

// estimateCSS solves the conditional least-squares problem
// min sum_{t>=p} (x[t] - sum_k phi_k x[t-k])^2 by QR decomposition.
func estimateCSS(x []float64, p int) (*ARModel, error) {
	rows := len(x) - p
	design := mat.NewDense(rows, p, nil)
	target := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		t := p + i
		target.SetVec(i, x[t])
		for k := 0; k < p; k++ {
			design.Set(i, k, x[t-1-k])
		}
	}

	var qr mat.QR
	qr.Factorize(design)

	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, target); err != nil {
		return nil, fitFailure(MethodCSS, p, "design matrix is singular", err)
	}

	coeffs := make([]float64, p)
	for k := range coeffs {
		coeffs[k] = beta.AtVec(k)
	}
	if !allFinite(coeffs) {
		return nil, fitFailure(MethodCSS, p, "non-finite coefficients", nil)
	}

	ssr := conditionalSSR(x, coeffs)
	sigma2 := ssr / float64(rows)
	if math.IsNaN(sigma2) || math.IsInf(sigma2, 0) {
		return nil, fitFailure(MethodCSS, p, "non-finite residual variance", nil)
	}

	model := &ARModel{
		Order:        p,
		Coefficients: coeffs,
		Sigma2:       sigma2,
		Method:       MethodCSS,
		NObs:         rows,
	}
	model.LogLikelihood = gaussianLogLik(rows, sigma2, 0)
	model.AIC = -2*model.LogLikelihood + 2*float64(p+1)
	return model, nil
}

// estimateML maximises the exact Gaussian likelihood. The innovation variance
// is concentrated out and the coefficients are searched through unconstrained
// partial autocorrelations, so every trial point is stationary.
func estimateML(x []float64, p int) (*ARModel, error) {
	start := make([]float64, p)
	if css, err := estimateCSS(x, p); err == nil {
		if pacf, ok := arToPACF(css.Coefficients); ok {
			for k, r := range pacf {
				start[k] = math.Atanh(math.Max(-pacfLimit, math.Min(pacfLimit, r)))
			}
		}
	}

	objective := func(u []float64) float64 {
		nll, _, _ := exactNegLogLik(x, unconstrainedToAR(u))
		return nll
	}

	problem := optimize.Problem{
		Func: objective,
		Grad: func(grad, u []float64) {
			fd.Gradient(grad, objective, u, nil)
		},
	}
	settings := &optimize.Settings{
		GradientThreshold: mlGradientThreshold,
		MajorIterations:   mlMaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-10,
			Relative:   1e-10,
			Iterations: 25,
		},
	}

	result, err := optimize.Minimize(problem, start, settings, &optimize.BFGS{})
	if result == nil {
		return nil, fitFailure(MethodML, p, "optimizer returned no result", err)
	}
	if err != nil {
		grad := fd.Gradient(nil, objective, result.X, nil)
		if floats.Norm(grad, 2) > mlAcceptGradient || math.IsInf(result.F, 0) || math.IsNaN(result.F) {
			return nil, fitFailure(MethodML, p, fmt.Sprintf("optimizer stopped with status %v", result.Status), err)
		}
	}

	coeffs := unconstrainedToAR(result.X)
	if !allFinite(coeffs) {
		return nil, fitFailure(MethodML, p, "non-finite coefficients", nil)
	}

	_, sigma2, logDet := exactNegLogLik(x, coeffs)
	if math.IsNaN(sigma2) || math.IsInf(sigma2, 0) {
		return nil, fitFailure(MethodML, p, "non-finite residual variance", nil)
	}

	model := &ARModel{
		Order:        p,
		Coefficients: coeffs,
		Sigma2:       sigma2,
		Method:       MethodML,
		NObs:         len(x),
	}
	model.LogLikelihood = gaussianLogLik(len(x), sigma2, logDet)
	model.AIC = -2*model.LogLikelihood + 2*float64(p+1)
	return model, nil
}

// exactNegLogLik returns n*log(S/n) + log|V_p| (the profile deviance up to a
// constant), the concentrated variance S/n and log|V_p|. V_p is the
// covariance of the first p observations for unit innovation variance.
func exactNegLogLik(x []float64, phi []float64) (float64, float64, float64) {
	p := len(phi)
	n := len(x)

	gamma, ok := unitAutocovariance(phi)
	if !ok {
		return math.Inf(1), math.NaN(), math.NaN()
	}

	v := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			v.SetSym(i, j, gamma[j-i])
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(v) {
		return math.Inf(1), math.NaN(), math.NaN()
	}

	head := mat.NewVecDense(p, append([]float64(nil), x[:p]...))
	var solved mat.VecDense
	if err := chol.SolveVecTo(&solved, head); err != nil {
		return math.Inf(1), math.NaN(), math.NaN()
	}

	s := mat.Dot(head, &solved) + conditionalSSR(x, phi)
	if s <= 0 || math.IsNaN(s) {
		return math.Inf(1), math.NaN(), math.NaN()
	}

	logDet := chol.LogDet()
	sigma2 := s / float64(n)
	return float64(n)*math.Log(sigma2) + logDet, sigma2, logDet
}

// unitAutocovariance solves gamma_k - sum_j phi_j gamma_|k-j| = [k == 0]
// for gamma_0..gamma_p.
func unitAutocovariance(phi []float64) ([]float64, bool) {
	p := len(phi)
	a := mat.NewDense(p+1, p+1, nil)
	b := mat.NewVecDense(p+1, nil)
	b.SetVec(0, 1)
	for k := 0; k <= p; k++ {
		a.Set(k, k, a.At(k, k)+1)
		for j := 1; j <= p; j++ {
			lag := k - j
			if lag < 0 {
				lag = -lag
			}
			a.Set(k, lag, a.At(k, lag)-phi[j-1])
		}
	}

	var g mat.VecDense
	if err := g.SolveVec(a, b); err != nil {
		return nil, false
	}
	gamma := make([]float64, p+1)
	for k := range gamma {
		gamma[k] = g.AtVec(k)
	}
	if gamma[0] <= 0 || !allFinite(gamma) {
		return nil, false
	}
	return gamma, true
}

// conditionalSSR returns sum_{t>=p} (x[t] - sum_k phi_k x[t-k])^2.
func conditionalSSR(x []float64, phi []float64) float64 {
	p := len(phi)
	ssr := 0.0
	for t := p; t < len(x); t++ {
		e := x[t]
		for k := 0; k < p; k++ {
			e -= phi[k] * x[t-1-k]
		}
		ssr += e * e
	}
	return ssr
}

func gaussianLogLik(n int, sigma2, logDet float64) float64 {
	if sigma2 <= 0 {
		return math.Inf(1)
	}
	nf := float64(n)
	return -0.5*nf*(math.Log(2*math.Pi)+math.Log(sigma2)+1) - 0.5*logDet
}

func unconstrainedToAR(u []float64) []float64 {
	r := make([]float64, len(u))
	for k, v := range u {
		r[k] = math.Tanh(v)
	}
	return pacfToAR(r)
}

// pacfToAR maps partial autocorrelations to AR coefficients with the
// Durbin-Levinson recursion.
func pacfToAR(r []float64) []float64 {
	p := len(r)
	phi := make([]float64, p)
	work := make([]float64, p)
	for k := 0; k < p; k++ {
		for j := 0; j < k; j++ {
			work[j] = phi[j] - r[k]*phi[k-1-j]
		}
		copy(phi[:k], work[:k])
		phi[k] = r[k]
	}
	return phi
}

// arToPACF inverts pacfToAR. It fails when some partial autocorrelation has
// magnitude >= 1, which happens exactly when the process is not stationary.
func arToPACF(phi []float64) ([]float64, bool) {
	p := len(phi)
	a := append([]float64(nil), phi...)
	r := make([]float64, p)
	for k := p - 1; k >= 0; k-- {
		rk := a[k]
		if math.Abs(rk) >= 1 || math.IsNaN(rk) {
			return nil, false
		}
		r[k] = rk
		denom := 1 - rk*rk
		prev := make([]float64, k)
		for j := 0; j < k; j++ {
			prev[j] = (a[j] + rk*a[k-1-j]) / denom
		}
		a = prev
	}
	return r, true
}

func allFinite(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
