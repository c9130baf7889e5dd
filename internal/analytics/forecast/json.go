package forecast

import (
	"encoding/json"
	"math"
)

// A fit with zero residual variance has an infinite log-likelihood and AIC.
// encoding/json rejects non-finite numbers, so both fields travel as null.

func finiteOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// restoreLikelihood maps null fields back. A perfect fit gets its exact
// limits; any other null is undefined.
func restoreLikelihood(logLik, aic *float64, perfect bool) (float64, float64) {
	l, a := math.NaN(), math.NaN()
	if perfect {
		l, a = math.Inf(1), math.Inf(-1)
	}
	if logLik != nil {
		l = *logLik
	}
	if aic != nil {
		a = *aic
	}
	return l, a
}

// MarshalJSON implements json.Marshaler
func (m ARModel) MarshalJSON() ([]byte, error) {
	type plain ARModel
	return json.Marshal(struct {
		plain
		LogLikelihood *float64 `json:"log_likelihood"`
		AIC           *float64 `json:"aic"`
	}{plain(m), finiteOrNil(m.LogLikelihood), finiteOrNil(m.AIC)})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *ARModel) UnmarshalJSON(data []byte) error {
	type plain ARModel
	aux := struct {
		*plain
		LogLikelihood *float64 `json:"log_likelihood"`
		AIC           *float64 `json:"aic"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	m.LogLikelihood, m.AIC = restoreLikelihood(aux.LogLikelihood, aux.AIC, m.Sigma2 == 0)
	return nil
}

// MarshalJSON implements json.Marshaler
func (mi ModelInfo) MarshalJSON() ([]byte, error) {
	type plain ModelInfo
	return json.Marshal(struct {
		plain
		LogLikelihood *float64 `json:"log_likelihood"`
		AIC           *float64 `json:"aic"`
	}{plain(mi), finiteOrNil(mi.LogLikelihood), finiteOrNil(mi.AIC)})
}

// UnmarshalJSON implements json.Unmarshaler
func (mi *ModelInfo) UnmarshalJSON(data []byte) error {
	type plain ModelInfo
	aux := struct {
		*plain
		LogLikelihood *float64 `json:"log_likelihood"`
		AIC           *float64 `json:"aic"`
	}{plain: (*plain)(mi)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	sigma2, ok := mi.Parameters["sigma2"].(float64)
	mi.LogLikelihood, mi.AIC = restoreLikelihood(aux.LogLikelihood, aux.AIC, ok && sigma2 == 0)
	return nil
}
