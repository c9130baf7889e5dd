package utils

import "math"

// ToNullable converts a series to JSON-friendly pointers. NaN and infinities
// become nil, since encoding/json rejects them.
func ToNullable(values []float64) []*float64 {
	if values == nil {
		return nil
	}
	out := make([]*float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		v := v
		out[i] = &v
	}
	return out
}

// FromNullable is the inverse of ToNullable: nil entries become NaN
func FromNullable(values []*float64) []float64 {
	if values == nil {
		return nil
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	return out
}

// FiniteOrZero returns v, or 0 when v is NaN or infinite
func FiniteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
