package forecast

import (
	"math"
	"math/rand"
	"testing"
	"time"
)

// Common test data and helpers for all forecast tests

var (
	testBaseTime = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	testInterval = 30 * 24 * time.Hour
)

// employmentSeries returns 240 monthly employment-rate values from 54.76 to
// 61.94 with a slow upward drift, yearly seasonality and deterministic noise.
func employmentSeries() []float64 {
	const n = 240
	rng := rand.New(rand.NewSource(2024))
	values := make([]float64, n)
	for t := 0; t < n; t++ {
		drift := 54.76 + (61.94-54.76)*float64(t)/float64(n-1)
		seasonal := 0.6 * math.Sin(2*math.Pi*float64(t)/12)
		values[t] = drift + seasonal + 0.15*rng.NormFloat64()
	}
	values[0], values[1], values[2] = 54.76, 55.1, 55.3
	values[n-1] = 61.94
	return values
}

// simulateAR draws n values of a zero-mean AR process with unit innovations
// after a burn-in period.
func simulateAR(phi []float64, n int, seed int64) []float64 {
	const burnIn = 200
	rng := rand.New(rand.NewSource(seed))
	x := make([]float64, n+burnIn)
	for t := range x {
		v := rng.NormFloat64()
		for k, c := range phi {
			if t-1-k >= 0 {
				v += c * x[t-1-k]
			}
		}
		x[t] = v
	}
	return x[burnIn:]
}

// cumulate turns a differenced series into a level series starting at start.
func cumulate(d []float64, start float64) []float64 {
	z := make([]float64, len(d)+1)
	z[0] = start
	for i, v := range d {
		z[i+1] = z[i] + v
	}
	return z
}

func toDataPoints(values []float64) []DataPoint {
	data := make([]DataPoint, len(values))
	for i, v := range values {
		data[i] = DataPoint{
			Time:  testBaseTime.Add(testInterval * time.Duration(i)),
			Value: v,
		}
	}
	return data
}

func assertNonDecreasing(t *testing.T, values []float64) {
	t.Helper()
	for j := 1; j < len(values); j++ {
		if values[j] < values[j-1] {
			t.Errorf("values[%d]=%v < values[%d]=%v", j, values[j], j-1, values[j-1])
		}
	}
}
