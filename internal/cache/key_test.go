package cache

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyBuilder_Deterministic(t *testing.T) {
	build := func() uint64 {
		return NewKeyBuilder().
			String("arima").
			Int(12).
			Float(0.95).
			Floats([]float64{1, 2, math.NaN()}).
			Time(time.Unix(1700000000, 0)).
			Duration(time.Hour).
			Sum()
	}
	assert.Equal(t, build(), build())
}

func TestKeyBuilder_Distinguishes(t *testing.T) {
	tests := []struct {
		name string
		a, b uint64
	}{
		{
			"string boundaries",
			NewKeyBuilder().String("ab").String("c").Sum(),
			NewKeyBuilder().String("a").String("bc").Sum(),
		},
		{
			"series values",
			NewKeyBuilder().Floats([]float64{1, 2, 3}).Sum(),
			NewKeyBuilder().Floats([]float64{1, 2, 3.0000001}).Sum(),
		},
		{
			"series split",
			NewKeyBuilder().Floats([]float64{1}).Floats([]float64{2}).Sum(),
			NewKeyBuilder().Floats([]float64{1, 2}).Sum(),
		},
		{
			"int vs float",
			NewKeyBuilder().Int(1).Sum(),
			NewKeyBuilder().Float(1).Sum(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, tt.a, tt.b)
		})
	}
}
