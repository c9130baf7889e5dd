package utils

import (
	"math"
	"testing"
)

func TestToNullable(t *testing.T) {
	in := []float64{1.5, math.NaN(), math.Inf(1), -2}
	out := ToNullable(in)

	if len(out) != len(in) {
		t.Fatalf("expected %d entries, got %d", len(in), len(out))
	}
	if out[0] == nil || *out[0] != 1.5 {
		t.Errorf("out[0] = %v, want 1.5", out[0])
	}
	if out[1] != nil || out[2] != nil {
		t.Errorf("non-finite values should map to nil")
	}
	if out[3] == nil || *out[3] != -2 {
		t.Errorf("out[3] = %v, want -2", out[3])
	}
	if ToNullable(nil) != nil {
		t.Errorf("nil input should stay nil")
	}
}

func TestFromNullable(t *testing.T) {
	a, b := 3.0, 4.0
	out := FromNullable([]*float64{&a, nil, &b})

	if len(out) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(out))
	}
	if out[0] != 3 || out[2] != 4 {
		t.Errorf("unexpected values %v", out)
	}
	if !math.IsNaN(out[1]) {
		t.Errorf("nil should map to NaN, got %v", out[1])
	}
}

func TestFiniteOrZero(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"finite", 2.5, 2.5},
		{"nan", math.NaN(), 0},
		{"pos inf", math.Inf(1), 0},
		{"neg inf", math.Inf(-1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FiniteOrZero(tt.in); got != tt.want {
				t.Errorf("FiniteOrZero(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
