package keypoint

import (
	"math"
	"testing"
)

const tol = 1e-9

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		angle    float64
		expected float64
	}{
		{0, 0},
		{math.Pi / 2, math.Pi / 2},
		{math.Pi, math.Pi},
		{3 * math.Pi / 2, 3 * math.Pi / 2},
		{2 * math.Pi, 0},
		{-math.Pi / 2, 3 * math.Pi / 2},
		{-math.Pi, math.Pi},
		{-3 * math.Pi / 2, math.Pi / 2},
		{-2 * math.Pi, 0},
		{5 * math.Pi, math.Pi},
		{-7 * math.Pi / 2, math.Pi / 2},
	}

	for _, tt := range tests {
		got := NormalizeAngle(tt.angle)
		if math.Abs(got-tt.expected) > tol {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.angle, got, tt.expected)
		}
		if got < 0 || got >= 2*math.Pi {
			t.Errorf("NormalizeAngle(%v) = %v, outside [0, 2π)", tt.angle, got)
		}
	}
}

func TestNormalizeAngleRange(t *testing.T) {
	// A sweep of arbitrary angles must always land in [0, 2π) and keep the
	// value congruent modulo 2π.
	for a := -25.0; a <= 25.0; a += 0.37 {
		got := NormalizeAngle(a)
		if got < 0 || got >= 2*math.Pi {
			t.Fatalf("NormalizeAngle(%v) = %v, outside [0, 2π)", a, got)
		}
		diff := math.Mod(got-a, 2*math.Pi)
		if math.Abs(diff) > 1e-9 && math.Abs(math.Abs(diff)-2*math.Pi) > 1e-9 {
			t.Fatalf("NormalizeAngle(%v) = %v, not congruent mod 2π", a, got)
		}
	}
}
