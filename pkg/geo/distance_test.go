package geo

import (
	"math"
	"testing"
)

func TestDistanceKM_SamePoint(t *testing.T) {
	if d := DistanceKM(3.21, 101.62, 3.21, 101.62); d != 0 {
		t.Errorf("expected 0, got %f", d)
	}
}

func TestDistanceKM_KnownDistance(t *testing.T) {
	// Gombak to central Kuala Lumpur, roughly 8 km.
	d := DistanceKM(3.2100, 101.6200, 3.1390, 101.6869)
	if d < 7 || d > 12 {
		t.Errorf("expected 7-12 km, got %f", d)
	}
}

func TestDistanceKM_Symmetric(t *testing.T) {
	a := DistanceKM(3.195, 101.635, 3.170, 101.650)
	b := DistanceKM(3.170, 101.650, 3.195, 101.635)
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("expected symmetric distances, got %f and %f", a, b)
	}
}

func TestRoundKM(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1.234567, 1.23},
		{1.235, 1.24},
		{0, 0},
		{2.999, 3.00},
	}
	for _, c := range cases {
		if got := RoundKM(c.in); got != c.want {
			t.Errorf("RoundKM(%f) = %f, want %f", c.in, got, c.want)
		}
	}
}
