package padjust

import (
	"math"
	"testing"
)

// Truth values calculated with R's p.adjust(method="BH")
func TestBenjaminiHochberg(t *testing.T) {
	for _, v := range []struct {
		p        []float64
		expected []float64
	}{
		{
			p:        []float64{0.01, 0.02, 0.03, 0.04, 0.05},
			expected: []float64{0.05, 0.05, 0.05, 0.05, 0.05},
		},
		{
			p:        []float64{0.005, 0.009, 0.05, 0.5},
			expected: []float64{0.018, 0.018, 0.05 * 4.0 / 3.0, 0.5},
		},
		{
			// Unsorted input: adjustment must respect ranks, not positions
			p:        []float64{0.5, 0.005, 0.05, 0.009},
			expected: []float64{0.5, 0.018, 0.05 * 4.0 / 3.0, 0.018},
		},
		{
			p:        []float64{1},
			expected: []float64{1},
		},
		{
			// Values that would exceed 1 after scaling are capped
			p:        []float64{0.9, 0.95},
			expected: []float64{0.95, 0.95},
		},
	} {
		got := BenjaminiHochberg(v.p)
		if len(got) != len(v.expected) {
			t.Fatalf("got %d values, expected %d", len(got), len(v.expected))
		}
		for i := range got {
			if math.Abs(got[i]-v.expected[i]) > 1e-9 {
				t.Fatalf("\nInput: %v\nGot: %v\nExpected: %v", v.p, got, v.expected)
			}
		}
	}
}

func TestBenjaminiHochbergEmpty(t *testing.T) {
	if got := BenjaminiHochberg(nil); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}
