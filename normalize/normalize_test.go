package normalize

import (
	"math"
	"testing"

	"github.com/carbocation/rnaseqdiff/countmatrix"
)

func TestMedianOfRatios(t *testing.T) {
	// Sample 2 is exactly 4x sample 1. Geometric means: sqrt(2*8)=4,
	// sqrt(4*16)=8, sqrt(6*24)=12. All ratios are 0.5 for sample 1 and 2 for
	// sample 2, so those are the medians.
	m := &countmatrix.Matrix{
		Genes:   []string{"g1", "g2", "g3"},
		Samples: []string{"s1", "s2"},
		Counts: [][]float64{
			{2, 8},
			{4, 16},
			{6, 24},
		},
	}

	factors, err := MedianOfRatios(m)
	if err != nil {
		t.Fatal(err)
	}

	expected := []float64{0.5, 2}
	for j := range expected {
		if math.Abs(factors[j]-expected[j]) > 1e-12 {
			t.Fatalf("got %v, expected %v", factors, expected)
		}
	}
}

func TestMedianOfRatiosSkipsGenesWithZeros(t *testing.T) {
	// The zero-containing gene must not drag factors toward zero
	m := &countmatrix.Matrix{
		Genes:   []string{"g1", "g2"},
		Samples: []string{"s1", "s2"},
		Counts: [][]float64{
			{10, 10},
			{0, 1000},
		},
	}

	factors, err := MedianOfRatios(m)
	if err != nil {
		t.Fatal(err)
	}

	for j, f := range factors {
		if math.Abs(f-1) > 1e-12 {
			t.Fatalf("factor %d: got %f, expected 1", j, f)
		}
	}
}

func TestMedianOfRatiosNoUniversalGene(t *testing.T) {
	m := &countmatrix.Matrix{
		Genes:   []string{"g1", "g2"},
		Samples: []string{"s1", "s2"},
		Counts: [][]float64{
			{10, 0},
			{0, 10},
		},
	}

	if _, err := MedianOfRatios(m); err == nil {
		t.Fatal("expected an error when no gene is expressed in every sample")
	}
}

func TestTMMFactorsProportionalLibraries(t *testing.T) {
	// Sample 2 is a deeper sequencing of the same library: every log ratio of
	// depth-scaled counts is 0, so both factors must be 1.
	m := &countmatrix.Matrix{
		Genes:   []string{"g1", "g2", "g3", "g4"},
		Samples: []string{"s1", "s2"},
		Counts: [][]float64{
			{10, 20},
			{50, 100},
			{200, 400},
			{35, 70},
		},
	}

	factors, err := TMMFactors(m)
	if err != nil {
		t.Fatal(err)
	}

	for j, f := range factors {
		if math.Abs(f-1) > 1e-9 {
			t.Fatalf("factor %d: got %f, expected 1", j, f)
		}
	}
}

func TestTMMFactorsMultiplyToOne(t *testing.T) {
	m := &countmatrix.Matrix{
		Genes:   []string{"g1", "g2", "g3", "g4", "g5"},
		Samples: []string{"s1", "s2", "s3"},
		Counts: [][]float64{
			{10, 25, 40},
			{50, 90, 10},
			{200, 140, 400},
			{35, 70, 15},
			{500, 200, 300},
		},
	}

	factors, err := TMMFactors(m)
	if err != nil {
		t.Fatal(err)
	}

	product := 1.0
	for _, f := range factors {
		if f <= 0 {
			t.Fatalf("non-positive factor in %v", factors)
		}
		product *= f
	}
	if math.Abs(product-1) > 1e-9 {
		t.Fatalf("factors %v multiply to %f, expected 1", factors, product)
	}
}

func TestTMMFactorsSingleSample(t *testing.T) {
	m := &countmatrix.Matrix{
		Genes:   []string{"g1"},
		Samples: []string{"s1"},
		Counts:  [][]float64{{10}},
	}

	if _, err := TMMFactors(m); err == nil {
		t.Fatal("expected an error with a single sample")
	}
}

func TestEffectiveLibSizes(t *testing.T) {
	got := EffectiveLibSizes([]float64{100, 200}, []float64{0.5, 2})
	if got[0] != 50 || got[1] != 400 {
		t.Fatalf("got %v", got)
	}
}

func TestNormalized(t *testing.T) {
	m := &countmatrix.Matrix{
		Genes:   []string{"g1"},
		Samples: []string{"s1", "s2"},
		Counts:  [][]float64{{10, 40}},
	}

	out, err := Normalized(m, []float64{0.5, 2})
	if err != nil {
		t.Fatal(err)
	}

	if out.Counts[0][0] != 20 || out.Counts[0][1] != 20 {
		t.Fatalf("got %v", out.Counts[0])
	}

	// The input must be untouched
	if m.Counts[0][0] != 10 {
		t.Fatal("Normalized modified its input")
	}
}
