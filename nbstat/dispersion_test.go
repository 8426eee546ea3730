package nbstat

import (
	"math"
	"testing"

	"github.com/carbocation/rnaseqdiff/countmatrix"
)

func twoGroupMatrix(rows [][]float64) (*countmatrix.Matrix, [][]int) {
	m := &countmatrix.Matrix{
		Samples: []string{"a1", "a2", "b1", "b2"},
		Counts:  rows,
	}
	for range rows {
		m.Genes = append(m.Genes, "g")
	}

	return m, [][]int{{0, 1}, {2, 3}}
}

func TestCommonDispersionMomentEstimate(t *testing.T) {
	// Group A: counts 4,6 -> mean 5, variance 2, moment (2-5)/25 = -0.12
	// Group B: counts 14,26 -> mean 20, variance 72, moment (72-20)/400 = 0.13
	// Pooled over equal df: 0.005
	m, groups := twoGroupMatrix([][]float64{{4, 6, 14, 26}})

	common, err := CommonDispersion(m, groups)
	if err != nil {
		t.Fatal(err)
	}
	if expected := 0.005; math.Abs(common-expected) > 1e-12 {
		t.Fatalf("got %.6f, expected %.6f", common, expected)
	}
}

func TestCommonDispersionIsMedian(t *testing.T) {
	// Three genes with distinct pooled moments; the middle one wins
	m, groups := twoGroupMatrix([][]float64{
		{10, 10, 10, 10}, // identical replicates: moment below 0, clamped to 0
		{4, 6, 14, 26},   // 0.005 as above
		{2, 38, 5, 75},   // wildly variable: large positive moment
	})

	common, err := CommonDispersion(m, groups)
	if err != nil {
		t.Fatal(err)
	}
	if expected := 0.005; math.Abs(common-expected) > 1e-12 {
		t.Fatalf("got %.6f, expected %.6f", common, expected)
	}
}

func TestCommonDispersionNoReplicates(t *testing.T) {
	m := &countmatrix.Matrix{
		Genes:   []string{"g1"},
		Samples: []string{"a", "b"},
		Counts:  [][]float64{{5, 9}},
	}

	if _, err := CommonDispersion(m, [][]int{{0}, {1}}); err == nil {
		t.Fatal("expected an error with single-sample groups")
	}
}

func TestTagwiseDispersionsShrinkage(t *testing.T) {
	m, groups := twoGroupMatrix([][]float64{{4, 6, 14, 26}})
	common := 0.5

	// priorN=0: pure gene-wise moment (clamped at 0)
	if got := TagwiseDispersions(m, groups, common, 0); math.Abs(got[0]-0.005) > 1e-12 {
		t.Fatalf("unshrunk: got %.6f, expected 0.005", got[0])
	}

	// Enormous prior: collapses onto the common value
	if got := TagwiseDispersions(m, groups, common, 1e12); math.Abs(got[0]-common) > 1e-6 {
		t.Fatalf("fully shrunk: got %.6f, expected %.6f", got[0], common)
	}

	// Intermediate prior lands strictly between
	got := TagwiseDispersions(m, groups, common, 10)
	if got[0] <= 0.005 || got[0] >= common {
		t.Fatalf("shrunk value %.6f not between 0.005 and %.2f", got[0], common)
	}
}

func TestTagwiseDispersionsUnestimableGeneGetsCommon(t *testing.T) {
	// All-zero gene has no usable moment estimate
	m, groups := twoGroupMatrix([][]float64{{0, 0, 0, 0}})

	if got := TagwiseDispersions(m, groups, 0.25, 10); got[0] != 0.25 {
		t.Fatalf("got %.6f, expected the common value 0.25", got[0])
	}
}
