package nbstat

import (
	"math"
	"testing"
)

func TestExactTestBalancedSplit(t *testing.T) {
	// An even split between equal-sized groups is the modal outcome under
	// the null, so every split is at most as likely and p must be 1.
	for _, phi := range []float64{0, 0.1, 0.5} {
		if p := ExactTest(50, 50, 3, 3, phi); math.Abs(p-1) > 1e-9 {
			t.Fatalf("phi=%f: balanced split gave p=%f, expected 1", phi, p)
		}
	}
}

func TestExactTestExtremeSplit(t *testing.T) {
	if p := ExactTest(0, 200, 3, 3, 0.05); p > 1e-4 {
		t.Fatalf("all counts in one group gave p=%f, expected near 0", p)
	}
}

func TestExactTestMonotoneInImbalance(t *testing.T) {
	// A more lopsided split of the same total must not be less surprising.
	pMild := ExactTest(40, 60, 3, 3, 0.1)
	pHarsh := ExactTest(10, 90, 3, 3, 0.1)

	if pHarsh >= pMild {
		t.Fatalf("pHarsh=%f >= pMild=%f", pHarsh, pMild)
	}
}

func TestExactTestBounds(t *testing.T) {
	for _, v := range [][2]float64{{0, 0}, {1, 0}, {17, 3}, {1000, 10}, {3, 1000}} {
		p := ExactTest(v[0], v[1], 2, 4, 0.2)
		if p < 0 || p > 1 || math.IsNaN(p) {
			t.Fatalf("ExactTest(%v) = %f out of [0,1]", v, p)
		}
	}
}

func TestExactTestZeroTotal(t *testing.T) {
	if p := ExactTest(0, 0, 3, 3, 0.1); p != 1 {
		t.Fatalf("no reads gave p=%f, expected 1", p)
	}
}

func TestExactTestLargeTotalApproximation(t *testing.T) {
	// Totals above the enumeration limit take the asymptotic path; equal
	// group means must still give p=1 and a large shift must stay small.
	if p := ExactTest(50000, 50000, 3, 3, 0.1); math.Abs(p-1) > 1e-9 {
		t.Fatalf("balanced large split gave p=%f, expected 1", p)
	}

	if p := ExactTest(10000, 90000, 3, 3, 0.01); p > 1e-6 {
		t.Fatalf("lopsided large split gave p=%f, expected near 0", p)
	}
}

func TestExactTestUnequalGroupSizes(t *testing.T) {
	// With nA=1 and nB=3 and per-sample means equal (30 vs 90 total), the
	// observed split sits at the conditional mode, so p should be high.
	p := ExactTest(30, 90, 1, 3, 0.1)
	if p < 0.5 {
		t.Fatalf("proportional split across unequal groups gave p=%f, expected high", p)
	}
}
