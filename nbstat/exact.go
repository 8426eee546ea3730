package nbstat

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Above this many total pseudo-counts, exhaustive enumeration of the
// conditional distribution buys nothing over the asymptotic test.
const exactTotalLimit = 5000

// ExactTest returns the two-sided p-value for a difference in expression
// between two groups of a single gene. sumA and sumB are the group total
// pseudo-counts after the samples have been scaled to a common library size;
// nA and nB are the group sizes; phi is the per-sample dispersion.
//
// Conditional on the grand total, every split of the total between the two
// group sums is enumerated under the null of a shared mean, and the p-value is
// the summed probability of all splits at most as likely as the observed one.
// For large totals the test switches to a normal approximation on the
// difference of group means.
func ExactTest(sumA, sumB float64, nA, nB int, phi float64) float64 {
	total := math.Round(sumA + sumB)
	if total <= 0 {
		// No reads at all: nothing to test.
		return 1
	}

	if total > exactTotalLimit {
		return approxTest(sumA, sumB, nA, nB, phi)
	}

	fA, fB := float64(nA), float64(nB)
	mu := total / (fA + fB)

	// The sum of n i.i.d. NB(mu, phi) variables is NB(n*mu, phi/n).
	muA, phiA := fA*mu, phi/fA
	muB, phiB := fB*mu, phi/fB

	n := int(total)
	probs := make([]float64, n+1)
	sum := 0.0
	for k := 0; k <= n; k++ {
		p := math.Exp(LogPMF(float64(k), muA, phiA) + LogPMF(total-float64(k), muB, phiB))
		probs[k] = p
		sum += p
	}
	if sum <= 0 {
		return 1
	}

	kObs := int(math.Round(sumA))
	if kObs < 0 {
		kObs = 0
	} else if kObs > n {
		kObs = n
	}
	pObs := probs[kObs]

	// Tolerance guards against float noise excluding splits that are exactly
	// as likely as the observed one.
	tail := 0.0
	for _, p := range probs {
		if p <= pObs*(1+1e-10) {
			tail += p
		}
	}

	p := tail / sum
	if p > 1 {
		p = 1
	}

	return p
}

// approxTest is the large-total fallback: a z-test on the difference of group
// means with negative-binomial variance.
func approxTest(sumA, sumB float64, nA, nB int, phi float64) float64 {
	fA, fB := float64(nA), float64(nB)

	meanA, meanB := sumA/fA, sumB/fB
	mu := (sumA + sumB) / (fA + fB)

	variance := (mu + phi*mu*mu) * (1/fA + 1/fB)
	if variance <= 0 {
		if meanA == meanB {
			return 1
		}
		return 0
	}

	z := (meanA - meanB) / math.Sqrt(variance)

	return 2 * distuv.UnitNormal.CDF(-math.Abs(z))
}
