package nbstat

import (
	"math"

	"github.com/tokenme/probab/dst"
	"gonum.org/v1/gonum/stat/distuv"
)

// pseudoCount keeps fold changes finite when one group is unexpressed.
const pseudoCount = 0.5

// Log2FoldChange returns the moderated log2 ratio of group B over group A
// mean normalized counts.
func Log2FoldChange(groupA, groupB []float64) float64 {
	return math.Log2((mean(groupB) + pseudoCount) / (mean(groupA) + pseudoCount))
}

// WaldTest returns the log2 fold change of group B over group A, its standard
// error, and the two-sided p-value of a z-test against zero. The standard
// error comes from the delta method on the negative-binomial variance
// mu + phi*mu^2 of each group mean.
func WaldTest(groupA, groupB []float64, phi float64) (lfc, se, p float64) {
	lfc = Log2FoldChange(groupA, groupB)

	se = math.Sqrt(log2MeanVariance(groupA, phi) + log2MeanVariance(groupB, phi))
	if se == 0 {
		if lfc == 0 {
			return lfc, se, 1
		}
		return lfc, se, 0
	}

	z := lfc / se
	p = 2 * distuv.UnitNormal.CDF(-math.Abs(z))

	return lfc, se, p
}

// LRTest returns the p-value of a likelihood-ratio test comparing a shared
// mean for both groups against separate group means, with the dispersion held
// fixed. The deviance is referred to a chi-square with one degree of freedom.
func LRTest(groupA, groupB []float64, phi float64) (p float64) {
	// ChiSquareCDF panics on pathological input rather than returning an
	// error; treat that as an untestable gene.
	p = 1.0
	defer func() { recover() }()

	muA, muB := mean(groupA), mean(groupB)

	pooled := append(append([]float64{}, groupA...), groupB...)
	mu0 := mean(pooled)

	llAlt := logLikelihood(groupA, muA, phi) + logLikelihood(groupB, muB, phi)
	llNull := logLikelihood(pooled, mu0, phi)

	deviance := 2 * (llAlt - llNull)
	if deviance < 0 {
		deviance = 0
	}

	p = 1.0 - dst.ChiSquareCDF(1)(deviance)

	return p
}

func logLikelihood(counts []float64, mu, phi float64) float64 {
	ll := 0.0
	for _, y := range counts {
		ll += LogPMF(y, mu, phi)
	}

	return ll
}

// log2MeanVariance is the delta-method variance of the log2 of a group's mean
// count: Var(mean)/(mean*ln2)^2, with the mean floored at the pseudo-count so
// that unexpressed groups still produce a finite (wide) interval.
func log2MeanVariance(group []float64, phi float64) float64 {
	m := math.Max(mean(group), pseudoCount)
	varMean := (m + phi*m*m) / float64(len(group))

	ln2 := math.Ln2

	return varMean / (m * m * ln2 * ln2)
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}

	sum := 0.0
	for _, x := range v {
		sum += x
	}

	return sum / float64(len(v))
}
