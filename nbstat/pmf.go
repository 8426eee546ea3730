// Package nbstat implements negative-binomial testing for two-group
// differential expression: a conditional exact test on pseudo-count totals, a
// Wald test on the log2 fold change, a likelihood-ratio test, and a Fisher
// 2x2 quick screen for shallow libraries.
package nbstat

import (
	"math"
)

// LogPMF returns the natural log of the negative binomial probability mass at
// count k for mean mu and dispersion phi, parameterized so that the variance
// is mu + phi*mu^2. A dispersion of zero degenerates to the Poisson.
func LogPMF(k, mu, phi float64) float64 {
	if mu <= 0 {
		if k == 0 {
			return 0
		}
		return math.Inf(-1)
	}

	if phi <= 0 {
		// Poisson limit
		lg, _ := math.Lgamma(k + 1)
		return k*math.Log(mu) - mu - lg
	}

	r := 1 / phi
	lgKR, _ := math.Lgamma(k + r)
	lgR, _ := math.Lgamma(r)
	lgK1, _ := math.Lgamma(k + 1)

	return lgKR - lgR - lgK1 +
		r*math.Log(r/(r+mu)) +
		k*math.Log(mu/(r+mu))
}
