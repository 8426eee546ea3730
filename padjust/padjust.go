// Package padjust corrects p-values for multiple hypothesis testing.
package padjust

import "sort"

// BenjaminiHochberg returns FDR-adjusted p-values in the same order as the
// input. Each adjusted value is p*m/rank, made monotone from the largest
// p-value downward and capped at 1.
func BenjaminiHochberg(pvalues []float64) []float64 {
	m := len(pvalues)
	if m == 0 {
		return nil
	}

	idx := make([]int, m)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return pvalues[idx[a]] < pvalues[idx[b]] })

	out := make([]float64, m)
	running := 1.0
	for rank := m; rank >= 1; rank-- {
		i := idx[rank-1]

		adj := pvalues[i] * float64(m) / float64(rank)
		if adj < running {
			running = adj
		}
		out[i] = running
	}

	return out
}
