// Package normalize computes between-sample scaling factors for count
// matrices. Two schemes are provided: trimmed mean of M-values (the edgeR
// convention) and median-of-ratios (the DESeq convention). Both correct for
// composition bias that raw library-size scaling misses.
package normalize

import (
	"fmt"
	"math"
	"sort"

	"github.com/carbocation/pfx"
	"github.com/montanaflynn/stats"

	"github.com/carbocation/rnaseqdiff/countmatrix"
)

const (
	// Two-sided trim fractions on the log ratios (M) and absolute
	// expression (A) before averaging.
	logRatioTrim = 0.30
	sumTrim      = 0.05
)

// TMMFactors computes a trimmed-mean-of-M-values scaling factor per sample.
// The reference sample is the one whose upper-quartile expression is closest
// to the mean upper quartile. For every other sample, genes expressed in both
// it and the reference contribute a log ratio; the most extreme ratios and the
// most extreme expression levels are trimmed, and the rest are averaged with
// inverse-variance weights. Factors are rescaled so they multiply to 1.
func TMMFactors(m *countmatrix.Matrix) ([]float64, error) {
	if m.NSamples() < 2 {
		return nil, fmt.Errorf("normalize: TMM requires at least 2 samples, got %d", m.NSamples())
	}

	libSizes := m.LibrarySizes()
	for j, ls := range libSizes {
		if ls <= 0 {
			return nil, fmt.Errorf("normalize: sample %s has empty library", m.Samples[j])
		}
	}

	ref, err := chooseReference(m, libSizes)
	if err != nil {
		return nil, err
	}

	factors := make([]float64, m.NSamples())
	for j := range factors {
		if j == ref {
			factors[j] = 1
			continue
		}

		f, err := pairwiseTMM(m, libSizes, j, ref)
		if err != nil {
			return nil, err
		}
		factors[j] = f
	}

	// Rescale so the factors multiply to 1, keeping the overall scale of the
	// counts unchanged.
	logSum := 0.0
	for _, f := range factors {
		logSum += math.Log(f)
	}
	scale := math.Exp(logSum / float64(len(factors)))
	for j := range factors {
		factors[j] /= scale
	}

	return factors, nil
}

// EffectiveLibSizes multiplies raw library sizes by their scaling factors.
func EffectiveLibSizes(libSizes, factors []float64) []float64 {
	out := make([]float64, len(libSizes))
	for j := range libSizes {
		out[j] = libSizes[j] * factors[j]
	}

	return out
}

// chooseReference picks the column whose upper quartile of scaled counts is
// closest to the mean upper quartile across all columns.
func chooseReference(m *countmatrix.Matrix, libSizes []float64) (int, error) {
	uq := make([]float64, m.NSamples())
	col := make([]float64, 0, m.NGenes())
	for j := 0; j < m.NSamples(); j++ {
		col = col[:0]
		for i := 0; i < m.NGenes(); i++ {
			col = append(col, m.Counts[i][j]/libSizes[j])
		}

		q, err := stats.Percentile(col, 75)
		if err != nil {
			return 0, pfx.Err(err)
		}
		uq[j] = q
	}

	meanUQ, err := stats.Mean(uq)
	if err != nil {
		return 0, pfx.Err(err)
	}

	ref, best := 0, math.Inf(1)
	for j, q := range uq {
		if d := math.Abs(q - meanUQ); d < best {
			ref, best = j, d
		}
	}

	return ref, nil
}

type maGene struct {
	m float64 // log2 ratio
	a float64 // mean log2 abundance
	w float64 // inverse asymptotic variance
}

func pairwiseTMM(cm *countmatrix.Matrix, libSizes []float64, j, ref int) (float64, error) {
	obsN, refN := libSizes[j], libSizes[ref]

	genes := make([]maGene, 0, cm.NGenes())
	for i := 0; i < cm.NGenes(); i++ {
		obs, refC := cm.Counts[i][j], cm.Counts[i][ref]
		if obs == 0 || refC == 0 {
			continue
		}

		g := maGene{
			m: math.Log2((obs / obsN) / (refC / refN)),
			a: 0.5 * math.Log2((obs/obsN)*(refC/refN)),
			w: 1 / ((obsN-obs)/(obsN*obs) + (refN-refC)/(refN*refC)),
		}
		genes = append(genes, g)
	}

	if len(genes) == 0 {
		return 0, fmt.Errorf("normalize: samples %s and %s share no expressed genes", cm.Samples[j], cm.Samples[ref])
	}

	keep := doubleTrim(genes)
	if len(keep) == 0 {
		// Fully trimmed away happens with tiny gene sets; fall back to the
		// untrimmed set rather than failing.
		keep = genes
	}

	num, den := 0.0, 0.0
	for _, g := range keep {
		num += g.w * g.m
		den += g.w
	}

	return math.Exp2(num / den), nil
}

// doubleTrim keeps genes whose M rank is inside the central 1-2*logRatioTrim
// span and whose A rank is inside the central 1-2*sumTrim span.
func doubleTrim(genes []maGene) []maGene {
	n := len(genes)

	mRank := ranks(genes, func(g maGene) float64 { return g.m })
	aRank := ranks(genes, func(g maGene) float64 { return g.a })

	mLo, mHi := int(math.Floor(float64(n)*logRatioTrim)), n-int(math.Floor(float64(n)*logRatioTrim))
	aLo, aHi := int(math.Floor(float64(n)*sumTrim)), n-int(math.Floor(float64(n)*sumTrim))

	var out []maGene
	for i, g := range genes {
		if mRank[i] >= mLo && mRank[i] < mHi && aRank[i] >= aLo && aRank[i] < aHi {
			out = append(out, g)
		}
	}

	return out
}

func ranks(genes []maGene, key func(maGene) float64) []int {
	idx := make([]int, len(genes))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return key(genes[idx[a]]) < key(genes[idx[b]]) })

	out := make([]int, len(genes))
	for rank, i := range idx {
		out[i] = rank
	}

	return out
}
