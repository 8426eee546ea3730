package nbstat

import (
	"fmt"
	"log"
	"math"

	"github.com/carbocation/pfx"
	"github.com/montanaflynn/stats"

	"github.com/carbocation/rnaseqdiff/countmatrix"
)

// geneDispersion is the method-of-moments dispersion for one gene: within each
// group, the excess of the sample variance over the mean, relative to the
// squared mean, pooled across groups by degrees of freedom. Returns NaN when
// no group has both a positive mean and at least two samples.
func geneDispersion(row []float64, groups [][]int) float64 {
	num, den := 0.0, 0.0
	for _, group := range groups {
		n := len(group)
		if n < 2 {
			continue
		}

		mean := 0.0
		for _, j := range group {
			mean += row[j]
		}
		mean /= float64(n)
		if mean <= 0 {
			continue
		}

		ss := 0.0
		for _, j := range group {
			d := row[j] - mean
			ss += d * d
		}
		variance := ss / float64(n-1)

		df := float64(n - 1)
		num += df * (variance - mean) / (mean * mean)
		den += df
	}

	if den == 0 {
		return math.NaN()
	}

	return num / den
}

// CommonDispersion estimates a single dispersion shared by all genes: the
// median of the per-gene moment estimates (clamped at zero), computed on
// normalized counts. The median is robust to the handful of genes whose
// moment estimate explodes at low counts.
func CommonDispersion(norm *countmatrix.Matrix, groups [][]int) (float64, error) {
	var ests []float64
	for _, row := range norm.Counts {
		phi := geneDispersion(row, groups)
		if math.IsNaN(phi) {
			continue
		}
		ests = append(ests, math.Max(phi, 0))
	}

	if len(ests) == 0 {
		return 0, fmt.Errorf("nbstat: no gene yields a dispersion estimate; are all groups of size 1?")
	}

	common, err := stats.Median(ests)
	if err != nil {
		return 0, pfx.Err(err)
	}

	if common == 0 {
		log.Println("nbstat: common dispersion is 0; counts look Poisson or replicates are identical")
	}

	return common, nil
}

// TagwiseDispersions shrinks each gene's moment estimate toward the common
// dispersion, weighting the common value as priorN pseudo-observations against
// the gene's own residual degrees of freedom. Genes with no usable estimate
// get the common value.
func TagwiseDispersions(norm *countmatrix.Matrix, groups [][]int, common, priorN float64) []float64 {
	df := 0.0
	for _, group := range groups {
		if len(group) > 1 {
			df += float64(len(group) - 1)
		}
	}

	out := make([]float64, norm.NGenes())
	for i, row := range norm.Counts {
		phi := geneDispersion(row, groups)
		if math.IsNaN(phi) {
			out[i] = common
			continue
		}

		out[i] = (priorN*common + df*math.Max(phi, 0)) / (priorN + df)
	}

	return out
}
