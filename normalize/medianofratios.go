package normalize

import (
	"fmt"
	"math"

	"github.com/carbocation/pfx"
	"github.com/montanaflynn/stats"

	"github.com/carbocation/rnaseqdiff/countmatrix"
)

// MedianOfRatios computes a DESeq-style size factor per sample: each gene that
// is expressed in every sample contributes its count divided by its geometric
// mean across samples, and a sample's factor is the median of those ratios.
// Dividing a column by its factor puts all samples on a common scale.
func MedianOfRatios(m *countmatrix.Matrix) ([]float64, error) {
	// Geometric mean per gene, restricted to genes expressed everywhere.
	// Genes with any zero would force the geometric mean to zero, so they are
	// excluded from factor estimation (not from the matrix).
	type refGene struct {
		row     []float64
		geoMean float64
	}

	var refGenes []refGene
	for _, row := range m.Counts {
		allPositive := true
		logSum := 0.0
		for _, v := range row {
			if v <= 0 {
				allPositive = false
				break
			}
			logSum += math.Log(v)
		}
		if !allPositive {
			continue
		}

		refGenes = append(refGenes, refGene{
			row:     row,
			geoMean: math.Exp(logSum / float64(len(row))),
		})
	}

	if len(refGenes) == 0 {
		return nil, fmt.Errorf("normalize: no gene is expressed in every sample; cannot compute median-of-ratios factors")
	}

	out := make([]float64, m.NSamples())
	ratios := make([]float64, len(refGenes))
	for j := range out {
		for i, g := range refGenes {
			ratios[i] = g.row[j] / g.geoMean
		}

		med, err := stats.Median(ratios)
		if err != nil {
			return nil, pfx.Err(err)
		}
		if med <= 0 {
			return nil, fmt.Errorf("normalize: sample %s has a non-positive size factor", m.Samples[j])
		}
		out[j] = med
	}

	return out, nil
}

// Normalized returns a copy of the matrix with each column divided by its size
// factor.
func Normalized(m *countmatrix.Matrix, sizeFactors []float64) (*countmatrix.Matrix, error) {
	if len(sizeFactors) != m.NSamples() {
		return nil, fmt.Errorf("normalize: %d size factors for %d samples", len(sizeFactors), m.NSamples())
	}

	out := m.Copy()
	for _, row := range out.Counts {
		for j := range row {
			row[j] /= sizeFactors[j]
		}
	}

	return out, nil
}
