// Package pca projects samples of a count matrix onto their principal
// components for quality-control visualization.
package pca

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/carbocation/rnaseqdiff/countmatrix"
)

// Projection holds per-sample coordinates on the first K principal components
// and the fraction of total variance each component explains.
type Projection struct {
	Samples      []string
	Coordinates  [][]float64
	VarExplained []float64
}

// Project runs PCA treating samples as observations and genes as variables.
// The caller should pass log-scale values (e.g. Matrix.LogCPM); raw counts
// let the few most highly expressed genes dominate every component. k is
// capped at the number of informative components.
func Project(logExpr *countmatrix.Matrix, k int) (*Projection, error) {
	n, d := logExpr.NSamples(), logExpr.NGenes()
	if n < 2 {
		return nil, fmt.Errorf("pca: need at least 2 samples, got %d", n)
	}
	if k < 1 {
		return nil, fmt.Errorf("pca: need at least 1 component, got %d", k)
	}

	// Samples as rows: the PCA input is the transpose of the count matrix.
	data := mat.NewDense(n, d, nil)
	for i := 0; i < d; i++ {
		for j := 0; j < n; j++ {
			data.Set(j, i, logExpr.Counts[i][j])
		}
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		return nil, fmt.Errorf("pca: principal component decomposition failed")
	}

	vars := pc.VarsTo(nil)
	if k > len(vars) {
		k = len(vars)
	}

	var vec mat.Dense
	pc.VectorsTo(&vec)

	// Center the columns, then project onto the leading k components.
	centered := mat.DenseCopyOf(data)
	col := make([]float64, n)
	for i := 0; i < d; i++ {
		mat.Col(col, i, data)
		mean := 0.0
		for _, v := range col {
			mean += v
		}
		mean /= float64(n)
		for j := 0; j < n; j++ {
			centered.Set(j, i, col[j]-mean)
		}
	}

	var proj mat.Dense
	proj.Mul(centered, vec.Slice(0, d, 0, k))

	total := 0.0
	for _, v := range vars {
		total += v
	}

	out := &Projection{
		Samples:      append([]string{}, logExpr.Samples...),
		Coordinates:  make([][]float64, n),
		VarExplained: make([]float64, k),
	}
	for j := 0; j < n; j++ {
		row := make([]float64, k)
		for c := 0; c < k; c++ {
			row[c] = proj.At(j, c)
		}
		out.Coordinates[j] = row
	}
	for c := 0; c < k; c++ {
		if total > 0 {
			out.VarExplained[c] = vars[c] / total
		}
	}

	return out, nil
}
