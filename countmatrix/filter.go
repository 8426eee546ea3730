package countmatrix

import (
	"math"

	"github.com/gonum/stat"
)

// DropEmptyGenes removes genes whose count is zero in every sample. These rows
// carry no information and, left in place, produce NaN dispersions and
// undefined fold changes downstream. Returns the filtered matrix and the
// number of genes removed.
func DropEmptyGenes(m *Matrix) (*Matrix, int) {
	keep := func(row []float64) bool {
		for _, v := range row {
			if v > 0 {
				return true
			}
		}
		return false
	}

	return filterRows(m, keep)
}

// FilterLowExpression removes genes that do not reach minCPM in at least
// minSamples samples. This mirrors the usual pre-test filter: genes expressed
// at trace levels are untestable and only inflate the multiple-testing burden.
func FilterLowExpression(m *Matrix, minCPM float64, minSamples int) (*Matrix, int, error) {
	cpm, err := m.CPM(nil)
	if err != nil {
		return nil, 0, err
	}

	out := &Matrix{Samples: append([]string{}, m.Samples...)}
	for i, row := range cpm.Counts {
		n := 0
		for _, v := range row {
			if v >= minCPM {
				n++
			}
		}
		if n < minSamples {
			continue
		}

		out.Genes = append(out.Genes, m.Genes[i])
		out.Counts = append(out.Counts, append([]float64{}, m.Counts[i]...))
	}

	return out, m.NGenes() - out.NGenes(), nil
}

// FlagLibrarySizeOutliers returns the names of samples whose total read count
// lies more than sd standard deviations from the mean library size. Flagged
// samples are reported, not removed; a failed library is a judgment call.
func FlagLibrarySizeOutliers(m *Matrix, sd float64) []string {
	sizes := m.LibrarySizes()
	mean := stat.Mean(sizes, nil)
	stdev := stat.StdDev(sizes, nil)

	var out []string
	for j, v := range sizes {
		if math.Abs(v-mean) > sd*stdev {
			out = append(out, m.Samples[j])
		}
	}

	return out
}

func filterRows(m *Matrix, keep func(row []float64) bool) (*Matrix, int) {
	out := &Matrix{Samples: append([]string{}, m.Samples...)}

	for i, row := range m.Counts {
		if !keep(row) {
			continue
		}
		out.Genes = append(out.Genes, m.Genes[i])
		out.Counts = append(out.Counts, append([]float64{}, row...))
	}

	return out, m.NGenes() - out.NGenes()
}
