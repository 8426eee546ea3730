// Package countmatrix loads and manipulates genes-by-samples read count
// matrices and their accompanying sample metadata.
package countmatrix

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Matrix is a dense genes-by-samples table of raw (or normalized) sequencing
// read counts. Counts[i][j] is the count for Genes[i] in Samples[j]. Raw
// counts are non-negative integers but are held as float64 so that the same
// type can carry normalized values downstream.
type Matrix struct {
	Genes   []string
	Samples []string
	Counts  [][]float64
}

// NGenes returns the number of rows.
func (m *Matrix) NGenes() int { return len(m.Genes) }

// NSamples returns the number of columns.
func (m *Matrix) NSamples() int { return len(m.Samples) }

// LibrarySizes returns the per-sample column sums.
func (m *Matrix) LibrarySizes() []float64 {
	out := make([]float64, m.NSamples())
	for _, row := range m.Counts {
		for j, v := range row {
			out[j] += v
		}
	}

	return out
}

// Row returns the counts for the gene at index i.
func (m *Matrix) Row(i int) []float64 { return m.Counts[i] }

// Copy returns a deep copy of the matrix.
func (m *Matrix) Copy() *Matrix {
	out := &Matrix{
		Genes:   append([]string{}, m.Genes...),
		Samples: append([]string{}, m.Samples...),
		Counts:  make([][]float64, len(m.Counts)),
	}
	for i, row := range m.Counts {
		out.Counts[i] = append([]float64{}, row...)
	}

	return out
}

// CPM returns a new matrix whose entries are counts per million mapped reads,
// using the provided library sizes (pass nil to use the raw column sums).
func (m *Matrix) CPM(libSizes []float64) (*Matrix, error) {
	if libSizes == nil {
		libSizes = m.LibrarySizes()
	}
	if len(libSizes) != m.NSamples() {
		return nil, fmt.Errorf("countmatrix: %d library sizes for %d samples", len(libSizes), m.NSamples())
	}
	for j, ls := range libSizes {
		if ls <= 0 {
			return nil, fmt.Errorf("countmatrix: sample %s has library size %f", m.Samples[j], ls)
		}
	}

	out := m.Copy()
	for _, row := range out.Counts {
		for j := range row {
			row[j] = row[j] / libSizes[j] * 1e6
		}
	}

	return out, nil
}

// LogCPM returns log2(CPM + prior). A prior of 1 is conventional for plotting
// and PCA; it keeps zero counts finite.
func (m *Matrix) LogCPM(libSizes []float64, prior float64) (*Matrix, error) {
	out, err := m.CPM(libSizes)
	if err != nil {
		return nil, err
	}

	for _, row := range out.Counts {
		for j := range row {
			row[j] = math.Log2(row[j] + prior)
		}
	}

	return out, nil
}

// WriteTSV writes the matrix with a header row. The first column is the gene
// identifier; format controls the count rendering ('f' with -1 precision
// round-trips raw integers untouched).
func (m *Matrix) WriteTSV(w io.Writer, delim rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delim

	header := append([]string{"gene"}, m.Samples...)
	if err := cw.Write(header); err != nil {
		return err
	}

	rec := make([]string, 1+m.NSamples())
	for i, row := range m.Counts {
		rec[0] = m.Genes[i]
		for j, v := range row {
			rec[1+j] = strconv.FormatFloat(v, 'f', -1, 64)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}
