package countmatrix

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
)

// Sample pairs a sample name with its condition label, as found in the
// phenotype file.
type Sample struct {
	Name      string `csv:"sample"`
	Condition string `csv:"condition"`
}

// Load parses a genes-by-samples count table. The first row is a header whose
// first cell names the gene-ID column (its content is ignored) and whose
// remaining cells are sample names. Every subsequent row is one gene.
// Duplicate gene IDs, negative counts, and non-numeric cells are errors.
func Load(r io.Reader, delim rune) (*Matrix, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, pfx.Err(err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("countmatrix: header has %d columns; expected a gene column plus at least one sample", len(header))
	}

	out := &Matrix{Samples: append([]string{}, header[1:]...)}

	seen := make(map[string]struct{})
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, pfx.Err(err)
		}

		gene := strings.TrimSpace(rec[0])
		if _, exists := seen[gene]; exists {
			return nil, fmt.Errorf("countmatrix: line %d: duplicate gene ID %q", line, gene)
		}
		seen[gene] = struct{}{}

		if len(rec) != 1+out.NSamples() {
			return nil, fmt.Errorf("countmatrix: line %d: %d count fields for %d samples", line, len(rec)-1, out.NSamples())
		}

		row := make([]float64, out.NSamples())
		for j, field := range rec[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("countmatrix: line %d: gene %s: %v", line, gene, err)
			}
			if v < 0 || v != float64(int64(v)) {
				return nil, fmt.Errorf("countmatrix: line %d: gene %s: count %s is not a non-negative integer", line, gene, field)
			}
			row[j] = v
		}

		out.Genes = append(out.Genes, gene)
		out.Counts = append(out.Counts, row)
	}

	if out.NGenes() == 0 {
		return nil, fmt.Errorf("countmatrix: no gene rows found")
	}

	return out, nil
}

// ReadSampleList parses a newline-delimited list of sample names, skipping
// blank lines.
func ReadSampleList(r io.Reader) ([]string, error) {
	var out []string

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		out = append(out, name)
	}
	if err := sc.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	return out, nil
}

// LoadPhenotypes parses the sample metadata table (columns: sample, condition).
// Both comma- and tab-delimited files are accepted.
func LoadPhenotypes(r io.Reader, delim rune) ([]Sample, error) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		cr := csv.NewReader(in)
		cr.Comma = delim
		cr.LazyQuotes = true
		return cr
	})

	records := []*Sample{}
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, pfx.Err(err)
	}

	out := make([]Sample, 0, len(records))
	for _, rec := range records {
		if rec.Name == "" || rec.Condition == "" {
			return nil, fmt.Errorf("countmatrix: phenotype row %+v is missing a sample name or condition", *rec)
		}
		out = append(out, *rec)
	}

	return out, nil
}
