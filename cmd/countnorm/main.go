// countnorm normalizes a gene count matrix without running any test. It
// writes the normalized matrix and the per-sample scaling factors.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/carbocation/rnaseqdiff"
	"github.com/carbocation/rnaseqdiff/countmatrix"
	"github.com/carbocation/rnaseqdiff/normalize"
)

func main() {
	var countsFile, method, outPrefix string

	flag.StringVar(&countsFile, "counts", "", "Path to the genes-by-samples count matrix (local or gs://).")
	flag.StringVar(&method, "method", "tmm", "Normalization: tmm (effective library sizes), mor (median-of-ratios), or cpm (counts per million).")
	flag.StringVar(&outPrefix, "out", "countnorm", "Prefix for output files.")
	flag.Parse()

	if countsFile == "" {
		flag.PrintDefaults()
		log.Fatalln("Please provide -counts")
	}

	if err := run(countsFile, method, outPrefix); err != nil {
		log.Fatalln(err)
	}
}

func run(countsFile, method, outPrefix string) error {
	var client *storage.Client
	if strings.HasPrefix(countsFile, "gs://") {
		var err error
		client, err = storage.NewClient(context.Background())
		if err != nil {
			return err
		}
	}

	r, _, err := rnaseqdiff.MaybeOpenFromGoogleStorage(countsFile, client)
	if err != nil {
		return err
	}
	raw, err := io.ReadAll(r)
	r.Close()
	if err != nil {
		return err
	}

	m, err := countmatrix.Load(bytes.NewReader(raw), rnaseqdiff.DetermineDelimiter(bytes.NewReader(raw)))
	if err != nil {
		return err
	}
	log.Println("Loaded", m.NGenes(), "genes x", m.NSamples(), "samples")

	m, dropped := countmatrix.DropEmptyGenes(m)
	log.Println("Dropped", dropped, "genes with zero counts in all samples")

	var normalized *countmatrix.Matrix
	var factors []float64
	switch method {
	case "tmm":
		factors, err = normalize.TMMFactors(m)
		if err != nil {
			return err
		}

		effLib := normalize.EffectiveLibSizes(m.LibrarySizes(), factors)
		normalized, err = m.CPM(effLib)
	case "mor":
		factors, err = normalize.MedianOfRatios(m)
		if err != nil {
			return err
		}

		normalized, err = normalize.Normalized(m, factors)
	case "cpm":
		factors = make([]float64, m.NSamples())
		for j := range factors {
			factors[j] = 1
		}

		normalized, err = m.CPM(nil)
	default:
		return fmt.Errorf("unknown -method %q (want tmm, mor, or cpm)", method)
	}
	if err != nil {
		return err
	}

	f, err := os.Create(outPrefix + ".normalized_counts.tsv")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := normalized.WriteTSV(f, '\t'); err != nil {
		return err
	}
	log.Println("Wrote", outPrefix+".normalized_counts.tsv")

	return writeFactors(outPrefix+".scaling_factors.tsv", m.Samples, factors)
}

func writeFactors(filename string, samples []string, factors []float64) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write([]string{"sample", "factor"}); err != nil {
		return err
	}
	for j, name := range samples {
		if err := w.Write([]string{name, strconv.FormatFloat(factors[j], 'g', 6, 64)}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	log.Println("Wrote", filename)

	return nil
}
