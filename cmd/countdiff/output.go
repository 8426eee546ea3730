package main

import (
	"log"
	"os"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/gocarina/gocsv"

	"github.com/carbocation/rnaseqdiff/countmatrix"
	"github.com/carbocation/rnaseqdiff/nbstat"
)

func writeTables(prefix string, filtered, normalized *countmatrix.Matrix, results []nbstat.Result) error {
	if err := writeMatrix(prefix+".filtered_counts.tsv", filtered); err != nil {
		return err
	}

	if err := writeMatrix(prefix+".normalized_counts.tsv", normalized); err != nil {
		return err
	}

	f, err := os.Create(prefix + ".results.csv")
	if err != nil {
		return err
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&results, f); err != nil {
		return err
	}
	log.Println("Wrote", prefix+".results.csv")

	return nil
}

func writeMatrix(filename string, m *countmatrix.Matrix) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := m.WriteTSV(f, '\t'); err != nil {
		return err
	}
	log.Println("Wrote", filename)

	return nil
}

// printPValueHistogram draws the raw p-value distribution in the terminal. A
// healthy experiment shows a flat distribution with a spike near zero;
// anything else suggests a miscalibrated dispersion or a batch effect.
func printPValueHistogram(pvalues []float64) {
	if len(pvalues) == 0 {
		return
	}

	log.Println("Raw p-value distribution:")

	hist := histogram.Hist(20, pvalues)
	if err := histogram.Fprint(os.Stdout, hist, histogram.Linear(40)); err != nil {
		log.Println("Could not render p-value histogram:", err)
	}
}
