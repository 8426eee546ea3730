// countpca projects the samples of a count matrix onto principal components
// of log CPM and writes the coordinates plus a PC1xPC2 scatter plot.
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
	"github.com/carbocation/rnaseqdiff/pca"
	"github.com/carbocation/rnaseqdiff/plot"
)

func main() {
	var countsFile, conditions, outPrefix string
	var components int

	flag.StringVar(&countsFile, "counts", "", "Path to the genes-by-samples count matrix (local or gs://).")
	flag.StringVar(&conditions, "conditions", "", "Optional. Comma-delimited condition labels, one per matrix column, used to color the plot.")
	flag.IntVar(&components, "components", 2, "Number of principal components to write.")
	flag.StringVar(&outPrefix, "out", "countpca", "Prefix for output files.")
	flag.Parse()

	if countsFile == "" {
		flag.PrintDefaults()
		log.Fatalln("Please provide -counts")
	}

	if err := run(countsFile, conditions, components, outPrefix); err != nil {
		log.Fatalln(err)
	}
}

func run(countsFile, conditions string, components int, outPrefix string) error {
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

	m, _ = countmatrix.DropEmptyGenes(m)

	logCPM, err := m.LogCPM(nil, 1)
	if err != nil {
		return err
	}

	proj, err := pca.Project(logCPM, components)
	if err != nil {
		return err
	}

	if err := writeCoordinates(outPrefix+".pca.tsv", proj); err != nil {
		return err
	}

	condList := make([]string, m.NSamples())
	if conditions != "" {
		parts := strings.Split(conditions, ",")
		if len(parts) != m.NSamples() {
			return fmt.Errorf("%d conditions for %d samples", len(parts), m.NSamples())
		}
		for j := range parts {
			condList[j] = strings.TrimSpace(parts[j])
		}
	} else {
		for j := range condList {
			condList[j] = "sample"
		}
	}

	if err := plot.PCAScatter(outPrefix+".pca.png", proj, condList); err != nil {
		return err
	}
	log.Println("Wrote", outPrefix+".pca.png")

	return nil
}

func writeCoordinates(filename string, proj *pca.Projection) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	header := []string{"sample"}
	for c := range proj.VarExplained {
		header = append(header, fmt.Sprintf("PC%d", c+1))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for j, name := range proj.Samples {
		rec := []string{name}
		for _, v := range proj.Coordinates[j] {
			rec = append(rec, strconv.FormatFloat(v, 'g', 6, 64))
		}
		if err := w.Write(rec); err != nil {
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
