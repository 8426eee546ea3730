package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/carbocation/rnaseqdiff"
	"github.com/carbocation/rnaseqdiff/countmatrix"
	"github.com/carbocation/rnaseqdiff/nbstat"
	"github.com/carbocation/rnaseqdiff/normalize"
	"github.com/carbocation/rnaseqdiff/padjust"
	"github.com/carbocation/rnaseqdiff/pca"
	"github.com/carbocation/rnaseqdiff/plot"
)

func runAll(opt options) error {
	var client *storage.Client
	if strings.HasPrefix(opt.countsFile, "gs://") ||
		strings.HasPrefix(opt.samplesFile, "gs://") ||
		strings.HasPrefix(opt.phenoFile, "gs://") {
		var err error
		client, err = storage.NewClient(context.Background())
		if err != nil {
			return err
		}
	}

	m, err := loadCounts(opt.countsFile, client)
	if err != nil {
		return err
	}
	log.Println("Loaded", m.NGenes(), "genes x", m.NSamples(), "samples from", opt.countsFile)

	phenotypes, err := loadDesign(opt, m, client)
	if err != nil {
		return err
	}

	m, conditions, err := countmatrix.Align(m, phenotypes)
	if err != nil {
		return err
	}
	log.Println("Aligned matrix columns to the sample metadata")

	labels, groups := countmatrix.GroupIndices(conditions)
	if len(labels) != 2 {
		return fmt.Errorf("pairwise testing requires exactly 2 conditions, got %d: %v", len(labels), labels)
	}

	// Put the reference condition first so the fold change reads
	// non-reference over reference.
	if opt.reference != "" {
		switch opt.reference {
		case labels[0]:
		case labels[1]:
			labels[0], labels[1] = labels[1], labels[0]
			groups[0], groups[1] = groups[1], groups[0]
		default:
			return fmt.Errorf("-reference %q is not one of the conditions %v", opt.reference, labels)
		}
	}
	log.Printf("Comparing %s (n=%d) against reference %s (n=%d)\n", labels[1], len(groups[1]), labels[0], len(groups[0]))

	m, dropped := countmatrix.DropEmptyGenes(m)
	log.Println("Dropped", dropped, "genes with zero counts in all samples")

	if opt.minCPM > 0 {
		var droppedLow int
		m, droppedLow, err = countmatrix.FilterLowExpression(m, opt.minCPM, opt.minSamples)
		if err != nil {
			return err
		}
		log.Println("Dropped", droppedLow, "genes below", opt.minCPM, "CPM in", opt.minSamples, "samples")
	}
	if m.NGenes() == 0 {
		return fmt.Errorf("no genes left after filtering")
	}

	if outliers := countmatrix.FlagLibrarySizeOutliers(m, 3); len(outliers) > 0 {
		log.Println("Library size outliers (beyond 3 SD):", strings.Join(outliers, ", "))
	}

	var results []nbstat.Result
	var normalized *countmatrix.Matrix
	switch opt.method {
	case "exact":
		results, normalized, err = runExact(m, groups, opt.priorN)
	case "wald", "lrt":
		results, normalized, err = runNB(m, groups, opt.method, opt.priorN)
	case "fisher":
		results, normalized, err = runFisher(m, groups)
	}
	if err != nil {
		return err
	}

	pvalues := make([]float64, len(results))
	for i, r := range results {
		pvalues[i] = r.PValue
	}
	adjusted := padjust.BenjaminiHochberg(pvalues)
	for i := range results {
		results[i].AdjPValue = adjusted[i]
	}
	nbstat.SortByPValue(results)

	nSig := 0
	for _, r := range results {
		if r.AdjPValue <= opt.fdr {
			nSig++
		}
	}
	log.Println(nSig, "of", len(results), "genes pass FDR", opt.fdr)

	if err := writeTables(opt.outPrefix, m, normalized, results); err != nil {
		return err
	}

	if err := renderPlots(opt, m, conditions, results); err != nil {
		return err
	}

	printPValueHistogram(pvalues)

	return nil
}

func loadCounts(path string, client *storage.Client) (*countmatrix.Matrix, error) {
	raw, err := slurp(path, client)
	if err != nil {
		return nil, err
	}

	delim := rnaseqdiff.DetermineDelimiter(bytes.NewReader(raw))

	return countmatrix.Load(bytes.NewReader(raw), delim)
}

// loadDesign resolves the sample-to-condition assignment from either the
// phenotype file or the -samples/-conditions flags.
func loadDesign(opt options, m *countmatrix.Matrix, client *storage.Client) ([]countmatrix.Sample, error) {
	if opt.phenoFile != "" {
		raw, err := slurp(opt.phenoFile, client)
		if err != nil {
			return nil, err
		}

		delim := rnaseqdiff.DetermineDelimiter(bytes.NewReader(raw))

		return countmatrix.LoadPhenotypes(bytes.NewReader(raw), delim)
	}

	names := m.Samples
	if opt.samplesFile != "" {
		raw, err := slurp(opt.samplesFile, client)
		if err != nil {
			return nil, err
		}

		names, err = countmatrix.ReadSampleList(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
	}

	conds, err := splitConditions(opt.conditions)
	if err != nil {
		return nil, err
	}
	if len(conds) != len(names) {
		return nil, fmt.Errorf("%d conditions for %d samples", len(conds), len(names))
	}

	out := make([]countmatrix.Sample, len(names))
	for i := range names {
		out[i] = countmatrix.Sample{Name: names[i], Condition: conds[i]}
	}

	return out, nil
}

func slurp(path string, client *storage.Client) ([]byte, error) {
	r, _, err := rnaseqdiff.MaybeOpenFromGoogleStorage(path, client)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// runExact is the edgeR-style pipeline: TMM normalization, shrunken tagwise
// dispersions, and the conditional exact test on pseudo-counts scaled to a
// common library size.
func runExact(m *countmatrix.Matrix, groups [][]int, priorN float64) ([]nbstat.Result, *countmatrix.Matrix, error) {
	factors, err := normalize.TMMFactors(m)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("TMM scaling factors: %v\n", factors)

	effLib := normalize.EffectiveLibSizes(m.LibrarySizes(), factors)

	// Scale every sample to the geometric mean effective library size so
	// that counts are directly comparable across samples.
	logSum := 0.0
	for _, ls := range effLib {
		logSum += math.Log(ls)
	}
	commonLib := math.Exp(logSum / float64(len(effLib)))

	sizeFactors := make([]float64, len(effLib))
	for j, ls := range effLib {
		sizeFactors[j] = ls / commonLib
	}

	pseudo, err := normalize.Normalized(m, sizeFactors)
	if err != nil {
		return nil, nil, err
	}

	results, err := testGenes(pseudo, groups, "exact", priorN)

	return results, pseudo, err
}

// runNB is the DESeq-style pipeline: median-of-ratios size factors, shrunken
// tagwise dispersions, and a Wald or likelihood-ratio test per gene.
func runNB(m *countmatrix.Matrix, groups [][]int, method string, priorN float64) ([]nbstat.Result, *countmatrix.Matrix, error) {
	sizeFactors, err := normalize.MedianOfRatios(m)
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Median-of-ratios size factors: %v\n", sizeFactors)

	normalized, err := normalize.Normalized(m, sizeFactors)
	if err != nil {
		return nil, nil, err
	}

	results, err := testGenes(normalized, groups, method, priorN)

	return results, normalized, err
}

func testGenes(normalized *countmatrix.Matrix, groups [][]int, method string, priorN float64) ([]nbstat.Result, error) {
	common, err := nbstat.CommonDispersion(normalized, groups)
	if err != nil {
		return nil, err
	}
	log.Printf("Common dispersion: %.4f\n", common)

	dispersions := nbstat.TagwiseDispersions(normalized, groups, common, priorN)

	results := make([]nbstat.Result, 0, normalized.NGenes())
	for i, row := range normalized.Counts {
		groupA, groupB := gatherGroups(row, groups)

		r := nbstat.Result{
			Gene:       normalized.Genes[i],
			BaseMean:   meanOf(row),
			Dispersion: dispersions[i],
		}

		switch method {
		case "exact":
			r.Log2FC = nbstat.Log2FoldChange(groupA, groupB)
			r.PValue = nbstat.ExactTest(sumOf(groupA), sumOf(groupB), len(groupA), len(groupB), dispersions[i])
		case "wald":
			r.Log2FC, _, r.PValue = nbstat.WaldTest(groupA, groupB, dispersions[i])
		case "lrt":
			r.Log2FC = nbstat.Log2FoldChange(groupA, groupB)
			r.PValue = nbstat.LRTest(groupA, groupB, dispersions[i])
		}

		results = append(results, r)
	}

	return results, nil
}

// runFisher pools the raw counts within each group and runs a 2x2 exact test
// per gene. No dispersion is modeled, so this is a screen, not a replacement
// for the NB tests.
func runFisher(m *countmatrix.Matrix, groups [][]int) ([]nbstat.Result, *countmatrix.Matrix, error) {
	libSizes := m.LibrarySizes()

	libA, libB := 0.0, 0.0
	for _, j := range groups[0] {
		libA += libSizes[j]
	}
	for _, j := range groups[1] {
		libB += libSizes[j]
	}

	cpm, err := m.CPM(nil)
	if err != nil {
		return nil, nil, err
	}

	results := make([]nbstat.Result, 0, m.NGenes())
	for i, row := range m.Counts {
		sumA, sumB := 0.0, 0.0
		for _, j := range groups[0] {
			sumA += row[j]
		}
		for _, j := range groups[1] {
			sumB += row[j]
		}

		cpmA, cpmB := gatherGroups(cpm.Counts[i], groups)

		results = append(results, nbstat.Result{
			Gene:     m.Genes[i],
			BaseMean: meanOf(cpm.Counts[i]),
			Log2FC:   nbstat.Log2FoldChange(cpmA, cpmB),
			PValue:   nbstat.FisherQuickTest(int(sumA), int(libA-sumA), int(sumB), int(libB-sumB)),
		})
	}

	return results, cpm, nil
}

func gatherGroups(row []float64, groups [][]int) (groupA, groupB []float64) {
	for _, j := range groups[0] {
		groupA = append(groupA, row[j])
	}
	for _, j := range groups[1] {
		groupB = append(groupB, row[j])
	}

	return groupA, groupB
}

func renderPlots(opt options, m *countmatrix.Matrix, conditions []string, results []nbstat.Result) error {
	logCPM, err := m.LogCPM(nil, 1)
	if err != nil {
		return err
	}

	proj, err := pca.Project(logCPM, 2)
	if err != nil {
		return err
	}

	if err := plot.PCAScatter(opt.outPrefix+".pca.png", proj, conditions); err != nil {
		return err
	}
	log.Println("Wrote", opt.outPrefix+".pca.png")

	if err := plot.Volcano(opt.outPrefix+".volcano.png", results, opt.fdr, opt.lfc); err != nil {
		return err
	}
	log.Println("Wrote", opt.outPrefix+".volcano.png")

	if err := plot.MA(opt.outPrefix+".ma.png", results, opt.fdr); err != nil {
		return err
	}
	log.Println("Wrote", opt.outPrefix+".ma.png")

	return nil
}

func meanOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}

	sum := 0.0
	for _, x := range v {
		sum += x
	}

	return sum / float64(len(v))
}

func sumOf(v []float64) float64 {
	sum := 0.0
	for _, x := range v {
		sum += x
	}

	return sum
}
