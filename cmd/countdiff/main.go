// countdiff runs the full differential-expression workflow on a gene count
// matrix: load, align with sample metadata, filter, normalize, test each gene
// for a difference between two conditions, adjust for multiple testing, and
// write result tables plus PCA, volcano, and MA plots.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
)

type options struct {
	countsFile  string
	samplesFile string
	phenoFile   string
	conditions  string
	reference   string
	method      string
	minCPM      float64
	minSamples  int
	fdr         float64
	lfc         float64
	priorN      float64
	outPrefix   string
}

func main() {
	var opt options

	flag.StringVar(&opt.countsFile, "counts", "", "Path to the genes-by-samples count matrix (tab or comma delimited; local or gs://). First column is the gene ID, remaining columns are samples.")
	flag.StringVar(&opt.samplesFile, "samples", "", "Optional. Path to a newline-delimited list of sample names; restricts and orders -conditions when -pheno is not given.")
	flag.StringVar(&opt.phenoFile, "pheno", "", "Path to sample metadata with columns 'sample' and 'condition'. Either -pheno or -conditions is required.")
	flag.StringVar(&opt.conditions, "conditions", "", "Comma-delimited condition labels, one per sample, in the order of -samples (or of the matrix columns). Alternative to -pheno.")
	flag.StringVar(&opt.reference, "reference", "", "Condition label to treat as the baseline of the fold change. Defaults to the first condition encountered.")
	flag.StringVar(&opt.method, "method", "exact", "Test to run: exact (TMM + conditional exact test), wald (median-of-ratios + Wald), lrt (median-of-ratios + likelihood ratio), or fisher (pooled 2x2 quick screen).")
	flag.Float64Var(&opt.minCPM, "mincpm", 0, "If > 0, drop genes that do not reach this CPM in at least -minsamples samples.")
	flag.IntVar(&opt.minSamples, "minsamples", 2, "Minimum number of samples that must reach -mincpm.")
	flag.Float64Var(&opt.fdr, "fdr", 0.05, "FDR cutoff used to highlight genes in the plots and in the summary.")
	flag.Float64Var(&opt.lfc, "lfc", 1, "Absolute log2 fold-change cutoff used to highlight genes in the volcano plot.")
	flag.Float64Var(&opt.priorN, "priorn", 10, "Weight, in pseudo-observations, of the common dispersion when shrinking gene-wise dispersions.")
	flag.StringVar(&opt.outPrefix, "out", "countdiff", "Prefix for all output files.")
	flag.Parse()

	if opt.countsFile == "" {
		flag.PrintDefaults()
		log.Fatalln("Please provide -counts")
	}

	if opt.phenoFile == "" && opt.conditions == "" {
		flag.PrintDefaults()
		log.Fatalln("Please provide -pheno or -conditions")
	}

	if opt.phenoFile != "" && opt.conditions != "" {
		log.Fatalln("-pheno and -conditions are mutually exclusive")
	}

	switch opt.method {
	case "exact", "wald", "lrt", "fisher":
	default:
		log.Fatalln("Unknown -method", opt.method, "(want exact, wald, lrt, or fisher)")
	}

	log.Println("Launched countdiff with method", opt.method)

	if err := runAll(opt); err != nil {
		log.Fatalln(err)
	}
}

func splitConditions(raw string) ([]string, error) {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("-conditions contains an empty label")
		}
		out = append(out, p)
	}

	return out, nil
}
