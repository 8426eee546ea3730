package nbstat

import "sort"

// Result is one row of the differential-expression output table.
type Result struct {
	Gene       string  `csv:"gene"`
	BaseMean   float64 `csv:"baseMean"`
	Log2FC     float64 `csv:"log2FoldChange"`
	Dispersion float64 `csv:"dispersion"`
	PValue     float64 `csv:"pvalue"`
	AdjPValue  float64 `csv:"padj"`
}

// SortByPValue orders results by ascending p-value, with gene name breaking
// ties so output is deterministic.
func SortByPValue(results []Result) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].PValue != results[j].PValue {
			return results[i].PValue < results[j].PValue
		}
		return results[i].Gene < results[j].Gene
	})
}
