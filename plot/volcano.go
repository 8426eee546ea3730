package plot

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/carbocation/rnaseqdiff/nbstat"
)

// Volcano draws log2 fold change against -log10 p-value, highlighting genes
// that pass both the FDR and the fold-change cutoffs. Vertical guides mark
// the fold-change cutoffs.
func Volcano(filename string, results []nbstat.Result, fdrCutoff, lfcCutoff float64) error {
	if len(results) == 0 {
		return fmt.Errorf("plot: no results to draw")
	}

	var sigX, sigY, nsX, nsY []float64
	for _, r := range results {
		y := neglog10(r.PValue)
		if r.AdjPValue <= fdrCutoff && math.Abs(r.Log2FC) >= lfcCutoff {
			sigX = append(sigX, r.Log2FC)
			sigY = append(sigY, y)
		} else {
			nsX = append(nsX, r.Log2FC)
			nsY = append(nsY, y)
		}
	}

	series := []chart.Series{}
	if len(nsX) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "not significant",
			Style:   scatterStyle(colorNonsignificant),
			XValues: nsX,
			YValues: nsY,
		})
	}
	if len(sigX) > 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("FDR<=%.2g, |log2FC|>=%.2g", fdrCutoff, lfcCutoff),
			Style:   scatterStyle(colorSignificant),
			XValues: sigX,
			YValues: sigY,
		})
	}

	graph := chart.Chart{
		Title:  "Volcano",
		Width:  768,
		Height: 576,
		XAxis: chart.XAxis{
			Name: "log2 fold change",
			GridLines: []chart.GridLine{
				{Value: -lfcCutoff},
				{Value: lfcCutoff},
			},
			GridMajorStyle: chart.Style{
				StrokeColor:     colorNonsignificant,
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 5},
			},
		},
		YAxis: chart.YAxis{
			Name: "-log10 p-value",
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(graph, filename)
}

// neglog10 caps at 300 so that p-values below float underflow still plot.
func neglog10(p float64) float64 {
	if p <= 0 {
		return 300
	}

	v := -math.Log10(p)
	if v > 300 {
		v = 300
	}

	return v
}
