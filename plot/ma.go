package plot

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/carbocation/rnaseqdiff/nbstat"
)

// MA draws mean expression against log2 fold change, the standard companion
// to the volcano plot: composition bias shows up here as an off-center cloud.
func MA(filename string, results []nbstat.Result, fdrCutoff float64) error {
	if len(results) == 0 {
		return fmt.Errorf("plot: no results to draw")
	}

	var sigX, sigY, nsX, nsY []float64
	for _, r := range results {
		x := math.Log2(r.BaseMean + 1)
		if r.AdjPValue <= fdrCutoff {
			sigX = append(sigX, x)
			sigY = append(sigY, r.Log2FC)
		} else {
			nsX = append(nsX, x)
			nsY = append(nsY, r.Log2FC)
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
			Name:    fmt.Sprintf("FDR<=%.2g", fdrCutoff),
			Style:   scatterStyle(colorSignificant),
			XValues: sigX,
			YValues: sigY,
		})
	}

	graph := chart.Chart{
		Title:  "MA",
		Width:  768,
		Height: 576,
		XAxis: chart.XAxis{
			Name: "log2 mean normalized count",
		},
		YAxis: chart.YAxis{
			Name: "log2 fold change",
			GridLines: []chart.GridLine{
				{Value: 0},
			},
			GridMajorStyle: chart.Style{
				StrokeColor:     colorNonsignificant,
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 5},
			},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(graph, filename)
}
