package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/carbocation/rnaseqdiff/countmatrix"
	"github.com/carbocation/rnaseqdiff/pca"
)

// PCAScatter draws samples on their first two principal components, colored
// by condition and labeled by sample name.
func PCAScatter(filename string, proj *pca.Projection, conditions []string) error {
	if len(proj.Coordinates) == 0 || len(proj.Coordinates[0]) < 2 {
		return fmt.Errorf("plot: PCA projection has fewer than 2 components")
	}
	if len(conditions) != len(proj.Samples) {
		return fmt.Errorf("plot: %d conditions for %d samples", len(conditions), len(proj.Samples))
	}

	labels, groups := countmatrix.GroupIndices(conditions)

	series := make([]chart.Series, 0, len(groups)+1)
	for gi, group := range groups {
		xs := make([]float64, 0, len(group))
		ys := make([]float64, 0, len(group))
		for _, j := range group {
			xs = append(xs, proj.Coordinates[j][0])
			ys = append(ys, proj.Coordinates[j][1])
		}

		series = append(series, chart.ContinuousSeries{
			Name:    labels[gi],
			Style:   scatterStyle(conditionColor(gi)),
			XValues: xs,
			YValues: ys,
		})
	}

	annotations := make([]chart.Value2, 0, len(proj.Samples))
	for j, name := range proj.Samples {
		annotations = append(annotations, chart.Value2{
			XValue: proj.Coordinates[j][0],
			YValue: proj.Coordinates[j][1],
			Label:  name,
		})
	}
	series = append(series, chart.AnnotationSeries{Annotations: annotations})

	graph := chart.Chart{
		Title:  "PCA of log CPM",
		Width:  768,
		Height: 576,
		XAxis: chart.XAxis{
			Name: fmt.Sprintf("PC1 (%.1f%% variance)", 100*proj.VarExplained[0]),
		},
		YAxis: chart.YAxis{
			Name: fmt.Sprintf("PC2 (%.1f%% variance)", 100*proj.VarExplained[1]),
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(graph, filename)
}
