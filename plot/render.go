// Package plot renders the diagnostic figures of the differential-expression
// workflow (PCA scatter, volcano, MA) as PNG files.
package plot

import (
	"bytes"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var palette = []drawing.Color{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
}

var (
	colorNonsignificant = drawing.Color{R: 160, G: 160, B: 160, A: 255}
	colorSignificant    = drawing.Color{R: 214, G: 39, B: 40, A: 255}
)

func conditionColor(i int) drawing.Color {
	return palette[i%len(palette)]
}

// renderPNG renders to a byte buffer before touching the filesystem, so a
// render failure never leaves a truncated image behind.
func renderPNG(graph chart.Chart, filename string) error {
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return err
	}

	outFile, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer outFile.Close()

	if _, err := buffer.WriteTo(outFile); err != nil {
		return err
	}

	return nil
}

func scatterStyle(c drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    c,
	}
}
