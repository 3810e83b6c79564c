package render

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/limitplotter/internal/contour"
)

var viridis = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// GridView is an interactive scatter of the per-point values of one grid.
type GridView struct {
	Title, Subtitle string
	XTitle, YTitle  string
	ValueName       string
	Bounds          contour.Bounds
	Values          []contour.Sample

	// Contours are overlaid as small markers, one series each.
	Contours []NamedContour
}

// NamedContour is one overlaid polyline.
type NamedContour struct {
	Name   string
	Points plotter.XYs
}

// Render writes the view as a standalone HTML page.
func (gv *GridView) Render(w io.Writer) error {
	data := make([]opts.ScatterData, 0, len(gv.Values))
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range gv.Values {
		if math.IsNaN(v.Z) {
			continue
		}
		lo = math.Min(lo, v.Z)
		hi = math.Max(hi, v.Z)
		data = append(data, opts.ScatterData{Value: []interface{}{v.X, v.Y, v.Z}})
	}
	if len(data) == 0 {
		lo, hi = 0, 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: gv.Title, Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: gv.Title, Subtitle: gv.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: gv.Bounds.XMin, Max: gv.Bounds.XMax, Name: gv.XTitle, NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: gv.Bounds.YMin, Max: gv.Bounds.YMax, Name: gv.YTitle, NameLocation: "middle", NameGap: 35}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries(gv.ValueName, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	for _, c := range gv.Contours {
		line := make([]opts.ScatterData, 0, len(c.Points))
		for _, p := range c.Points {
			line = append(line, opts.ScatterData{Value: []interface{}{p.X, p.Y}})
		}
		scatter.AddSeries(c.Name, line, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	}

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("failed to render grid view: %w", err)
	}
	return nil
}
