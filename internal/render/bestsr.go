package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/limitplotter/internal/contour"
)

// RegionPoints are the mass points at which one region was the most
// sensitive.
type RegionPoints struct {
	Label  string
	Color  string // #rrggbb
	Marker string // circle, square or triangle
	Points plotter.XYs
}

// BestRegionPlot maps each grid point to its most sensitive region.
type BestRegionPlot struct {
	Bounds         contour.Bounds
	XTitle, YTitle string
	Text           []string
	Regions        []RegionPoints
}

// Plot builds the figure. Regions with no points get no legend entry.
func (bp *BestRegionPlot) Plot() (*plot.Plot, error) {
	if err := bp.Bounds.Validate(); err != nil {
		return nil, err
	}
	p := plot.New()
	p.Title.Text = "Best signal region per point"
	p.X.Label.Text = bp.XTitle
	p.Y.Label.Text = bp.YTitle

	for _, r := range bp.Regions {
		if len(r.Points) == 0 {
			continue
		}
		c, err := ParseHexColor(r.Color)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", r.Label, err)
		}
		s, err := plotter.NewScatter(r.Points)
		if err != nil {
			return nil, fmt.Errorf("region %s: %w", r.Label, err)
		}
		s.GlyphStyle = draw.GlyphStyle{Color: c, Radius: vg.Points(3), Shape: Glyph(r.Marker)}
		p.Add(s)
		p.Legend.Add(r.Label, s)
	}

	if err := addTextBlock(p, bp.Bounds, bp.Text); err != nil {
		return nil, err
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	p.X.Min, p.X.Max = bp.Bounds.XMin, bp.Bounds.XMax
	p.Y.Min, p.Y.Max = bp.Bounds.YMin, bp.Bounds.YMax
	return p, nil
}
