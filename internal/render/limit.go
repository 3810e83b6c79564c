package render

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/limitplotter/internal/contour"
	"github.com/banshee-data/limitplotter/internal/monitoring"
)

// KinematicLine is a forbidden-region boundary with an optional label
// placed at fraction LabelAt along it.
type KinematicLine struct {
	X0, Y0, X1, Y1 float64
	Label          string
	LabelAt        float64
}

// LimitPlot is everything drawn on one exclusion-limit figure. Nil or
// empty contours are left out.
type LimitPlot struct {
	Bounds         contour.Bounds
	XTitle, YTitle string

	// Text is stacked in the top-left corner, first line on top.
	Text  []string
	Lines []KinematicLine

	// Band supplies the expected contour and its ±1σ fill. Expected is
	// drawn on its own when there is no band.
	Band     *contour.Band
	Expected plotter.XYs

	Observed, ObservedUp, ObservedDown plotter.XYs

	// Values are printed as "%.2f" at their point; points right of
	// ValueMaxX or outside Bounds are skipped.
	Values     []contour.Sample
	ValueTitle string
	ValueMaxX  float64

	// Heat, when set, is drawn underneath everything else.
	Heat plotter.GridXYZ
}

// Plot builds the figure.
func (lp *LimitPlot) Plot() (*plot.Plot, error) {
	if err := lp.Bounds.Validate(); err != nil {
		return nil, err
	}
	p := plot.New()
	p.X.Label.Text = lp.XTitle
	p.Y.Label.Text = lp.YTitle
	p.Title.Text = lp.ValueTitle

	if lp.Heat != nil {
		p.Add(plotter.NewHeatMap(lp.Heat, palette.Heat(12, 0.6)))
	}

	expected := lp.Expected
	if lp.Band != nil {
		expected = lp.Band.Nominal
		band, err := plotter.NewPolygon(lp.Band.Polygon)
		if err != nil {
			return nil, fmt.Errorf("expected band: %w", err)
		}
		band.Color = BandColor
		band.LineStyle.Width = 0
		p.Add(band)

		expLine, err := lp.line(expected, ExpectedColor, 2, dashed)
		if err != nil {
			return nil, fmt.Errorf("expected contour: %w", err)
		}
		p.Add(expLine)
		p.Legend.Add("Expected limit (±1 σ exp)", band, expLine)
	} else if len(expected) > 0 {
		expLine, err := lp.line(expected, ExpectedColor, 2, dashed)
		if err != nil {
			return nil, fmt.Errorf("expected contour: %w", err)
		}
		p.Add(expLine)
		p.Legend.Add("Expected limit", expLine)
	}

	if len(lp.Observed) > 0 {
		obs, err := lp.line(lp.Observed, ObservedColor, 3, nil)
		if err != nil {
			return nil, fmt.Errorf("observed contour: %w", err)
		}
		p.Add(obs)
		for _, xys := range []plotter.XYs{lp.ObservedUp, lp.ObservedDown} {
			if len(xys) == 0 {
				continue
			}
			l, err := lp.line(xys, ObservedColor, 1, dotted)
			if err != nil {
				return nil, fmt.Errorf("observed theory variation: %w", err)
			}
			p.Add(l)
		}
		p.Legend.Add("Observed limit (±1 σ theory)", obs)
	}

	for _, kl := range lp.Lines {
		if err := lp.addKinematicLine(p, kl); err != nil {
			return nil, err
		}
	}

	if err := lp.addValues(p); err != nil {
		return nil, err
	}
	if err := addTextBlock(p, lp.Bounds, lp.Text); err != nil {
		return nil, err
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	// p.Add widens the axes to fit the data; the frame is fixed.
	p.X.Min, p.X.Max = lp.Bounds.XMin, lp.Bounds.XMax
	p.Y.Min, p.Y.Max = lp.Bounds.YMin, lp.Bounds.YMax
	return p, nil
}

func (lp *LimitPlot) line(xys plotter.XYs, c color.Color, width float64, dashes []vg.Length) (*plotter.Line, error) {
	l, err := plotter.NewLine(xys)
	if err != nil {
		return nil, err
	}
	l.Color = c
	l.Width = vg.Points(width)
	l.Dashes = dashes
	return l, nil
}

func (lp *LimitPlot) addKinematicLine(p *plot.Plot, kl KinematicLine) error {
	l, err := plotter.NewLine(plotter.XYs{{X: kl.X0, Y: kl.Y0}, {X: kl.X1, Y: kl.Y1}})
	if err != nil {
		return fmt.Errorf("kinematic line: %w", err)
	}
	l.Color = LineColor
	l.Width = vg.Points(1.5)
	l.Dashes = dashed
	p.Add(l)

	if kl.Label == "" {
		return nil
	}
	at := plotter.XY{X: kl.X0 + kl.LabelAt*(kl.X1-kl.X0), Y: kl.Y0 + kl.LabelAt*(kl.Y1-kl.Y0)}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: plotter.XYs{at}, Labels: []string{kl.Label}})
	if err != nil {
		return fmt.Errorf("kinematic line label: %w", err)
	}
	// The frame is drawn square, so the on-page angle follows from the
	// slope in frame-relative units.
	b := lp.Bounds
	angle := math.Atan2((kl.Y1-kl.Y0)/(b.YMax-b.YMin), (kl.X1-kl.X0)/(b.XMax-b.XMin))
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = LineColor
		labels.TextStyle[i].Font.Size = vg.Points(7)
		labels.TextStyle[i].Rotation = angle
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YBottom
	}
	labels.Offset = vg.Point{Y: vg.Points(2)}
	p.Add(labels)
	return nil
}

func (lp *LimitPlot) addValues(p *plot.Plot) error {
	if len(lp.Values) == 0 {
		return nil
	}
	b := lp.Bounds
	var xys plotter.XYs
	var txt []string
	for _, v := range lp.Values {
		if v.X > lp.ValueMaxX || v.X < b.XMin || v.X > b.XMax || v.Y < b.YMin || v.Y > b.YMax {
			continue
		}
		xys = append(xys, plotter.XY{X: v.X, Y: v.Y})
		txt = append(txt, fmt.Sprintf("%.2f", v.Z))
	}
	if len(xys) == 0 {
		monitoring.Logf("draw_sig_or_cls    no points inside the frame to annotate")
		return nil
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: txt})
	if err != nil {
		return fmt.Errorf("value labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = vg.Points(5)
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(labels)
	return nil
}

// addTextBlock stacks lines in the top-left corner of the frame.
func addTextBlock(p *plot.Plot, b contour.Bounds, lines []string) error {
	var xys plotter.XYs
	var txt []string
	for _, l := range lines {
		if l == "" {
			continue
		}
		k := float64(len(xys) + 1)
		xys = append(xys, plotter.XY{
			X: b.XMin + 0.04*(b.XMax-b.XMin),
			Y: b.YMax - 0.055*k*(b.YMax-b.YMin),
		})
		txt = append(txt, l)
	}
	if len(xys) == 0 {
		return nil
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: txt})
	if err != nil {
		return fmt.Errorf("text block: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = TextColor
		labels.TextStyle[i].Font.Size = vg.Points(10)
		labels.TextStyle[i].XAlign = text.XLeft
	}
	p.Add(labels)
	return nil
}

// Encode renders p as a square image of edge sizeCm in format (eps, pdf,
// svg, png, jpg or tif).
func Encode(p *plot.Plot, format string, sizeCm float64) ([]byte, error) {
	size := vg.Length(sizeCm) * vg.Centimeter
	wt, err := p.WriterTo(size, size, format)
	if err != nil {
		return nil, fmt.Errorf("failed to encode plot as %s: %w", format, err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode plot as %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
