package contour

import (
	"fmt"

	"gonum.org/v1/plot/plotter"
)

// Band is the ±1σ expected-limit band. Nominal, Up and Down are padded to
// a common length N; Polygon is Up followed by Down reversed (2N points).
type Band struct {
	Nominal plotter.XYs
	Up      plotter.XYs
	Down    plotter.XYs
	Polygon plotter.XYs
}

// PadTo returns a copy of xys extended to n points by repeating its last
// point. Sequences already n or longer are copied unchanged.
func PadTo(xys plotter.XYs, n int) plotter.XYs {
	out := make(plotter.XYs, len(xys), max(n, len(xys)))
	copy(out, xys)
	if len(xys) == 0 {
		return out
	}
	last := xys[len(xys)-1]
	for len(out) < n {
		out = append(out, last)
	}
	return out
}

// AssembleBand pads the three contours to the longest length and closes
// the band polygon. Each contour must have at least one point.
func AssembleBand(nominal, up, down plotter.XYs) (Band, error) {
	for _, c := range []struct {
		name string
		xys  plotter.XYs
	}{{"nominal", nominal}, {"up", up}, {"down", down}} {
		if len(c.xys) == 0 {
			return Band{}, fmt.Errorf("exclusion band: %s contour is empty", c.name)
		}
	}

	n := max(len(nominal), len(up), len(down))
	band := Band{
		Nominal: PadTo(nominal, n),
		Up:      PadTo(up, n),
		Down:    PadTo(down, n),
	}
	band.Polygon = make(plotter.XYs, 0, 2*n)
	band.Polygon = append(band.Polygon, band.Up...)
	for k := n - 1; k >= 0; k-- {
		band.Polygon = append(band.Polygon, band.Down[k])
	}
	return band, nil
}
