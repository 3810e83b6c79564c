// Package contour turns scattered significance samples over a mass plane
// into exclusion contours and assembles the ±1σ expected band.
package contour

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/plotter"
)

// DefaultBins is the raster resolution along each axis.
const DefaultBins = 50

// ErrBadBounds is returned for an empty or inverted frame.
var ErrBadBounds = errors.New("invalid bounds")

// Sample is one scattered (x, y, z) value.
type Sample struct {
	X, Y, Z float64
}

// Bounds is the plotted frame.
type Bounds struct {
	XMin, XMax float64
	YMin, YMax float64
}

// Validate rejects empty, inverted or non-finite bounds.
func (b Bounds) Validate() error {
	for _, v := range []float64{b.XMin, b.XMax, b.YMin, b.YMax} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite edge in %+v", ErrBadBounds, b)
		}
	}
	if !(b.XMax > b.XMin) || !(b.YMax > b.YMin) {
		return fmt.Errorf("%w: %+v", ErrBadBounds, b)
	}
	return nil
}

// Raster is a regular grid of values at bin centers. It implements
// plotter.GridXYZ so it can be drawn directly as a heat map.
type Raster struct {
	bounds Bounds
	nx, ny int
	dx, dy float64

	// z is indexed (row=y bin, col=x bin).
	z *mat.Dense
}

var _ plotter.GridXYZ = (*Raster)(nil)

// Rasterize projects samples onto an nx×ny grid over b. Each sample lands
// in the bin containing it, later samples overwriting earlier ones; samples
// outside b or with NaN coordinates are skipped. With fillEmpty, bins no
// sample landed in whose centers lie inside the convex hull of the samples
// take the value of the nearest sample (distance measured in bin units,
// earliest sample on ties). All other bins stay 0.
func Rasterize(samples []Sample, b Bounds, nx, ny int, fillEmpty bool) (*Raster, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("raster needs at least 2x2 bins, got %dx%d", nx, ny)
	}
	r := &Raster{
		bounds: b,
		nx:     nx,
		ny:     ny,
		dx:     (b.XMax - b.XMin) / float64(nx),
		dy:     (b.YMax - b.YMin) / float64(ny),
		z:      mat.NewDense(ny, nx, nil),
	}

	set := make([]bool, nx*ny)
	var usable []Sample
	for _, s := range samples {
		if math.IsNaN(s.X) || math.IsNaN(s.Y) || math.IsNaN(s.Z) {
			continue
		}
		usable = append(usable, s)
		i, j, ok := r.bin(s.X, s.Y)
		if !ok {
			continue
		}
		r.z.Set(j, i, s.Z)
		set[j*nx+i] = true
	}

	if fillEmpty && len(usable) > 0 {
		hull := convexHull(usable)
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				if set[j*nx+i] || !hullContains(hull, plotter.XY{X: r.X(i), Y: r.Y(j)}) {
					continue
				}
				r.z.Set(j, i, r.nearest(usable, i, j))
			}
		}
	}
	return r, nil
}

// bin maps a coordinate to its bin; the upper frame edge belongs to the
// last bin.
func (r *Raster) bin(x, y float64) (i, j int, ok bool) {
	b := r.bounds
	if x < b.XMin || x > b.XMax || y < b.YMin || y > b.YMax {
		return 0, 0, false
	}
	i = int((x - b.XMin) / r.dx)
	j = int((y - b.YMin) / r.dy)
	if i >= r.nx {
		i = r.nx - 1
	}
	if j >= r.ny {
		j = r.ny - 1
	}
	return i, j, true
}

func (r *Raster) nearest(samples []Sample, i, j int) float64 {
	cx, cy := float64(i)+0.5, float64(j)+0.5
	best, bestD := 0.0, math.Inf(1)
	for _, s := range samples {
		ddx := (s.X-r.bounds.XMin)/r.dx - cx
		ddy := (s.Y-r.bounds.YMin)/r.dy - cy
		if d := ddx*ddx + ddy*ddy; d < bestD {
			best, bestD = s.Z, d
		}
	}
	return best
}

// Dims returns the number of x (columns) and y (rows) bins.
func (r *Raster) Dims() (c, rows int) { return r.nx, r.ny }

// Z returns the value of bin (c, row).
func (r *Raster) Z(c, row int) float64 { return r.z.At(row, c) }

// X returns the center of column c.
func (r *Raster) X(c int) float64 { return r.bounds.XMin + (float64(c)+0.5)*r.dx }

// Y returns the center of row row.
func (r *Raster) Y(row int) float64 { return r.bounds.YMin + (float64(row)+0.5)*r.dy }

// Max returns the largest bin value.
func (r *Raster) Max() float64 { return mat.Max(r.z) }

// Bounds returns the frame the raster covers.
func (r *Raster) Bounds() Bounds { return r.bounds }
