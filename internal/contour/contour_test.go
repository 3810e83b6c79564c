package contour

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/limitplotter/internal/stats"
)

var frame = Bounds{XMin: 100, XMax: 450, YMin: 0, YMax: 420}

// lattice samples f at every bin center of an n×n raster over b.
func lattice(b Bounds, n int, f func(x, y float64) float64) []Sample {
	dx := (b.XMax - b.XMin) / float64(n)
	dy := (b.YMax - b.YMin) / float64(n)
	var out []Sample
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			x := b.XMin + (float64(i)+0.5)*dx
			y := b.YMin + (float64(j)+0.5)*dy
			out = append(out, Sample{X: x, Y: y, Z: f(x, y)})
		}
	}
	return out
}

func TestBoundsValidate(t *testing.T) {
	assert.NoError(t, frame.Validate())
	assert.ErrorIs(t, Bounds{XMin: 1, XMax: 1, YMin: 0, YMax: 1}.Validate(), ErrBadBounds)
	assert.ErrorIs(t, Bounds{XMin: 0, XMax: 1, YMin: 2, YMax: 1}.Validate(), ErrBadBounds)
	assert.ErrorIs(t, Bounds{XMin: 0, XMax: math.Inf(1), YMin: 0, YMax: 1}.Validate(), ErrBadBounds)
}

func TestRasterizeProjection(t *testing.T) {
	b := Bounds{XMin: 0, XMax: 10, YMin: 0, YMax: 10}
	samples := []Sample{
		{X: 0.5, Y: 0.5, Z: 1},
		{X: 0.9, Y: 0.1, Z: 2}, // same bin, last write wins
		{X: 10, Y: 10, Z: 3},   // upper edge lands in last bin
		{X: 11, Y: 5, Z: 99},   // outside
		{X: math.NaN(), Y: 5, Z: 99},
	}
	r, err := Rasterize(samples, b, 10, 10, false)
	require.NoError(t, err)

	c, rows := r.Dims()
	assert.Equal(t, 10, c)
	assert.Equal(t, 10, rows)
	assert.Equal(t, 2.0, r.Z(0, 0))
	assert.Equal(t, 3.0, r.Z(9, 9))
	assert.Equal(t, 0.0, r.Z(5, 5))
	assert.Equal(t, 0.5, r.X(0))
	assert.Equal(t, 9.5, r.Y(9))
	assert.Equal(t, 3.0, r.Max())
	assert.Equal(t, b, r.Bounds())
}

func TestRasterizeFillNearest(t *testing.T) {
	b := Bounds{XMin: 0, XMax: 10, YMin: 0, YMax: 10}
	samples := []Sample{
		{X: 1, Y: 1, Z: 5},
		{X: 9, Y: 9, Z: -5},
		{X: 30, Y: 1, Z: 7}, // outside the frame but still a fill source
	}
	r, err := Rasterize(samples, b, 10, 10, true)
	require.NoError(t, err)

	assert.Equal(t, 0.0, r.Z(0, 0), "outside the sample hull stays empty")
	assert.Equal(t, 5.0, r.Z(1, 1))
	assert.Equal(t, 5.0, r.Z(2, 1))
	assert.Equal(t, -5.0, r.Z(8, 7))
	assert.Equal(t, -5.0, r.Z(9, 9))
}

func TestRasterizeErrors(t *testing.T) {
	_, err := Rasterize(nil, Bounds{}, 10, 10, true)
	assert.ErrorIs(t, err, ErrBadBounds)

	_, err = Rasterize(nil, frame, 1, 10, true)
	assert.Error(t, err)

	r, err := Rasterize(nil, frame, 4, 4, true)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Max(), "no samples leaves a zero raster")
}

func TestContoursCircle(t *testing.T) {
	cx, cy, radius := 275.0, 210.0, 100.0
	level := stats.ExclusionLevel(0.05)
	samples := lattice(frame, DefaultBins, func(x, y float64) float64 {
		// level exactly at the circle, rising inwards
		return level + (radius-math.Hypot(x-cx, y-cy))/50
	})

	r, err := Rasterize(samples, frame, DefaultBins, DefaultBins, false)
	require.NoError(t, err)
	paths := r.Contours(level)
	require.Len(t, paths, 1)

	circle := paths[0]
	require.Greater(t, len(circle), 20)
	assert.Equal(t, circle[0], circle[len(circle)-1], "closed contour repeats its first point")
	for _, p := range circle {
		assert.InDelta(t, radius, math.Hypot(p.X-cx, p.Y-cy), 1.0)
	}
}

func TestContoursOrderAndDisjoint(t *testing.T) {
	b := Bounds{XMin: 0, XMax: 20, YMin: 0, YMax: 20}
	// two separate islands: upper-left and lower-right
	samples := lattice(b, 20, func(x, y float64) float64 {
		switch {
		case x > 3 && x < 7 && y > 13 && y < 17:
			return 3
		case x > 13 && x < 17 && y > 3 && y < 7:
			return 3
		}
		return 0
	})

	builder := &Builder{Bounds: b, Bins: 20, Level: 1.645}
	paths, err := builder.Components(samples)
	require.NoError(t, err)
	require.Len(t, paths, 2)

	// the lower island is met first in row-major order
	assert.Less(t, paths[0][0].Y, 10.0)
	assert.Greater(t, paths[1][0].Y, 10.0)

	first, ok, err := builder.Exclusion(samples)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, paths[0], first)
}

func TestContoursSaddle(t *testing.T) {
	b := Bounds{XMin: 0, XMax: 2, YMin: 0, YMax: 2}
	mk := func(bl, br, tr, tl float64) *Raster {
		r, err := Rasterize([]Sample{
			{X: 0.5, Y: 0.5, Z: bl}, {X: 1.5, Y: 0.5, Z: br},
			{X: 1.5, Y: 1.5, Z: tr}, {X: 0.5, Y: 1.5, Z: tl},
		}, b, 2, 2, false)
		require.NoError(t, err)
		return r
	}

	// bottom-left and top-right inside, high center: the band joins them
	connected := mk(3, 0, 3, 0).Contours(1)
	require.Len(t, connected, 2)
	// each piece isolates one outside corner
	for _, p := range connected {
		require.Len(t, p, 2)
	}
	assert.Equal(t, plotter.XY{X: 0.5 + 2.0/3.0, Y: 0.5}, connected[0][0])

	separated := mk(1.2, 0, 1.2, 0).Contours(1)
	require.Len(t, separated, 2)
	// mean 0.6 < 1: the first piece wraps the bottom-left corner
	assert.InDelta(t, 0.5, separated[0][0].X, 1e-12)
}

func TestExclusionNoContour(t *testing.T) {
	builder := NewBuilder(frame)
	samples := []Sample{
		{X: 150, Y: 25, Z: 1.0},
		{X: 200, Y: 50, Z: builder.Level - 1e-9},
	}

	line, ok, err := builder.Exclusion(samples)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, line)

	_, ok, err = builder.Exclusion(nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExclusionWholeFrameExcluded(t *testing.T) {
	builder := NewBuilder(frame)
	builder.Bins = 10
	samples := lattice(frame, 10, func(x, y float64) float64 { return builder.Level + 1 })

	line, ok, err := builder.Exclusion(samples)
	require.NoError(t, err)
	assert.False(t, ok, "no crossing means no line")
	assert.Nil(t, line)
}

func TestExclusionAtThresholdIsIncluded(t *testing.T) {
	builder := NewBuilder(frame)
	builder.FillEmpty = false

	r, err := Rasterize(nil, frame, builder.Bins, builder.Bins, false)
	require.NoError(t, err)
	x, y := r.X(20), r.Y(30)

	line, ok, err := builder.Exclusion([]Sample{
		{X: 150, Y: 25, Z: 0.3},
		{X: x, Y: y, Z: builder.Level},
	})
	require.NoError(t, err)
	require.True(t, ok, "a sample exactly at the level is excluded")
	require.NotEmpty(t, line)
	for _, p := range line {
		assert.InDelta(t, x, p.X, 1e-9)
		assert.InDelta(t, y, p.Y, 1e-9)
	}
}

func TestExclusionWithFill(t *testing.T) {
	builder := NewBuilder(frame)
	// a coarse 25 GeV grid, excluded below the diagonal band
	var samples []Sample
	for mx := 125.0; mx <= 425; mx += 25 {
		for my := 0.0; my <= mx-100 && my <= 400; my += 25 {
			z := 0.5
			if mx < 300 && my < 150 {
				z = 2.5
			}
			samples = append(samples, Sample{X: mx, Y: my, Z: z})
		}
	}

	line, ok, err := builder.Exclusion(samples)
	require.NoError(t, err)
	require.True(t, ok)
	for _, p := range line {
		assert.True(t, p.X < 320 && p.Y < 170, "contour point %v outside excluded island", p)
	}

	_, _, err = (&Builder{Bounds: Bounds{}, Level: 1}).Exclusion(samples)
	assert.ErrorIs(t, err, ErrBadBounds)
}

func TestPadTo(t *testing.T) {
	xys := plotter.XYs{{X: 1, Y: 1}, {X: 2, Y: 3}}

	padded := PadTo(xys, 5)
	require.Len(t, padded, 5)
	for _, p := range padded[2:] {
		assert.Equal(t, plotter.XY{X: 2, Y: 3}, p)
	}
	assert.Len(t, xys, 2, "input is not modified")

	assert.Equal(t, xys, PadTo(xys, 1))
	assert.Empty(t, PadTo(nil, 3))
}

func TestAssembleBandEqualLengths(t *testing.T) {
	n := 4
	var nom, up, down plotter.XYs
	for k := 0; k < n; k++ {
		f := float64(k)
		nom = append(nom, plotter.XY{X: f, Y: 10})
		up = append(up, plotter.XY{X: f, Y: 12})
		down = append(down, plotter.XY{X: f, Y: 8})
	}

	band, err := AssembleBand(nom, up, down)
	require.NoError(t, err)
	require.Len(t, band.Polygon, 2*n)
	assert.Equal(t, up, band.Polygon[:n])
	for k := 0; k < n; k++ {
		assert.Equal(t, down[n-1-k], band.Polygon[n+k])
	}
	assert.Equal(t, nom, band.Nominal)
}

func TestAssembleBandPadding(t *testing.T) {
	nom := plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}, {X: 2, Y: 2}}
	up := plotter.XYs{{X: 0, Y: 1}, {X: 1, Y: 2}, {X: 2, Y: 3}, {X: 3, Y: 4}, {X: 4, Y: 5}}
	down := plotter.XYs{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 2, Y: 1}, {X: 3, Y: 2}}

	band, err := AssembleBand(nom, up, down)
	require.NoError(t, err)

	countTail := func(xys plotter.XYs, last plotter.XY, orig int) int {
		n := 0
		for _, p := range xys[orig:] {
			if p == last {
				n++
			}
		}
		return n
	}
	assert.Len(t, band.Nominal, 5)
	assert.Len(t, band.Up, 5)
	assert.Len(t, band.Down, 5)
	assert.Equal(t, 2, countTail(band.Nominal, nom[2], len(nom)))
	assert.Equal(t, 1, countTail(band.Down, down[3], len(down)))
	assert.Equal(t, up, band.Up)
	require.Len(t, band.Polygon, 10)
	assert.Equal(t, down[3], band.Polygon[5], "reversed down starts with the padding")
	assert.Equal(t, down[0], band.Polygon[9])
}

func TestAssembleBandEmpty(t *testing.T) {
	ok := plotter.XYs{{X: 1, Y: 1}}
	_, err := AssembleBand(ok, nil, ok)
	assert.ErrorContains(t, err, "up contour is empty")
}
