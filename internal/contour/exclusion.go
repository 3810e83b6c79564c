package contour

import (
	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/limitplotter/internal/stats"
)

// Builder computes exclusion contours over a fixed frame.
type Builder struct {
	Bounds Bounds
	// Bins is the raster resolution along each axis.
	Bins int
	// Level is the significance a point needs to be excluded.
	Level float64
	// FillEmpty fills bins without samples from the nearest sample.
	FillEmpty bool
}

// NewBuilder returns a 50×50, 95% CL builder for b.
func NewBuilder(b Bounds) *Builder {
	return &Builder{
		Bounds:    b,
		Bins:      DefaultBins,
		Level:     stats.ExclusionLevel(stats.DefaultExclusionPValue),
		FillEmpty: true,
	}
}

// Exclusion returns the iso-line at b.Level through samples. ok is false
// when no sample reaches the level, or the raster yields no line. The
// latter includes a raster whose every bin is at or above the level:
// with no crossing there is no line even though the whole frame is
// excluded.
//
// Only the first component in row-major order is returned; when the
// excluded region is disjoint the other pieces are dropped.
func (b *Builder) Exclusion(samples []Sample) (line plotter.XYs, ok bool, err error) {
	paths, err := b.Components(samples)
	if err != nil || len(paths) == 0 {
		return nil, false, err
	}
	return paths[0], true, nil
}

// Components returns every iso-line component, or nil if no sample
// reaches the level.
func (b *Builder) Components(samples []Sample) ([]plotter.XYs, error) {
	if err := b.Bounds.Validate(); err != nil {
		return nil, err
	}
	if !anyAtLeast(samples, b.Level) {
		return nil, nil
	}
	bins := b.Bins
	if bins <= 0 {
		bins = DefaultBins
	}
	r, err := Rasterize(samples, b.Bounds, bins, bins, b.FillEmpty)
	if err != nil {
		return nil, err
	}
	return r.Contours(b.Level), nil
}

func anyAtLeast(samples []Sample, level float64) bool {
	for _, s := range samples {
		if s.Z >= level {
			return true
		}
	}
	return false
}
