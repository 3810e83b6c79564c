package contour

import (
	"sort"

	"gonum.org/v1/plot/plotter"
)

// convexHull returns the hull of samples counter-clockwise without
// collinear vertices (Andrew's monotone chain). Fewer than three
// non-collinear points give a hull with fewer than three vertices.
func convexHull(samples []Sample) plotter.XYs {
	pts := make(plotter.XYs, len(samples))
	for k, s := range samples {
		pts[k] = plotter.XY{X: s.X, Y: s.Y}
	}
	sort.Slice(pts, func(a, b int) bool {
		if pts[a].X != pts[b].X {
			return pts[a].X < pts[b].X
		}
		return pts[a].Y < pts[b].Y
	})
	if len(pts) < 3 {
		return pts
	}

	hull := make(plotter.XYs, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for k := len(pts) - 2; k >= 0; k-- {
		p := pts[k]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// cross is the z component of (b-a)×(c-a).
func cross(a, b, c plotter.XY) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// hullContains reports whether p lies inside or on the counter-clockwise
// hull. Degenerate hulls contain nothing.
func hullContains(hull plotter.XYs, p plotter.XY) bool {
	if len(hull) < 3 {
		return false
	}
	const eps = 1e-9
	for k := range hull {
		a, b := hull[k], hull[(k+1)%len(hull)]
		if cross(a, b, p) < -eps {
			return false
		}
	}
	return true
}
