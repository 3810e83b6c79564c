package contour

import "gonum.org/v1/plot/plotter"

// edge names one grid edge: the horizontal edge from node (i,j) to
// (i+1,j), or the vertical edge from (i,j) to (i,j+1).
type edge struct {
	i, j     int
	vertical bool
}

type segment struct {
	a, b edge
}

// cell-local edge selectors
const (
	eBottom = iota
	eRight
	eTop
	eLeft
)

// cellSegments lists, per corner-inside mask (bit0 bottom-left,
// bit1 bottom-right, bit2 top-right, bit3 top-left), the edge pairs cut by
// the iso-line. Saddles (5, 10) are resolved separately.
var cellSegments = [16][][2]int{
	1:  {{eLeft, eBottom}},
	2:  {{eBottom, eRight}},
	3:  {{eLeft, eRight}},
	4:  {{eRight, eTop}},
	6:  {{eBottom, eTop}},
	7:  {{eLeft, eTop}},
	8:  {{eTop, eLeft}},
	9:  {{eBottom, eTop}},
	11: {{eRight, eTop}},
	12: {{eLeft, eRight}},
	13: {{eBottom, eRight}},
	14: {{eLeft, eBottom}},
}

// Contours extracts the iso-lines at level with marching squares over the
// bin centers. A node is inside when its value is >= level. Saddle cells
// are disambiguated by the mean of their four corners. Components are
// returned in the row-major order (from the lower-left) of the cell where
// each was first met; closed components repeat their first point at the
// end.
func (r *Raster) Contours(level float64) []plotter.XYs {
	segs := r.segments(level)
	if len(segs) == 0 {
		return nil
	}

	byEdge := make(map[edge][]int, 2*len(segs))
	for k, s := range segs {
		byEdge[s.a] = append(byEdge[s.a], k)
		byEdge[s.b] = append(byEdge[s.b], k)
	}
	used := make([]bool, len(segs))

	// extend grows chain from its tail; it reports whether the chain closed.
	extend := func(chain []edge) ([]edge, bool) {
		for {
			tail := chain[len(chain)-1]
			next := -1
			for _, k := range byEdge[tail] {
				if !used[k] {
					next = k
					break
				}
			}
			if next < 0 {
				return chain, false
			}
			used[next] = true
			other := segs[next].a
			if other == tail {
				other = segs[next].b
			}
			chain = append(chain, other)
			if other == chain[0] {
				return chain, true
			}
		}
	}

	var paths []plotter.XYs
	for k, s := range segs {
		if used[k] {
			continue
		}
		used[k] = true
		chain, closed := extend([]edge{s.a, s.b})
		if !closed {
			reverseEdges(chain)
			chain, _ = extend(chain)
			reverseEdges(chain)
		}

		path := make(plotter.XYs, len(chain))
		for n, e := range chain {
			path[n] = r.crossing(e, level)
		}
		paths = append(paths, path)
	}
	return paths
}

func (r *Raster) segments(level float64) []segment {
	var segs []segment
	for j := 0; j < r.ny-1; j++ {
		for i := 0; i < r.nx-1; i++ {
			bl, br := r.Z(i, j), r.Z(i+1, j)
			tr, tl := r.Z(i+1, j+1), r.Z(i, j+1)

			mask := 0
			if bl >= level {
				mask |= 1
			}
			if br >= level {
				mask |= 2
			}
			if tr >= level {
				mask |= 4
			}
			if tl >= level {
				mask |= 8
			}

			pairs := cellSegments[mask]
			if mask == 5 || mask == 10 {
				connected := (bl+br+tr+tl)/4 >= level
				// connected inside corners: cut off the two outside corners
				if (mask == 5) == connected {
					pairs = [][2]int{{eBottom, eRight}, {eTop, eLeft}}
				} else {
					pairs = [][2]int{{eLeft, eBottom}, {eRight, eTop}}
				}
			}
			for _, p := range pairs {
				segs = append(segs, segment{a: cellEdge(i, j, p[0]), b: cellEdge(i, j, p[1])})
			}
		}
	}
	return segs
}

func cellEdge(i, j, side int) edge {
	switch side {
	case eBottom:
		return edge{i: i, j: j}
	case eRight:
		return edge{i: i + 1, j: j, vertical: true}
	case eTop:
		return edge{i: i, j: j + 1}
	default:
		return edge{i: i, j: j, vertical: true}
	}
}

// crossing interpolates where the level is met along e.
func (r *Raster) crossing(e edge, level float64) plotter.XY {
	i2, j2 := e.i+1, e.j
	if e.vertical {
		i2, j2 = e.i, e.j+1
	}
	za, zb := r.Z(e.i, e.j), r.Z(i2, j2)
	t := 0.5
	if zb != za {
		t = (level - za) / (zb - za)
	}
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	xa, ya := r.X(e.i), r.Y(e.j)
	xb, yb := r.X(i2), r.Y(j2)
	return plotter.XY{X: xa + t*(xb-xa), Y: ya + t*(yb-ya)}
}

func reverseEdges(s []edge) {
	for a, b := 0, len(s)-1; a < b; a, b = a+1, b-1 {
		s[a], s[b] = s[b], s[a]
	}
}
