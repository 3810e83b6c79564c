// Package signalgrid holds the signal mass grid: one Signal per mass point
// with a fixed-shape Result per analysis region.
package signalgrid

import (
	"fmt"

	"github.com/banshee-data/limitplotter/internal/contour"
	"github.com/banshee-data/limitplotter/internal/fsutil"
	"github.com/banshee-data/limitplotter/internal/limits"
	"github.com/banshee-data/limitplotter/internal/monitoring"
)

// BestRegion is the pseudo-region name addressing each point's most
// sensitive region after SelectBest.
const BestRegion = "*best*"

// Result holds every CLs and significance value of one region at one
// mass point.
type Result struct {
	ObservedCLs     float64
	ExpectedCLs     float64
	ExpectedCLsUp1s float64
	ExpectedCLsDn1s float64

	ObservedSig     float64
	ExpectedSig     float64
	ExpectedSigUp1s float64
	ExpectedSigDn1s float64

	// observed values with the signal cross-section varied by ±1σ(theory)
	ObservedCLsUp1s float64
	ObservedCLsDn1s float64
	ObservedSigUp1s float64
	ObservedSigDn1s float64

	HasUp   bool
	HasDown bool
}

// Significance returns the value a contour of quantity q is built from.
func (r Result) Significance(q Quantity) float64 {
	switch q {
	case Observed:
		return r.ObservedSig
	case ObservedUp:
		return r.ObservedSigUp1s
	case ObservedDown:
		return r.ObservedSigDn1s
	case Expected:
		return r.ExpectedSig
	case ExpectedUp:
		return r.ExpectedSigUp1s
	case ExpectedDown:
		return r.ExpectedSigDn1s
	}
	return 0
}

// Value returns the number printed for display mode d.
func (r Result) Value(d Display) float64 {
	switch d {
	case DisplayExpectedCLs:
		return r.ExpectedCLs
	case DisplayObservedCLs:
		return r.ObservedCLs
	case DisplayExpectedSig:
		return r.ExpectedSig
	case DisplayObservedSig:
		return r.ObservedSig
	}
	return 0
}

// Signal is one mass point of the grid.
type Signal struct {
	Point limits.MassPoint

	results map[string]*Result

	best       Result
	bestRegion string
}

// Result returns the region's result at this point. A region with no entry
// yields the zero Result and false.
func (s *Signal) Result(region string) (Result, bool) {
	if region == BestRegion {
		return s.best, s.bestRegion != ""
	}
	r, ok := s.results[region]
	if !ok {
		return Result{}, false
	}
	return *r, true
}

// BestRegionName is the region chosen by SelectBest, or "".
func (s *Signal) BestRegionName() string {
	return s.bestRegion
}

func (s *Signal) entry(region string) *Result {
	r, ok := s.results[region]
	if !ok {
		r = &Result{}
		s.results[region] = r
	}
	return r
}

// Grid is the set of mass points taken from the first region's nominal
// results. Points are kept in file order.
type Grid struct {
	signals []*Signal
	index   map[limits.PointKey]*Signal
}

// FillStats reports how the rows of one results table joined the grid.
type FillStats struct {
	Matched int
	Dropped int
}

// Assign builds the grid from rows. Rows repeating an earlier point are
// collapsed onto it.
func Assign(rows []limits.Row) *Grid {
	g := &Grid{index: make(map[limits.PointKey]*Signal, len(rows))}
	for _, row := range rows {
		key := row.Point.Key()
		if _, dup := g.index[key]; dup {
			continue
		}
		s := &Signal{Point: row.Point, results: make(map[string]*Result)}
		g.signals = append(g.signals, s)
		g.index[key] = s
	}
	return g
}

// Len is the number of mass points.
func (g *Grid) Len() int {
	return len(g.signals)
}

// Signals returns the grid points in file order.
func (g *Grid) Signals() []*Signal {
	return g.signals
}

// Lookup finds the signal at p.
func (g *Grid) Lookup(p limits.MassPoint) (*Signal, bool) {
	s, ok := g.index[p.Key()]
	return s, ok
}

// Fill joins a results table of one region and variation onto the grid.
// Nominal rows set the CLs and significance values; Up and Down rows set
// the observed values under the cross-section variation. Rows for points
// not in the grid are dropped.
func (g *Grid) Fill(region string, v limits.Variation, rows []limits.Row) FillStats {
	var st FillStats
	for _, row := range rows {
		s, ok := g.index[row.Point.Key()]
		if !ok {
			st.Dropped++
			continue
		}
		st.Matched++
		r := s.entry(region)
		switch v {
		case limits.Nominal:
			r.ObservedCLs = row.CLs
			r.ExpectedCLs = row.CLsExp
			r.ExpectedCLsUp1s = row.CLsUp1s
			r.ExpectedCLsDn1s = row.CLsDn1s
			r.ObservedSig = row.ObsSig
			r.ExpectedSig = row.ExpSig
			r.ExpectedSigUp1s = row.ExpSigUp1s
			r.ExpectedSigDn1s = row.ExpSigDn1s
		case limits.Up:
			r.ObservedCLsUp1s = row.CLs
			r.ObservedSigUp1s = row.ObsSig
			r.HasUp = true
		case limits.Down:
			r.ObservedCLsDn1s = row.CLs
			r.ObservedSigDn1s = row.ObsSig
			r.HasDown = true
		}
	}
	return st
}

// SelectBest picks, per point, the region with the largest expected
// significance; the first listed region wins ties. Points with no result
// in any of the regions keep no best region.
func (g *Grid) SelectBest(regions []string) {
	for _, s := range g.signals {
		s.bestRegion = ""
		s.best = Result{}
		for _, name := range regions {
			r, ok := s.results[name]
			if !ok {
				continue
			}
			if s.bestRegion == "" || r.ExpectedSig > s.best.ExpectedSig {
				s.bestRegion = name
				s.best = *r
			}
		}
	}
}

// Samples returns one (mX, mY, significance) sample per grid point for the
// given region and quantity. Points without an entry contribute 0.
func (g *Grid) Samples(region string, q Quantity) []contour.Sample {
	out := make([]contour.Sample, 0, len(g.signals))
	missing := 0
	for _, s := range g.signals {
		r, ok := s.Result(region)
		if !ok {
			missing++
		}
		out = append(out, contour.Sample{X: s.Point.MX, Y: s.Point.MY, Z: r.Significance(q)})
	}
	if missing > 0 {
		monitoring.Logf("make_contour    %s %s: %d of %d points have no result, using 0", region, q, missing, len(g.signals))
	}
	return out
}

// Values returns the displayed number per grid point for region.
func (g *Grid) Values(region string, d Display) []contour.Sample {
	out := make([]contour.Sample, 0, len(g.signals))
	for _, s := range g.signals {
		r, _ := s.Result(region)
		out = append(out, contour.Sample{X: s.Point.MX, Y: s.Point.MY, Z: r.Value(d)})
	}
	return out
}

// Build reads the collected results tables of regions and returns the
// filled grid. The grid points come from the first region's Nominal table.
func Build(fs fsutil.FileSystem, regions []*limits.Region) (*Grid, error) {
	if len(regions) == 0 {
		return nil, fmt.Errorf("no regions configured")
	}
	first := regions[0].File(limits.Nominal)
	if first == "" {
		return nil, fmt.Errorf("region %s: nominal limit results file is not set", regions[0].Name)
	}
	rows, err := limits.LoadResultsFile(fs, first)
	if err != nil {
		return nil, err
	}
	g := Assign(rows)
	monitoring.Logf("assign_grid    %d total grid points", g.Len())

	for _, r := range regions {
		monitoring.Logf("fill_raw_results    %s", r.Name)
		for _, v := range limits.Variations {
			path := r.File(v)
			if path == "" {
				if v == limits.Nominal {
					return nil, fmt.Errorf("region %s: nominal limit results file is not set", r.Name)
				}
				monitoring.Logf("fill_raw_results    WARNING %s %s limit results file is not set", r.Name, v)
				continue
			}
			rows, err := limits.LoadResultsFile(fs, path)
			if err != nil {
				return nil, err
			}
			st := g.Fill(r.Name, v, rows)
			if st.Dropped > 0 {
				monitoring.Logf("fill_raw_results    WARNING %s %s: %d rows matched no grid point", r.Name, v, st.Dropped)
			}
		}
	}
	return g, nil
}
