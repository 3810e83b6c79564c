package limits

import (
	"errors"
	"fmt"

	"github.com/banshee-data/limitplotter/internal/fsutil"
	"github.com/banshee-data/limitplotter/internal/monitoring"
)

// ErrResultsNotFound is returned when a required results table is absent.
var ErrResultsNotFound = errors.New("limit results file not found")

// ErrDuplicateResults is returned when a results glob is ambiguous.
var ErrDuplicateResults = errors.New("multiple limit results files")

// Style is how a region is drawn on summary plots.
type Style struct {
	Color  string // hex, e.g. "#ff0000"
	Marker string // circle, square or triangle
}

// Region is one analysis category together with the results tables
// collected for it.
type Region struct {
	Name        string
	DisplayName string
	Style       Style

	files map[Variation]string
}

// NewRegion returns a region with no collected files.
func NewRegion(name string, style Style) *Region {
	return &Region{Name: name, DisplayName: name, Style: style}
}

// File returns the collected results file for v, or "".
func (r *Region) File(v Variation) string {
	return r.files[v]
}

// SetFile records the results file for v.
func (r *Region) SetFile(v Variation, path string) {
	if r.files == nil {
		r.files = make(map[Variation]string, len(Variations))
	}
	r.files[v] = path
}

// Label is the display name, falling back to the region name.
func (r *Region) Label() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.Name
}

// CollectFiles finds the Nominal, Up and Down results tables of r under
// root/<region>_<channel>_<grid>/. Exactly one Nominal table is required.
// Missing Up/Down tables are logged and left unset; more than one match
// for any variation is an error.
func (r *Region) CollectFiles(fs fsutil.FileSystem, root, channel, grid string) error {
	if channel == "" {
		return fmt.Errorf("region %s: a signal channel is required to locate limit results", r.Name)
	}
	sel := Selection{Region: r.Name, Channel: channel, Grid: grid}

	for _, v := range Variations {
		pattern := ResultsGlob(root, sel, v)
		matches, err := fs.Glob(pattern)
		if err != nil {
			return fmt.Errorf("region %s: bad results pattern %s: %w", r.Name, pattern, err)
		}
		switch {
		case len(matches) == 1:
			monitoring.Logf("collect_limit_result_files    %s %s limit results file: %s", r.Name, v, matches[0])
			r.SetFile(v, matches[0])
		case len(matches) > 1:
			return fmt.Errorf("region %s: %w for %s: %v", r.Name, ErrDuplicateResults, pattern, matches)
		case v == Nominal:
			return fmt.Errorf("region %s: %w: %s", r.Name, ErrResultsNotFound, pattern)
		default:
			monitoring.Logf("collect_limit_result_files    WARNING %s limit results file (%s) not found", v, pattern)
		}
	}
	return nil
}
