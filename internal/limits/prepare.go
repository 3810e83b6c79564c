package limits

import (
	"errors"
	"fmt"

	"github.com/banshee-data/limitplotter/internal/fsutil"
	"github.com/banshee-data/limitplotter/internal/monitoring"
)

// ErrUpperLimitUnsupported is returned when upper-limit gathering is
// requested; only hypothesis-test (CLs) results are converted.
var ErrUpperLimitUnsupported = errors.New("gathering upper limits on the signal strength is not supported")

// PrepareOptions selects one harvest list to convert.
type PrepareOptions struct {
	Selection

	// ResultsDir holds the toolkit outputs, including the harvest list.
	ResultsDir string
	// OutputDir is the root of the humanized results tree.
	OutputDir string
	// UpperLimit requests upper-limit results instead of CLs.
	UpperLimit bool
}

// Prepare converts the harvest list named by opts into a humanized
// results table under opts.OutputDir and returns the written path.
func Prepare(fs fsutil.FileSystem, opts PrepareOptions) (string, error) {
	if opts.UpperLimit {
		return "", ErrUpperLimitUnsupported
	}
	info, err := fs.Stat(opts.ResultsDir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("results directory (%s) does not exist", opts.ResultsDir)
	}

	in := HarvestListPath(opts.ResultsDir, opts.Selection)
	monitoring.Logf("humanize_list_files    harvest list: %s", in)
	entries, err := LoadHarvestList(fs, in)
	if err != nil {
		return "", err
	}

	out := ResultsFilePath(opts.OutputDir, opts.Selection)
	if err := SaveResultsFile(fs, out, Humanize(entries)); err != nil {
		return "", err
	}
	monitoring.Logf("humanize_list_files    wrote %d points to %s", len(entries), out)
	return out, nil
}
