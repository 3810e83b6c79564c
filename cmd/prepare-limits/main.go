// Command prepare-limits converts a fit toolkit harvest list into the
// humanized limit-results table read by draw-limits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/banshee-data/limitplotter/internal/config"
	"github.com/banshee-data/limitplotter/internal/fsutil"
	"github.com/banshee-data/limitplotter/internal/limits"
	"github.com/banshee-data/limitplotter/internal/version"
)

// usageError marks invalid command lines; main exits 2 for them.
type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("prepare-limits", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		region, channel, grid, syst, resultsDir string
		upperLimit                              bool
	)
	fs.StringVar(&region, "region", "", "Signal region name")
	fs.StringVar(&region, "r", "", "Shorthand for --region")
	fs.StringVar(&channel, "channel", "", "Lepton channel")
	fs.StringVar(&channel, "c", "", "Shorthand for --channel")
	fs.StringVar(&grid, "grid", "", "Signal grid (bWN)")
	fs.StringVar(&grid, "g", "", "Shorthand for --grid")
	fs.StringVar(&syst, "syst", "Nominal", "Signal cross-section variation: Nominal, Up or Down")
	fs.StringVar(&syst, "s", "Nominal", "Shorthand for --syst")
	fs.BoolVar(&upperLimit, "upperlimit", false, "Gather upper limits on the signal strength (unsupported)")
	fs.BoolVar(&upperLimit, "u", false, "Shorthand for --upperlimit")
	fs.StringVar(&resultsDir, "results_dir", "", "Directory holding the harvest lists")
	fs.StringVar(&resultsDir, "d", "", "Shorthand for --results_dir")
	outputDir := fs.String("output_dir", "./limit_results", "Root of the humanized results tree")
	showVersion := fs.Bool("version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{err}
	}
	if *showVersion {
		fmt.Fprintf(stdout, "prepare-limits %s\n", version.String())
		return nil
	}

	var problems *multierror.Error
	if resultsDir == "" {
		problems = multierror.Append(problems, errors.New("you must provide a results directory (--results_dir)"))
	}
	if region == "" {
		problems = multierror.Append(problems, errors.New("you must provide a region (--region)"))
	}
	if channel == "" {
		problems = multierror.Append(problems, errors.New("you must provide a channel (--channel)"))
	}
	if grid == "" {
		problems = multierror.Append(problems, errors.New("you must provide a grid (--grid)"))
	} else if !config.IsSupportedGrid(grid) {
		problems = multierror.Append(problems, fmt.Errorf("%w %q", config.ErrUnknownGrid, grid))
	}
	v, err := limits.ParseVariation(syst)
	if err != nil {
		problems = multierror.Append(problems, err)
	}
	if err := problems.ErrorOrNil(); err != nil {
		return usageError{err}
	}

	out, err := limits.Prepare(fsutil.OSFileSystem{}, limits.PrepareOptions{
		Selection:  limits.Selection{Region: region, Channel: channel, Grid: grid, Syst: v},
		ResultsDir: resultsDir,
		OutputDir:  *outputDir,
		UpperLimit: upperLimit,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, out)
	return nil
}
