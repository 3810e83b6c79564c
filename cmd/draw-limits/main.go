// Command draw-limits draws the exclusion-limit plot of one signal grid
// from the results tables prepared by prepare-limits.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/banshee-data/limitplotter/internal/config"
	"github.com/banshee-data/limitplotter/internal/limitplot"
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
	fs := flag.NewFlagSet("draw-limits", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var channel, grid string
	fs.StringVar(&channel, "channel", "", "Lepton channel")
	fs.StringVar(&channel, "c", "", "Shorthand for --channel")
	fs.StringVar(&grid, "grid", "", "Signal grid (bWN)")
	fs.StringVar(&grid, "g", "", "Shorthand for --grid")
	configPath := fs.String("config", "", "Plot configuration overriding the grid preset (.json, .yaml or .yml)")
	limplotdir := fs.String("limplotdir", os.Getenv("LIMPLOTDIR"), "Installation directory holding limitplotter/limit_results (default $LIMPLOTDIR)")
	outputDir := fs.String("output-dir", ".", "Directory for the plots and run manifest")
	html := fs.Bool("html", false, "Also write an interactive HTML view of the grid")
	showVersion := fs.Bool("version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return usageError{err}
	}
	if *showVersion {
		fmt.Fprintf(stdout, "draw-limits %s\n", version.String())
		return nil
	}

	var problems *multierror.Error
	if channel == "" {
		problems = multierror.Append(problems, errors.New("you must provide a channel (--channel)"))
	}
	if grid == "" {
		problems = multierror.Append(problems, errors.New("you must provide a grid (--grid)"))
	} else if !config.IsSupportedGrid(grid) {
		problems = multierror.Append(problems, fmt.Errorf("%w %q", config.ErrUnknownGrid, grid))
	}
	if *limplotdir == "" {
		problems = multierror.Append(problems, errors.New("LIMPLOTDIR is not set (use --limplotdir)"))
	}
	if err := problems.ErrorOrNil(); err != nil {
		return usageError{err}
	}

	cfg, err := config.Load(*configPath, grid)
	if err != nil {
		return err
	}

	sum, err := limitplot.Run(limitplot.Options{
		Grid:       grid,
		Channel:    channel,
		ResultsDir: limitplot.ResultsDir(*limplotdir),
		OutputDir:  *outputDir,
		Config:     cfg,
		HTML:       *html,
	})
	if err != nil {
		return err
	}
	for _, out := range sum.Outputs {
		fmt.Fprintln(stdout, out)
	}
	return nil
}
