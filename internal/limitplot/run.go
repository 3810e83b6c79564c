// Package limitplot runs the drawing pipeline: collect results tables,
// build the signal grid, extract contours and write the figures.
package limitplot

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/limitplotter/internal/config"
	"github.com/banshee-data/limitplotter/internal/contour"
	"github.com/banshee-data/limitplotter/internal/fsutil"
	"github.com/banshee-data/limitplotter/internal/monitoring"
	"github.com/banshee-data/limitplotter/internal/render"
	"github.com/banshee-data/limitplotter/internal/signalgrid"
	"github.com/banshee-data/limitplotter/internal/stats"
	"github.com/banshee-data/limitplotter/internal/timeutil"
	"github.com/banshee-data/limitplotter/internal/version"
)

// ResultsDir is where prepared results tables live under a LIMPLOTDIR.
func ResultsDir(limplotdir string) string {
	return filepath.Join(limplotdir, "limitplotter", "limit_results")
}

// Options configures one run.
type Options struct {
	Grid    string
	Channel string

	// ResultsDir holds one <region>_<channel>_<grid>/ directory per region.
	ResultsDir string
	// OutputDir receives the images, HTML views and manifest.
	OutputDir string

	// Config defaults to the grid's preset.
	Config *config.PlotConfig
	// HTML also writes an interactive view of the grid values.
	HTML bool

	FS    fsutil.FileSystem
	Clock timeutil.Clock
}

// Summary describes what a run produced.
type Summary struct {
	RunID      string
	Points     int
	BaseRegion string
	// Contours maps each quantity to its point count; quantities without a
	// contour are absent.
	Contours map[string]int
	Outputs  []string
}

// Manifest is written next to the outputs of every run.
type Manifest struct {
	RunID      string         `json:"run_id"`
	CreatedAt  string         `json:"created_at"`
	Version    string         `json:"version"`
	Grid       string         `json:"grid"`
	Channel    string         `json:"channel"`
	BaseRegion string         `json:"base_region"`
	Regions    []string       `json:"regions"`
	Points     int            `json:"points"`
	Contours   map[string]int `json:"contours"`
	Outputs    []string       `json:"outputs"`
}

// Run executes the pipeline described by opts.
func Run(opts Options) (*Summary, error) {
	if opts.Grid == "" || opts.Channel == "" {
		return nil, fmt.Errorf("input options are empty (channel: %q, grid: %q)", opts.Channel, opts.Grid)
	}
	if opts.ResultsDir == "" {
		return nil, errors.New("a results directory is required")
	}
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load("", opts.Grid); err != nil {
			return nil, err
		}
	}
	fs := opts.FS
	if fs == nil {
		fs = fsutil.OSFileSystem{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	outDir := opts.OutputDir
	if outDir == "" {
		outDir = "."
	}

	base := cfg.GetBaseRegion()
	display := cfg.Display()
	logSummary(opts, cfg)

	regions := cfg.RegionSet()
	for _, r := range regions {
		if err := r.CollectFiles(fs, opts.ResultsDir, opts.Channel, opts.Grid); err != nil {
			return nil, err
		}
	}

	grid, err := signalgrid.Build(fs, regions)
	if err != nil {
		return nil, err
	}
	for _, s := range grid.Signals() {
		monitoring.Logf("    %s", s.Point)
	}

	if err := fs.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}

	sum := &Summary{
		RunID:      uuid.New().String(),
		Points:     grid.Len(),
		BaseRegion: base,
		Contours:   make(map[string]int),
	}
	ext := cfg.GetFormat()

	if cfg.GetBestSRPerPoint() {
		grid.SelectBest(cfg.RegionNames())
		path := filepath.Join(outDir, render.OutputName(base, opts.Grid, opts.Channel, render.KindBestRegion, ext))
		if err := writeBestRegionPlot(fs, path, cfg, grid, regions); err != nil {
			return nil, err
		}
		sum.Outputs = append(sum.Outputs, path)
	}

	if cfg.GetLimitPlot() {
		contours, err := buildContours(cfg, grid, base)
		if err != nil {
			return nil, err
		}
		for q, xys := range contours {
			sum.Contours[q.String()] = len(xys)
		}

		lp := limitPlot(cfg, grid, base, display, contours)
		p, err := lp.Plot()
		if err != nil {
			return nil, err
		}
		data, err := render.Encode(p, ext, cfg.GetImageSizeCm())
		if err != nil {
			return nil, err
		}
		path := filepath.Join(outDir, render.OutputName(base, opts.Grid, opts.Channel, display.String(), ext))
		monitoring.Logf(" >>> Saving limit plot to %s", path)
		if err := fs.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", path, err)
		}
		sum.Outputs = append(sum.Outputs, path)

		if opts.HTML {
			htmlPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".html"
			if err := writeGridView(fs, htmlPath, opts, cfg, grid, base, display, contours); err != nil {
				return nil, err
			}
			sum.Outputs = append(sum.Outputs, htmlPath)
		}
	}

	if len(sum.Outputs) == 0 {
		monitoring.Logf("draw_limits    nothing to draw: limit_plot and best_sr_per_point are both off")
		return sum, nil
	}

	m := Manifest{
		RunID:      sum.RunID,
		CreatedAt:  timeutil.FormatStamp(clock.Now()),
		Version:    version.String(),
		Grid:       opts.Grid,
		Channel:    opts.Channel,
		BaseRegion: base,
		Regions:    cfg.RegionNames(),
		Points:     sum.Points,
		Contours:   sum.Contours,
		Outputs:    sum.Outputs,
	}
	manifestPath := sum.Outputs[0] + ".manifest.json"
	if err := writeManifest(fs, manifestPath, m); err != nil {
		return nil, err
	}
	sum.Outputs = append(sum.Outputs, manifestPath)
	return sum, nil
}

func logSummary(opts Options, cfg *config.PlotConfig) {
	monitoring.Logf("==================================")
	monitoring.Logf("  limitplotter summary            ")
	monitoring.Logf("----------------------------------")
	monitoring.Logf(" grid:                %s", opts.Grid)
	monitoring.Logf(" channel:             %s", opts.Channel)
	monitoring.Logf(" base region:         %s", cfg.GetBaseRegion())
	monitoring.Logf(" do limit plot:       %t", cfg.GetLimitPlot())
	monitoring.Logf(" value display:       %s", cfg.Display())
	monitoring.Logf(" do best SR plot:     %t", cfg.GetBestSRPerPoint())
	monitoring.Logf("==================================")
}

// buildContours returns the exclusion contour of every quantity that has
// one.
func buildContours(cfg *config.PlotConfig, grid *signalgrid.Grid, region string) (map[signalgrid.Quantity]plotter.XYs, error) {
	b := &contour.Builder{
		Bounds:    cfg.Bounds(),
		Bins:      cfg.GetBins(),
		Level:     stats.ExclusionLevel(cfg.GetPValue()),
		FillEmpty: cfg.GetFillEmpty(),
	}
	out := make(map[signalgrid.Quantity]plotter.XYs, len(signalgrid.Quantities))
	for _, q := range signalgrid.Quantities {
		xys, ok, err := b.Exclusion(grid.Samples(region, q))
		if err != nil {
			return nil, fmt.Errorf("%s contour: %w", q, err)
		}
		if !ok {
			monitoring.Logf("make_contour    no %s contour for %s at significance %.3f", q, region, b.Level)
			continue
		}
		out[q] = xys
	}
	return out, nil
}

func limitPlot(cfg *config.PlotConfig, grid *signalgrid.Grid, region string, display signalgrid.Display, contours map[signalgrid.Quantity]plotter.XYs) *render.LimitPlot {
	lp := &render.LimitPlot{
		Bounds:       cfg.Bounds(),
		XTitle:       cfg.GetXTitle(),
		YTitle:       cfg.GetYTitle(),
		Text:         cfg.TextBlock(),
		Expected:     contours[signalgrid.Expected],
		Observed:     contours[signalgrid.Observed],
		ObservedUp:   contours[signalgrid.ObservedUp],
		ObservedDown: contours[signalgrid.ObservedDown],
		ValueMaxX:    cfg.GetValueMaxX(),
	}
	for _, l := range cfg.ForbiddenLines {
		lp.Lines = append(lp.Lines, render.KinematicLine{X0: l.X0, Y0: l.Y0, X1: l.X1, Y1: l.Y1, Label: l.Label, LabelAt: l.GetLabelAt()})
	}

	band, err := contour.AssembleBand(contours[signalgrid.Expected], contours[signalgrid.ExpectedUp], contours[signalgrid.ExpectedDown])
	if err != nil {
		monitoring.Logf("make_exclusion_band    skipping band: %v", err)
	} else {
		lp.Band = &band
	}

	if display != signalgrid.DisplayNone {
		lp.Values = grid.Values(region, display)
		lp.ValueTitle = display.Title()
	}

	if cfg.GetHeatmap() {
		b := cfg.Bounds()
		r, err := contour.Rasterize(grid.Samples(region, signalgrid.Expected), b, cfg.GetBins(), cfg.GetBins(), cfg.GetFillEmpty())
		if err != nil {
			monitoring.Logf("draw_limits    skipping heat map: %v", err)
		} else {
			lp.Heat = r
		}
	}
	return lp
}
