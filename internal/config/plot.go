package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/banshee-data/limitplotter/internal/contour"
	"github.com/banshee-data/limitplotter/internal/limits"
	"github.com/banshee-data/limitplotter/internal/signalgrid"
)

// ErrUnknownGrid is returned for a signal grid with no built-in preset.
var ErrUnknownGrid = errors.New("unknown signal grid")

// SupportedGrids lists the grids with a built-in preset.
var SupportedGrids = []string{"bWN"}

// IsSupportedGrid reports whether grid has a preset.
func IsSupportedGrid(grid string) bool {
	for _, g := range SupportedGrids {
		if g == grid {
			return true
		}
	}
	return false
}

const maxConfigSize = 1 * 1024 * 1024 // 1MB

var (
	defaultColors  = []string{"#ff0000", "#0000ff", "#00ff00"}
	defaultMarkers = []string{"circle", "square", "triangle"}

	hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// Markers are the glyph names a region may use on the best-region map.
var Markers = []string{"circle", "square", "triangle"}

// Formats are the image extensions the renderer can write.
var Formats = []string{"eps", "pdf", "svg", "png", "jpg", "tif"}

// RegionConfig names one signal region and how it is drawn.
type RegionConfig struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Color       string `json:"color,omitempty" yaml:"color,omitempty"`
	Marker      string `json:"marker,omitempty" yaml:"marker,omitempty"`
}

// ForbiddenLine is a kinematic boundary drawn as a dashed segment. The
// label is placed at LabelAt along the segment (0 start, 1 end).
type ForbiddenLine struct {
	X0      float64  `json:"x0" yaml:"x0"`
	Y0      float64  `json:"y0" yaml:"y0"`
	X1      float64  `json:"x1" yaml:"x1"`
	Y1      float64  `json:"y1" yaml:"y1"`
	Label   string   `json:"label,omitempty" yaml:"label,omitempty"`
	LabelAt *float64 `json:"label_at,omitempty" yaml:"label_at,omitempty"`
}

// GetLabelAt returns the label position along the line or the default.
func (l ForbiddenLine) GetLabelAt() float64 {
	if l.LabelAt == nil {
		return 0.5
	}
	return *l.LabelAt
}

// PlotConfig describes one grid's limit plot. Unset fields fall back to the
// defaults returned by the Get* methods, so partial files are safe.
type PlotConfig struct {
	BaseRegion *string        `json:"base_region,omitempty" yaml:"base_region,omitempty"`
	Regions    []RegionConfig `json:"regions,omitempty" yaml:"regions,omitempty"`

	// Frame
	XMin   *float64 `json:"x_min,omitempty" yaml:"x_min,omitempty"`
	XMax   *float64 `json:"x_max,omitempty" yaml:"x_max,omitempty"`
	YMin   *float64 `json:"y_min,omitempty" yaml:"y_min,omitempty"`
	YMax   *float64 `json:"y_max,omitempty" yaml:"y_max,omitempty"`
	XTitle *string  `json:"x_title,omitempty" yaml:"x_title,omitempty"`
	YTitle *string  `json:"y_title,omitempty" yaml:"y_title,omitempty"`

	// Text block
	ExperimentLabel *string         `json:"experiment_label,omitempty" yaml:"experiment_label,omitempty"`
	LumiLabel       *string         `json:"lumi_label,omitempty" yaml:"lumi_label,omitempty"`
	DecayProcess    *string         `json:"decay_process,omitempty" yaml:"decay_process,omitempty"`
	RegionLabel     *string         `json:"region_label,omitempty" yaml:"region_label,omitempty"`
	ForbiddenLines  []ForbiddenLine `json:"forbidden_lines,omitempty" yaml:"forbidden_lines,omitempty"`

	// Per-point numbers
	ValueDisplay *string  `json:"value_display,omitempty" yaml:"value_display,omitempty"`
	ValueMaxX    *float64 `json:"value_max_x,omitempty" yaml:"value_max_x,omitempty"`

	// Contouring
	Bins      *int     `json:"bins,omitempty" yaml:"bins,omitempty"`
	PValue    *float64 `json:"p_value,omitempty" yaml:"p_value,omitempty"`
	FillEmpty *bool    `json:"fill_empty,omitempty" yaml:"fill_empty,omitempty"`

	// Outputs
	LimitPlot      *bool    `json:"limit_plot,omitempty" yaml:"limit_plot,omitempty"`
	BestSRPerPoint *bool    `json:"best_sr_per_point,omitempty" yaml:"best_sr_per_point,omitempty"`
	Heatmap        *bool    `json:"heatmap,omitempty" yaml:"heatmap,omitempty"`
	ImageSizeCm    *float64 `json:"image_size_cm,omitempty" yaml:"image_size_cm,omitempty"`
	Format         *string  `json:"format,omitempty" yaml:"format,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }

// Preset returns the built-in configuration of grid.
func Preset(grid string) (*PlotConfig, error) {
	switch grid {
	case "bWN":
		return bWNPreset(), nil
	}
	return nil, fmt.Errorf("%w %q (supported: %s)", ErrUnknownGrid, grid, strings.Join(SupportedGrids, ", "))
}

// bWNPreset is the three-body stop decay t̃ → bWχ̃⁰₁ in the same-flavour
// and different-flavour dilepton channels.
func bWNPreset() *PlotConfig {
	const xlow = 100.0
	return &PlotConfig{
		BaseRegion: ptrString("SRwt"),
		Regions: []RegionConfig{
			{Name: "SRwt", DisplayName: "SRw+SRt", Color: "#ff0000", Marker: "circle"},
		},
		XMin:         ptrFloat64(xlow),
		XMax:         ptrFloat64(450),
		YMin:         ptrFloat64(0),
		YMax:         ptrFloat64(420),
		XTitle:       ptrString("m(t̃) [GeV]"),
		YTitle:       ptrString("m(χ̃⁰₁) [GeV]"),
		DecayProcess: ptrString("t̃ → bWχ̃⁰₁"),
		RegionLabel:  ptrString("SRw(3-body) + SRt(3-body)"),
		ForbiddenLines: []ForbiddenLine{
			{X0: xlow, Y0: xlow - 84.8, X1: 400, Y1: 400 - 84.8, Label: "Δm(t̃₁, χ̃⁰₁) < m(b) + m(W)", LabelAt: ptrFloat64(0.55)},
			{X0: 172.5, Y0: 0, X1: 450, Y1: 450 - 172.5, Label: "Δm(t̃₁, χ̃⁰₁) < m(t)", LabelAt: ptrFloat64(0.55)},
			{X0: xlow, Y0: 100, X1: 317, Y1: 317, Label: "Δm(t̃₁, χ̃⁰₁) < 0", LabelAt: ptrFloat64(0.55)},
		},
		ValueDisplay: ptrString("expSig"),
		ValueMaxX:    ptrFloat64(400),
		LimitPlot:    ptrBool(true),
	}
}

// Load returns the preset of grid overlaid with the values in path. An
// empty path returns the preset unchanged. The file may be JSON (.json) or
// YAML (.yaml, .yml).
func Load(path, grid string) (*PlotConfig, error) {
	cfg, err := Preset(grid)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return cfg, cfg.Validate()
	}

	cleanPath := filepath.Clean(path)
	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".json" && ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("config file must have .json, .yaml or .yml extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Decoding into the preset overlays only the keys present in the file.
	// Lists given in the file replace the preset's lists outright.
	if ext == ".json" {
		var keys map[string]json.RawMessage
		if err = json.Unmarshal(data, &keys); err == nil {
			dropListsIn(cfg, keys)
			err = json.Unmarshal(data, cfg)
		}
	} else {
		var keys map[string]yaml.Node
		if err = yaml.Unmarshal(data, &keys); err == nil {
			dropListsIn(cfg, keys)
			err = yaml.Unmarshal(data, cfg)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", cleanPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// dropListsIn clears the list fields named in keys so decoding does not
// merge file entries into preset entries element by element.
func dropListsIn[V any](c *PlotConfig, keys map[string]V) {
	if _, ok := keys["regions"]; ok {
		c.Regions = nil
	}
	if _, ok := keys["forbidden_lines"]; ok {
		c.ForbiddenLines = nil
	}
}

// Validate reports every problem with the configuration at once.
func (c *PlotConfig) Validate() error {
	var result *multierror.Error

	if err := c.Bounds().Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if len(c.Regions) == 0 {
		result = multierror.Append(result, fmt.Errorf("at least one region is required"))
	}
	seen := make(map[string]bool, len(c.Regions))
	for i, r := range c.Regions {
		if r.Name == "" {
			result = multierror.Append(result, fmt.Errorf("regions[%d]: name is required", i))
			continue
		}
		if seen[r.Name] {
			result = multierror.Append(result, fmt.Errorf("regions[%d]: duplicate region %q", i, r.Name))
		}
		seen[r.Name] = true
		if r.Color != "" && !hexColor.MatchString(r.Color) {
			result = multierror.Append(result, fmt.Errorf("region %s: color %q is not #rrggbb", r.Name, r.Color))
		}
		if r.Marker != "" && !contains(Markers, r.Marker) {
			result = multierror.Append(result, fmt.Errorf("region %s: unknown marker %q", r.Name, r.Marker))
		}
	}
	if base := c.GetBaseRegion(); len(c.Regions) > 0 && !seen[base] {
		result = multierror.Append(result, fmt.Errorf("base_region %q is not among the configured regions", base))
	}
	if _, err := signalgrid.ParseDisplay(c.GetValueDisplay()); err != nil {
		result = multierror.Append(result, err)
	}
	if c.Bins != nil && *c.Bins < 2 {
		result = multierror.Append(result, fmt.Errorf("bins must be at least 2, got %d", *c.Bins))
	}
	if c.PValue != nil && !(*c.PValue > 0 && *c.PValue < 1) {
		result = multierror.Append(result, fmt.Errorf("p_value must be between 0 and 1, got %f", *c.PValue))
	}
	if c.ImageSizeCm != nil && *c.ImageSizeCm <= 0 {
		result = multierror.Append(result, fmt.Errorf("image_size_cm must be positive, got %f", *c.ImageSizeCm))
	}
	if !contains(Formats, c.GetFormat()) {
		result = multierror.Append(result, fmt.Errorf("unsupported image format %q (want one of %s)", c.GetFormat(), strings.Join(Formats, ", ")))
	}
	for i, l := range c.ForbiddenLines {
		if at := l.GetLabelAt(); at < 0 || at > 1 {
			result = multierror.Append(result, fmt.Errorf("forbidden_lines[%d]: label_at must be in [0, 1], got %f", i, at))
		}
	}

	return result.ErrorOrNil()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Bounds returns the plotted frame.
func (c *PlotConfig) Bounds() contour.Bounds {
	return contour.Bounds{
		XMin: deref(c.XMin, 0),
		XMax: deref(c.XMax, 0),
		YMin: deref(c.YMin, 0),
		YMax: deref(c.YMax, 0),
	}
}

func deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// RegionSet builds the regions to collect results for, in configured
// order. Regions without a color or marker take the next one from the
// default cycle.
func (c *PlotConfig) RegionSet() []*limits.Region {
	out := make([]*limits.Region, 0, len(c.Regions))
	for i, rc := range c.Regions {
		style := limits.Style{Color: rc.Color, Marker: rc.Marker}
		if style.Color == "" {
			style.Color = defaultColors[i%len(defaultColors)]
		}
		if style.Marker == "" {
			style.Marker = defaultMarkers[i%len(defaultMarkers)]
		}
		r := limits.NewRegion(rc.Name, style)
		if rc.DisplayName != "" {
			r.DisplayName = rc.DisplayName
		}
		out = append(out, r)
	}
	return out
}

// RegionNames lists the configured region names in order.
func (c *PlotConfig) RegionNames() []string {
	out := make([]string, len(c.Regions))
	for i, r := range c.Regions {
		out[i] = r.Name
	}
	return out
}

// GetBaseRegion returns the region whose contours are drawn, defaulting to
// the first configured region.
func (c *PlotConfig) GetBaseRegion() string {
	if c.BaseRegion == nil || *c.BaseRegion == "" {
		if len(c.Regions) > 0 {
			return c.Regions[0].Name
		}
		return ""
	}
	return *c.BaseRegion
}

// GetXTitle returns the x axis title or the default.
func (c *PlotConfig) GetXTitle() string {
	if c.XTitle == nil {
		return "m(X) [GeV]"
	}
	return *c.XTitle
}

// GetYTitle returns the y axis title or the default.
func (c *PlotConfig) GetYTitle() string {
	if c.YTitle == nil {
		return "m(Y) [GeV]"
	}
	return *c.YTitle
}

// GetExperimentLabel returns the experiment label or the default.
func (c *PlotConfig) GetExperimentLabel() string {
	if c.ExperimentLabel == nil {
		return "ATLAS Internal"
	}
	return *c.ExperimentLabel
}

// GetLumiLabel returns the luminosity and energy label or the default.
func (c *PlotConfig) GetLumiLabel() string {
	if c.LumiLabel == nil {
		return "∫L dt = 5.82 fb⁻¹, √s = 13 TeV"
	}
	return *c.LumiLabel
}

// GetDecayProcess returns the decay process label or "".
func (c *PlotConfig) GetDecayProcess() string {
	if c.DecayProcess == nil {
		return ""
	}
	return *c.DecayProcess
}

// GetRegionLabel returns the signal region caption or "".
func (c *PlotConfig) GetRegionLabel() string {
	if c.RegionLabel == nil {
		return ""
	}
	return *c.RegionLabel
}

// TextBlock is the top-left caption, first line on top.
func (c *PlotConfig) TextBlock() []string {
	return []string{c.GetExperimentLabel(), c.GetLumiLabel(), c.GetDecayProcess(), c.GetRegionLabel()}
}

// GetValueDisplay returns the value_display name or the default (none).
func (c *PlotConfig) GetValueDisplay() string {
	if c.ValueDisplay == nil {
		return ""
	}
	return *c.ValueDisplay
}

// Display returns the parsed value display. Validate has already rejected
// unknown names, so those read as none here.
func (c *PlotConfig) Display() signalgrid.Display {
	d, err := signalgrid.ParseDisplay(c.GetValueDisplay())
	if err != nil {
		return signalgrid.DisplayNone
	}
	return d
}

// GetValueMaxX returns the largest x with a printed value, defaulting to
// the frame's right edge.
func (c *PlotConfig) GetValueMaxX() float64 {
	if c.ValueMaxX == nil {
		return deref(c.XMax, 0)
	}
	return *c.ValueMaxX
}

// GetBins returns the raster resolution or the default.
func (c *PlotConfig) GetBins() int {
	if c.Bins == nil {
		return contour.DefaultBins
	}
	return *c.Bins
}

// GetPValue returns the exclusion p-value or the default.
func (c *PlotConfig) GetPValue() float64 {
	if c.PValue == nil {
		return 0.05
	}
	return *c.PValue
}

// GetFillEmpty returns the fill_empty value or the default.
func (c *PlotConfig) GetFillEmpty() bool {
	if c.FillEmpty == nil {
		return true
	}
	return *c.FillEmpty
}

// GetLimitPlot returns the limit_plot value or the default.
func (c *PlotConfig) GetLimitPlot() bool {
	if c.LimitPlot == nil {
		return true
	}
	return *c.LimitPlot
}

// GetBestSRPerPoint returns the best_sr_per_point value or the default.
func (c *PlotConfig) GetBestSRPerPoint() bool {
	if c.BestSRPerPoint == nil {
		return false
	}
	return *c.BestSRPerPoint
}

// GetHeatmap returns the heatmap value or the default.
func (c *PlotConfig) GetHeatmap() bool {
	if c.Heatmap == nil {
		return false
	}
	return *c.Heatmap
}

// GetImageSizeCm returns the square image edge length or the default.
func (c *PlotConfig) GetImageSizeCm() float64 {
	if c.ImageSizeCm == nil {
		return 20
	}
	return *c.ImageSizeCm
}

// GetFormat returns the image extension or the default.
func (c *PlotConfig) GetFormat() string {
	if c.Format == nil || *c.Format == "" {
		return "eps"
	}
	return strings.TrimPrefix(strings.ToLower(*c.Format), ".")
}
