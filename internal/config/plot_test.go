package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"

	"github.com/banshee-data/limitplotter/internal/contour"
	"github.com/banshee-data/limitplotter/internal/limits"
	"github.com/banshee-data/limitplotter/internal/signalgrid"
)

func TestPresetBWN(t *testing.T) {
	cfg, err := Preset("bWN")
	if err != nil {
		t.Fatalf("Preset(bWN) error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("preset does not validate: %v", err)
	}

	if got := cfg.GetBaseRegion(); got != "SRwt" {
		t.Errorf("GetBaseRegion() = %q, want SRwt", got)
	}
	want := contour.Bounds{XMin: 100, XMax: 450, YMin: 0, YMax: 420}
	if diff := cmp.Diff(want, cfg.Bounds()); diff != "" {
		t.Errorf("Bounds() mismatch (-want +got):\n%s", diff)
	}
	if got := cfg.Display(); got != signalgrid.DisplayExpectedSig {
		t.Errorf("Display() = %v, want expSig", got)
	}
	if got := cfg.GetValueMaxX(); got != 400 {
		t.Errorf("GetValueMaxX() = %v, want 400", got)
	}
	if len(cfg.ForbiddenLines) != 3 {
		t.Fatalf("expected 3 forbidden lines, got %d", len(cfg.ForbiddenLines))
	}
	if l := cfg.ForbiddenLines[0]; math.Abs(l.Y0-15.2) > 1e-9 || math.Abs(l.Y1-315.2) > 1e-9 {
		t.Errorf("mW line = %+v, want y from 15.2 to 315.2", l)
	}

	// defaults for everything the preset leaves unset
	if cfg.GetBins() != 50 || cfg.GetPValue() != 0.05 || !cfg.GetFillEmpty() {
		t.Errorf("unexpected contour defaults: bins=%d p=%v fill=%v", cfg.GetBins(), cfg.GetPValue(), cfg.GetFillEmpty())
	}
	if cfg.GetFormat() != "eps" || cfg.GetImageSizeCm() != 20 {
		t.Errorf("unexpected output defaults: format=%q size=%v", cfg.GetFormat(), cfg.GetImageSizeCm())
	}
	if !cfg.GetLimitPlot() || cfg.GetBestSRPerPoint() || cfg.GetHeatmap() {
		t.Errorf("unexpected plot selection defaults")
	}
}

func TestPresetUnknownGrid(t *testing.T) {
	_, err := Preset("tN")
	if !errors.Is(err, ErrUnknownGrid) {
		t.Fatalf("expected ErrUnknownGrid, got %v", err)
	}
	if IsSupportedGrid("tN") || !IsSupportedGrid("bWN") {
		t.Error("IsSupportedGrid disagrees with the preset table")
	}
}

func TestLoadOverlaysPreset(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "json",
			file: "plot.json",
			content: `{
  "regions": [
    {"name": "SRwt", "display_name": "SRw+SRt"},
    {"name": "SRw", "color": "#123abc", "marker": "square"}
  ],
  "value_display": "obsCLs",
  "bins": 80,
  "best_sr_per_point": true
}`,
		},
		{
			name: "yaml",
			file: "plot.yaml",
			content: `regions:
  - name: SRwt
    display_name: SRw+SRt
  - name: SRw
    color: "#123abc"
    marker: square
value_display: obsCLs
bins: 80
best_sr_per_point: true
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}

			cfg, err := Load(path, "bWN")
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}

			if cfg.GetBins() != 80 {
				t.Errorf("GetBins() = %d, want 80", cfg.GetBins())
			}
			if cfg.Display() != signalgrid.DisplayObservedCLs {
				t.Errorf("Display() = %v, want obsCLs", cfg.Display())
			}
			if !cfg.GetBestSRPerPoint() {
				t.Error("best_sr_per_point not applied")
			}
			// keys absent from the file keep the preset values
			if cfg.GetBaseRegion() != "SRwt" || cfg.GetXTitle() != "m(t̃) [GeV]" {
				t.Errorf("preset values lost: base=%q xtitle=%q", cfg.GetBaseRegion(), cfg.GetXTitle())
			}

			regions := cfg.RegionSet()
			want := []limits.Style{
				{Color: "#ff0000", Marker: "circle"},
				{Color: "#123abc", Marker: "square"},
			}
			var got []limits.Style
			for _, r := range regions {
				got = append(got, r.Style)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("region styles mismatch (-want +got):\n%s", diff)
			}
			if regions[0].Label() != "SRw+SRt" || regions[1].Label() != "SRw" {
				t.Errorf("labels = %q, %q", regions[0].Label(), regions[1].Label())
			}
			if diff := cmp.Diff([]string{"SRwt", "SRw"}, cfg.RegionNames()); diff != "" {
				t.Errorf("RegionNames() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadReplacesPresetLists(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "plot.json",
			content: `{"base_region": "SRw", "regions": [{"name": "SRw"}], "forbidden_lines": [{"x0": 100, "y0": 0, "x1": 400, "y1": 300}]}`,
		},
		{
			name: "yaml",
			file: "plot.yml",
			content: `base_region: SRw
regions:
  - name: SRw
forbidden_lines:
  - {x0: 100, y0: 0, x1: 400, y1: 300}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write test config: %v", err)
			}

			cfg, err := Load(path, "bWN")
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}

			regions := cfg.RegionSet()
			if len(regions) != 1 {
				t.Fatalf("got %d regions, want 1", len(regions))
			}
			if got := regions[0].Label(); got != "SRw" {
				t.Errorf("Label() = %q, want SRw (no preset display name)", got)
			}
			if cfg.Regions[0].Color != "" || cfg.Regions[0].Marker != "" {
				t.Errorf("preset style leaked into region: %+v", cfg.Regions[0])
			}

			if len(cfg.ForbiddenLines) != 1 {
				t.Fatalf("got %d forbidden lines, want 1", len(cfg.ForbiddenLines))
			}
			l := cfg.ForbiddenLines[0]
			if l.Label != "" {
				t.Errorf("Label = %q, want none", l.Label)
			}
			if l.GetLabelAt() != 0.5 {
				t.Errorf("GetLabelAt() = %v, want default 0.5", l.GetLabelAt())
			}
			if l.Y1 != 300 {
				t.Errorf("Y1 = %v, want 300", l.Y1)
			}
		})
	}
}

func TestLoadKeepsPresetListsWhenAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.json")
	if err := os.WriteFile(path, []byte(`{"bins": 60}`), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	cfg, err := Load(path, "bWN")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.ForbiddenLines) != 3 {
		t.Errorf("got %d forbidden lines, want the preset's 3", len(cfg.ForbiddenLines))
	}
	if got := cfg.RegionSet()[0].Label(); got != "SRw+SRt" {
		t.Errorf("Label() = %q, want SRw+SRt", got)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("", "bWN")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg.GetBaseRegion() != "SRwt" {
		t.Errorf("expected the preset, got base region %q", cfg.GetBaseRegion())
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write test config: %v", err)
		}
		return path
	}

	tests := []struct {
		name string
		path string
		grid string
	}{
		{"unknown grid", "", "tN"},
		{"bad extension", write("plot.txt", "{}"), "bWN"},
		{"missing file", filepath.Join(dir, "absent.json"), "bWN"},
		{"bad json", write("bad.json", "{"), "bWN"},
		{"bad yaml", write("bad.yaml", "bins: [1"), "bWN"},
		{"invalid values", write("invalid.json", `{"bins": 1}`), "bWN"},
		{"too large", write("large.json", `{"x_title": "`+string(make([]byte, maxConfigSize))+`"}`), "bWN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.path, tt.grid); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := &PlotConfig{
		BaseRegion: ptrString("SRx"),
		Regions: []RegionConfig{
			{Name: "SRw", Color: "red"},
			{Name: "SRw", Marker: "star"},
			{},
		},
		XMin:         ptrFloat64(10),
		XMax:         ptrFloat64(5),
		YMax:         ptrFloat64(1),
		ValueDisplay: ptrString("CLs"),
		PValue:       ptrFloat64(1.5),
		ImageSizeCm:  ptrFloat64(0),
		Format:       ptrString("gif"),
		ForbiddenLines: []ForbiddenLine{
			{LabelAt: ptrFloat64(2)},
		},
	}

	err := cfg.Validate()
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected *multierror.Error, got %T (%v)", err, err)
	}
	// bounds, color, duplicate, marker, empty name, base region, display,
	// p-value, size, format, label position
	if len(merr.Errors) != 11 {
		t.Errorf("expected 11 problems, got %d:\n%v", len(merr.Errors), err)
	}
	if !errors.Is(err, contour.ErrBadBounds) {
		t.Error("bounds error is not wrapped")
	}
}

func TestGettersWithoutValues(t *testing.T) {
	cfg := &PlotConfig{}

	if cfg.GetBaseRegion() != "" {
		t.Errorf("GetBaseRegion() = %q, want empty", cfg.GetBaseRegion())
	}
	if cfg.Display() != signalgrid.DisplayNone {
		t.Errorf("Display() = %v, want none", cfg.Display())
	}
	if cfg.GetExperimentLabel() != "ATLAS Internal" {
		t.Errorf("GetExperimentLabel() = %q", cfg.GetExperimentLabel())
	}
	if cfg.GetDecayProcess() != "" {
		t.Errorf("GetDecayProcess() = %q, want empty", cfg.GetDecayProcess())
	}
	if (ForbiddenLine{}).GetLabelAt() != 0.5 {
		t.Error("GetLabelAt() default is not the midpoint")
	}

	cfg.Regions = []RegionConfig{{Name: "SRw"}}
	if cfg.GetBaseRegion() != "SRw" {
		t.Errorf("GetBaseRegion() = %q, want first region", cfg.GetBaseRegion())
	}
	cfg.Format = ptrString(".PDF")
	if cfg.GetFormat() != "pdf" {
		t.Errorf("GetFormat() = %q, want pdf", cfg.GetFormat())
	}
}
