package limitplot

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gonum.org/v1/plot/plotter"

	"github.com/banshee-data/limitplotter/internal/config"
	"github.com/banshee-data/limitplotter/internal/fsutil"
	"github.com/banshee-data/limitplotter/internal/limits"
	"github.com/banshee-data/limitplotter/internal/monitoring"
	"github.com/banshee-data/limitplotter/internal/render"
	"github.com/banshee-data/limitplotter/internal/signalgrid"
)

func writeBestRegionPlot(fs fsutil.FileSystem, path string, cfg *config.PlotConfig, grid *signalgrid.Grid, regions []*limits.Region) error {
	byName := make(map[string]int, len(regions))
	bp := &render.BestRegionPlot{
		Bounds: cfg.Bounds(),
		XTitle: cfg.GetXTitle(),
		YTitle: cfg.GetYTitle(),
		Text:   cfg.TextBlock(),
	}
	for i, r := range regions {
		byName[r.Name] = i
		bp.Regions = append(bp.Regions, render.RegionPoints{Label: r.Label(), Color: r.Style.Color, Marker: r.Style.Marker})
	}
	unassigned := 0
	for _, s := range grid.Signals() {
		i, ok := byName[s.BestRegionName()]
		if !ok {
			unassigned++
			continue
		}
		bp.Regions[i].Points = append(bp.Regions[i].Points, plotter.XY{X: s.Point.MX, Y: s.Point.MY})
	}
	if unassigned > 0 {
		monitoring.Logf("make_best_sr_plot    %d points have no result in any region", unassigned)
	}

	p, err := bp.Plot()
	if err != nil {
		return err
	}
	data, err := render.Encode(p, cfg.GetFormat(), cfg.GetImageSizeCm())
	if err != nil {
		return err
	}
	monitoring.Logf(" >>> Saving best SR plot to %s", path)
	if err := fs.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// writeGridView writes the per-point values of region with the contours
// overlaid. Without a value display the expected significance is shown.
func writeGridView(fs fsutil.FileSystem, path string, opts Options, cfg *config.PlotConfig, grid *signalgrid.Grid, region string, display signalgrid.Display, contours map[signalgrid.Quantity]plotter.XYs) error {
	if display == signalgrid.DisplayNone {
		display = signalgrid.DisplayExpectedSig
	}
	gv := &render.GridView{
		Title:     fmt.Sprintf("%s %s %s", region, opts.Grid, opts.Channel),
		Subtitle:  display.Title(),
		XTitle:    cfg.GetXTitle(),
		YTitle:    cfg.GetYTitle(),
		ValueName: display.String(),
		Bounds:    cfg.Bounds(),
		Values:    grid.Values(region, display),
	}
	for _, q := range signalgrid.Quantities {
		if xys, ok := contours[q]; ok {
			gv.Contours = append(gv.Contours, render.NamedContour{Name: q.String(), Points: xys})
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(&buf); err != nil {
		return err
	}
	monitoring.Logf(" >>> Saving grid view to %s", path)
	if err := fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeManifest(fs fsutil.FileSystem, path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := fs.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
