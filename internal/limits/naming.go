package limits

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Variation is the signal cross-section systematic variation a result
// was computed with. The values are spelled as they appear in file names.
type Variation string

const (
	Nominal Variation = "Nominal"
	Up      Variation = "Up"
	Down    Variation = "Down"
)

// Variations lists every variation in fill order.
var Variations = []Variation{Nominal, Up, Down}

// ParseVariation accepts Nominal, Up or Down (case-insensitive).
func ParseVariation(s string) (Variation, error) {
	for _, v := range Variations {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid systematic variation %q (want Nominal, Up or Down)", s)
}

// Selection names one fit output: analysis region, lepton channel, signal
// grid and cross-section variation.
type Selection struct {
	Region  string
	Channel string
	Grid    string
	Syst    Variation
}

// Tag is the region_channel_grid stem shared by directories and files.
func (s Selection) Tag() string {
	return fmt.Sprintf("%s_%s_%s", s.Region, s.Channel, s.Grid)
}

// HarvestListName is the file name the toolkit gives the harvest list of
// the merged hypothesis-test workspace.
func (s Selection) HarvestListName() string {
	return fmt.Sprintf("test_%s_Output_fixSigXSec%s_hypotest__1_harvest_list.json", s.Tag(), s.Syst)
}

// ResultsFileName is the humanized results table name.
func (s Selection) ResultsFileName() string {
	return fmt.Sprintf("%s_%s_limit_results.txt", s.Tag(), s.Syst)
}

// HarvestListPath joins the harvest list name onto dir.
func HarvestListPath(dir string, s Selection) string {
	return filepath.Join(dir, s.HarvestListName())
}

// ResultsFilePath is <root>/<tag>/<tag>_<syst>_limit_results.txt.
func ResultsFilePath(root string, s Selection) string {
	return filepath.Join(root, s.Tag(), s.ResultsFileName())
}

// ResultsGlob matches every results table for the selection's region,
// channel and grid with the given variation.
func ResultsGlob(root string, s Selection, v Variation) string {
	return filepath.Join(root, s.Tag(), fmt.Sprintf("*%s_limit_results.txt", v))
}
