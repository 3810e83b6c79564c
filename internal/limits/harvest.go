package limits

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/limitplotter/internal/fsutil"
	"github.com/banshee-data/limitplotter/internal/stats"
)

// Harvest list keys written by the fit toolkit's hypothesis-test collector.
const (
	keyMC1     = "mC1"
	keyMN1     = "mN1"
	keyCLs     = "CLs"
	keyCLsExp  = "CLsexp"
	keyCLsUp1s = "clsu1s"
	keyCLsDn1s = "clsd1s"
)

// ErrMissingField is returned when a harvest entry lacks a required key.
var ErrMissingField = errors.New("missing field")

// HarvestEntry is the subset of one harvest-list object the plotter uses.
type HarvestEntry struct {
	MC1     float64
	MN1     float64
	CLs     float64
	CLsExp  float64
	CLsUp1s float64
	CLsDn1s float64
}

// ParseHarvestList decodes a harvest-list JSON array. Every entry must
// carry all of mC1, mN1, CLs, CLsexp, clsu1s and clsd1s as numbers.
func ParseHarvestList(data []byte) ([]HarvestEntry, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse harvest list: %w", err)
	}

	entries := make([]HarvestEntry, 0, len(raw))
	for i, obj := range raw {
		var e HarvestEntry
		fields := []struct {
			key string
			dst *float64
		}{
			{keyMC1, &e.MC1},
			{keyMN1, &e.MN1},
			{keyCLs, &e.CLs},
			{keyCLsExp, &e.CLsExp},
			{keyCLsUp1s, &e.CLsUp1s},
			{keyCLsDn1s, &e.CLsDn1s},
		}
		for _, f := range fields {
			msg, ok := obj[f.key]
			if !ok || string(msg) == "null" {
				return nil, fmt.Errorf("harvest entry %d: %w %q", i, ErrMissingField, f.key)
			}
			if err := json.Unmarshal(msg, f.dst); err != nil {
				return nil, fmt.Errorf("harvest entry %d: field %q: %w", i, f.key, err)
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// LoadHarvestList reads and parses the harvest list at path.
func LoadHarvestList(fs fsutil.FileSystem, path string) ([]HarvestEntry, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read harvest list: %w", err)
	}
	entries, err := ParseHarvestList(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Humanize turns harvest entries into results rows, converting each CLs
// value to a significance rounded to two decimals.
func Humanize(entries []HarvestEntry) []Row {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Row{
			Point:      MassPoint{MX: e.MC1, MY: e.MN1},
			CLs:        e.CLs,
			CLsExp:     e.CLsExp,
			CLsUp1s:    e.CLsUp1s,
			CLsDn1s:    e.CLsDn1s,
			ObsSig:     round2(stats.Sigma(e.CLs)),
			ExpSig:     round2(stats.Sigma(e.CLsExp)),
			ExpSigUp1s: round2(stats.Sigma(e.CLsUp1s)),
			ExpSigDn1s: round2(stats.Sigma(e.CLsDn1s)),
		})
	}
	return rows
}

func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		// Small negatives round to -0; tables print plain 0.
		return 0
	}
	return r
}
