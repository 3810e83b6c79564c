package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/limitplotter/internal/config"
	"github.com/banshee-data/limitplotter/internal/limits"
	"github.com/banshee-data/limitplotter/internal/monitoring"
	"github.com/banshee-data/limitplotter/internal/testutil"
)

// setupResults lays out a LIMPLOTDIR with a nominal SRwt table whose
// low-mass corner is excluded.
func setupResults(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	var rows [][]float64
	for mx := 150.0; mx <= 400; mx += 50 {
		for my := 0.0; my <= mx-100; my += 50 {
			z := 0.5
			if mx <= 300 && my <= 100 {
				z = 3
			}
			rows = append(rows, testutil.SigRow(mx, my, z, z, 0.5))
		}
	}
	sel := limits.Selection{Region: "SRwt", Channel: "sfdf", Grid: "bWN", Syst: limits.Nominal}
	rel, err := filepath.Rel(dir, limits.ResultsFilePath(filepath.Join(dir, "limitplotter", "limit_results"), sel))
	require.NoError(t, err)
	testutil.WriteFile(t, dir, rel, testutil.ResultsTable(rows...))
	return dir
}

func TestRunDrawsPlot(t *testing.T) {
	defer monitoring.Mute()()

	lp := setupResults(t)
	out := filepath.Join(t.TempDir(), "plots")
	cfgPath := testutil.WriteFile(t, t.TempDir(), "plot.yaml", "value_display: obsSig\nimage_size_cm: 12\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{"-c", "sfdf", "-g", "bWN", "--limplotdir", lp, "--output-dir", out, "--config", cfgPath, "--html"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	want := []string{
		filepath.Join(out, "limplot_SRwt_bWN_sfdf_obsSig.eps"),
		filepath.Join(out, "limplot_SRwt_bWN_sfdf_obsSig.html"),
		filepath.Join(out, "limplot_SRwt_bWN_sfdf_obsSig.eps.manifest.json"),
	}
	assert.Equal(t, want, lines)
	for _, path := range want {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0), path)
	}
}

func TestRunUsesLimplotdirEnv(t *testing.T) {
	defer monitoring.Mute()()

	lp := setupResults(t)
	t.Setenv("LIMPLOTDIR", lp)
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--channel", "sfdf", "--grid", "bWN", "--output-dir", out}, &stdout, &stderr))
	assert.FileExists(t, filepath.Join(out, "limplot_SRwt_bWN_sfdf_expSig.eps"))
}

func TestRunValidation(t *testing.T) {
	defer monitoring.Mute()()
	t.Setenv("LIMPLOTDIR", "")

	lp := setupResults(t)
	badCfg := testutil.WriteFile(t, t.TempDir(), "plot.json", `{"bins": 0}`)

	tests := []struct {
		name  string
		args  []string
		usage bool
		is    error
	}{
		{name: "nothing given", args: nil, usage: true},
		{name: "no limplotdir", args: []string{"-c", "sfdf", "-g", "bWN"}, usage: true},
		{name: "unsupported grid", args: []string{"-c", "sfdf", "-g", "tN", "--limplotdir", lp}, usage: true, is: config.ErrUnknownGrid},
		{name: "unknown flag", args: []string{"--bogus"}, usage: true},
		{name: "invalid config", args: []string{"-c", "sfdf", "-g", "bWN", "--limplotdir", lp, "--config", badCfg}},
		{name: "no results for channel", args: []string{"-c", "ee", "-g", "bWN", "--limplotdir", lp, "--output-dir", t.TempDir()}, is: limits.ErrResultsNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, &stdout, &stderr)
			require.Error(t, err)

			var ue usageError
			assert.Equal(t, tt.usage, errors.As(err, &ue), "usage error: %v", err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestRunVersion(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"--version"}, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "draw-limits "))
}
