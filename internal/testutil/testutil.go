// Package testutil provides shared test utilities and fixtures.
//
// The fixtures here build limit-result tables and harvest lists in the
// on-disk formats so loader, grid and pipeline tests share one spelling.
package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// ResultsHeader is the header line of a humanized limit-results table.
const ResultsHeader = "mX\tmY\tCLs\tCLsexp\tclsu1s\tclsd1s\tObsSig\tExpSig\tExpSigUp1s\tExpSigDn1s"

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// WriteFile writes content to dir/rel, creating parent directories, and
// returns the full path.
func WriteFile(t *testing.T, dir, rel, content string) string {
	t.Helper()
	path := filepath.Join(dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create fixture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", path, err)
	}
	return path
}

// ResultsTable renders rows (ten values each, in header order) as a
// results table with header.
func ResultsTable(rows ...[]float64) string {
	var b strings.Builder
	b.WriteString(ResultsHeader)
	b.WriteByte('\n')
	for _, row := range rows {
		cols := make([]string, len(row))
		for i, v := range row {
			cols[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		b.WriteString(strings.Join(cols, "\t"))
		b.WriteByte('\n')
	}
	return b.String()
}

// SigRow builds a ten-column results row for (mx, my) whose observed and
// expected significances are obs and exp, with ±1σ expected values
// exp±band. CLs columns are filled with placeholder values.
func SigRow(mx, my, obs, exp, band float64) []float64 {
	return []float64{mx, my, 0.05, 0.05, 0.05, 0.05, obs, exp, exp + band, exp - band}
}
