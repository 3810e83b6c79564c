package limits

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/banshee-data/limitplotter/internal/fsutil"
)

// Column names of a limit-results table, in write order.
const (
	ColMX         = "mX"
	ColMY         = "mY"
	ColCLs        = "CLs"
	ColCLsExp     = "CLsexp"
	ColCLsUp1s    = "clsu1s"
	ColCLsDn1s    = "clsd1s"
	ColObsSig     = "ObsSig"
	ColExpSig     = "ExpSig"
	ColExpSigUp1s = "ExpSigUp1s"
	ColExpSigDn1s = "ExpSigDn1s"
)

// Columns lists every column of the results table in file order.
var Columns = []string{
	ColMX, ColMY, ColCLs, ColCLsExp, ColCLsUp1s, ColCLsDn1s,
	ColObsSig, ColExpSig, ColExpSigUp1s, ColExpSigDn1s,
}

// ErrMissingColumn is returned when a results header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Row is one mass point of a limit-results table.
type Row struct {
	Point MassPoint

	CLs     float64 // observed CLs
	CLsExp  float64 // expected CLs
	CLsUp1s float64 // expected CLs, +1σ
	CLsDn1s float64 // expected CLs, -1σ

	ObsSig     float64
	ExpSig     float64
	ExpSigUp1s float64
	ExpSigDn1s float64
}

func (r *Row) fields() []*float64 {
	return []*float64{
		&r.Point.MX, &r.Point.MY, &r.CLs, &r.CLsExp, &r.CLsUp1s, &r.CLsDn1s,
		&r.ObsSig, &r.ExpSig, &r.ExpSigUp1s, &r.ExpSigDn1s,
	}
}

// ReadResults parses a whitespace-delimited results table. The first
// non-blank line must be the header; its column order is honoured and
// extra columns are ignored. Blank lines are skipped.
func ReadResults(r io.Reader) ([]Row, error) {
	sc := bufio.NewScanner(r)
	var (
		index  []int
		rows   []Row
		lineNo int
	)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cols := strings.Fields(line)
		if index == nil {
			idx, err := headerIndex(cols)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			index = idx
			continue
		}

		var row Row
		for i, dst := range row.fields() {
			pos := index[i]
			if pos >= len(cols) {
				return nil, fmt.Errorf("line %d: expected at least %d columns, got %d", lineNo, pos+1, len(cols))
			}
			v, err := strconv.ParseFloat(cols[pos], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %w", lineNo, Columns[i], err)
			}
			*dst = v
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	if index == nil {
		return nil, fmt.Errorf("empty results table: %w %s", ErrMissingColumn, ColMX)
	}
	return rows, nil
}

func headerIndex(header []string) ([]int, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		if _, dup := pos[name]; !dup {
			pos[name] = i
		}
	}
	index := make([]int, len(Columns))
	for i, name := range Columns {
		p, ok := pos[name]
		if !ok {
			return nil, fmt.Errorf("%w %s", ErrMissingColumn, name)
		}
		index[i] = p
	}
	return index, nil
}

// WriteResults writes rows as a tab-separated table with the standard
// header. Values use the shortest representation that parses back to the
// same float64.
func WriteResults(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(strings.Join(Columns, "\t") + "\n"); err != nil {
		return err
	}
	for _, row := range rows {
		vals := row.fields()
		for i, v := range vals {
			if i > 0 {
				bw.WriteByte('\t')
			}
			bw.WriteString(strconv.FormatFloat(*v, 'g', -1, 64))
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LoadResultsFile reads a results table from path.
func LoadResultsFile(fs fsutil.FileSystem, path string) ([]Row, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read limit results: %w", err)
	}
	rows, err := ReadResults(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// SaveResultsFile writes rows to path, creating the parent directory.
func SaveResultsFile(fs fsutil.FileSystem, path string, rows []Row) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create results dir: %w", err)
	}
	var buf bytes.Buffer
	if err := WriteResults(&buf, rows); err != nil {
		return fmt.Errorf("failed to format limit results: %w", err)
	}
	if err := fs.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write limit results: %w", err)
	}
	return nil
}
