// Package tcexport reads the tab-separated export files produced by the
// thermodynamic suite's console and reshapes them into the processed CSV
// layout the plotting notebooks expect.
package tcexport

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Table is a parsed export: temperature and Gibbs-energy columns.
type Table struct {
	// Column names as found in the export header, trimmed.
	TempColumn  string
	GibbsColumn string

	TempsK []float64 // Kelvin
	GibbsJ []float64 // J/mol
}

// ReadFile parses a tab-separated export from disk.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Read parses a tab-separated export.
//
// Lines starting with # are comments. The first non-comment line is the
// column header. Column names are matched heuristically the way the original
// workflow did: the first column containing "T" is temperature, the first
// containing "G" is the Gibbs energy.
func Read(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var header []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, col := range strings.Split(line, "\t") {
			header = append(header, strings.TrimSpace(col))
		}
		break
	}
	if header == nil {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read export: %w", err)
		}
		return nil, fmt.Errorf("export has no header line")
	}

	// Two independent substring searches, so one column may satisfy both.
	tIdx, gIdx := -1, -1
	for i, col := range header {
		upper := strings.ToUpper(col)
		if tIdx < 0 && strings.Contains(upper, "T") {
			tIdx = i
		}
		if gIdx < 0 && strings.Contains(upper, "G") {
			gIdx = i
		}
	}
	if tIdx < 0 || gIdx < 0 {
		return nil, fmt.Errorf("could not locate temperature and Gibbs columns in %v", header)
	}

	table := &Table{TempColumn: header[tIdx], GibbsColumn: header[gIdx]}
	lineNo := 1
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) <= tIdx || len(fields) <= gIdx {
			return nil, fmt.Errorf("line %d: expected at least %d columns, got %d", lineNo, max(tIdx, gIdx)+1, len(fields))
		}
		t, err := strconv.ParseFloat(strings.TrimSpace(fields[tIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad temperature %q", lineNo, fields[tIdx])
		}
		g, err := strconv.ParseFloat(strings.TrimSpace(fields[gIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: bad Gibbs energy %q", lineNo, fields[gIdx])
		}
		table.TempsK = append(table.TempsK, t)
		table.GibbsJ = append(table.GibbsJ, g)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	return table, nil
}
