package tcexport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dimascad/ellingham/internal/model"
)

// ProcessedColumns is the fixed column set of a processed oxide CSV.
var ProcessedColumns = []string{"T_K", "T_C", "GM_J", "GM_kJ", "dGf_kJ_per_molO2"}

// ProcessedRow is one output row of a processed oxide export.
type ProcessedRow struct {
	TK            float64
	TC            float64
	GMJ           float64
	GMKJ          float64
	DGfKJPerMolO2 float64
}

// ProcessTable converts a raw export into processed rows: Kelvin and Celsius
// temperature, Gibbs energy in J and kJ, and the per-mole-O2 normalized
// formation energy used for Ellingham plots.
func ProcessTable(t *Table, o2Factor float64) ([]ProcessedRow, error) {
	if o2Factor <= 0 {
		return nil, fmt.Errorf("O2 factor must be > 0, got %g", o2Factor)
	}

	rows := make([]ProcessedRow, len(t.TempsK))
	for i := range t.TempsK {
		tK := t.TempsK[i]
		gJ := t.GibbsJ[i]
		gKJ := gJ / 1000
		rows[i] = ProcessedRow{
			TK:            tK,
			TC:            model.KelvinToCelsius(tK),
			GMJ:           gJ,
			GMKJ:          gKJ,
			DGfKJPerMolO2: gKJ / o2Factor,
		}
	}
	return rows, nil
}

// WriteProcessed writes processed rows as CSV.
func WriteProcessed(w io.Writer, rows []ProcessedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProcessedColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			formatFloat(r.TK),
			formatFloat(r.TC),
			formatFloat(r.GMJ),
			formatFloat(r.GMKJ),
			formatFloat(r.DGfKJPerMolO2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadProcessed reads back a processed CSV (round-trip support for the
// notebooks that consume these files).
func ReadProcessed(r io.Reader) ([]ProcessedRow, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv")
	}
	if len(records[0]) != len(ProcessedColumns) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(ProcessedColumns), len(records[0]))
	}

	rows := make([]ProcessedRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		vals := make([]float64, len(rec))
		for j, s := range rec {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad value %q", i+1, s)
			}
			vals[j] = v
		}
		rows = append(rows, ProcessedRow{
			TK: vals[0], TC: vals[1], GMJ: vals[2], GMKJ: vals[3], DGfKJPerMolO2: vals[4],
		})
	}
	return rows, nil
}

// OxideFile pairs a raw export filename with the O2 factor of its formation
// reaction.
type OxideFile struct {
	Name     string  `yaml:"name"`
	O2Factor float64 `yaml:"o2_factor"`
}

// DefaultOxideFiles mirrors the raw exports the screening study worked from.
func DefaultOxideFiles() []OxideFile {
	return []OxideFile{
		{"cu2o_dGf_1273-1873K.txt", 0.5},
		{"cuo_dGf_1273-1873K.txt", 0.5},
		{"al2o3_dGf_1273-1873K.txt", 1.5},
		{"mgo_dGf_1273-1873K.txt", 0.5},
		{"sio2_dGf_1273-1873K.txt", 1.0},
		{"tio2_dGf_1273-1873K.txt", 1.0},
		{"feo_dGf_1273-1873K.txt", 0.5},
	}
}

// DefaultActivityFiles are the Cu-activity exports passed through unchanged.
func DefaultActivityFiles() []string {
	return []string{
		"fe-cu_activity-vs-xcu_1873K.txt",
		"fe-cu_activity-vs-T_xcu003.txt",
	}
}

// ProcessResult records what happened to one input file.
type ProcessResult struct {
	Input   string
	Output  string
	Rows    int
	Skipped bool
	Err     error
}

// ProcessDir processes raw exports from rawDir into outDir. A missing input
// is a skip, a broken one is recorded as an error; neither stops the run.
func ProcessDir(rawDir, outDir string, oxides []OxideFile, activity []string) ([]ProcessResult, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var results []ProcessResult
	for _, of := range oxides {
		res := ProcessResult{Input: of.Name, Output: processedName(of.Name)}
		inPath := filepath.Join(rawDir, of.Name)
		if _, err := os.Stat(inPath); os.IsNotExist(err) {
			res.Skipped = true
			results = append(results, res)
			continue
		}

		table, err := ReadFile(inPath)
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		rows, err := ProcessTable(table, of.O2Factor)
		if err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		if err := writeFile(filepath.Join(outDir, res.Output), rows); err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}
		res.Rows = len(rows)
		results = append(results, res)
	}

	for _, name := range activity {
		res := ProcessResult{Input: name, Output: processedName(name)}
		inPath := filepath.Join(rawDir, name)
		if _, err := os.Stat(inPath); os.IsNotExist(err) {
			res.Skipped = true
			results = append(results, res)
			continue
		}
		n, err := passthrough(inPath, filepath.Join(outDir, res.Output))
		if err != nil {
			res.Err = err
		}
		res.Rows = n
		results = append(results, res)
	}

	return results, nil
}

func processedName(raw string) string {
	base := strings.TrimSuffix(raw, filepath.Ext(raw))
	return base + "_processed.csv"
}

func writeFile(path string, rows []ProcessedRow) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return WriteProcessed(f, rows)
}

// passthrough converts a TSV export to CSV without transforming values
// (activity exports keep their original column set).
func passthrough(inPath, outPath string) (rows int, err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", inPath, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", outPath, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	cw := csv.NewWriter(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if err := cw.Write(fields); err != nil {
			return rows, fmt.Errorf("write row: %w", err)
		}
		rows++
	}
	if err := scanner.Err(); err != nil {
		return rows, fmt.Errorf("read %s: %w", inPath, err)
	}
	cw.Flush()
	if rows > 0 {
		rows-- // header line
	}
	return rows, cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
