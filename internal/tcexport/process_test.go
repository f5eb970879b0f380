package tcexport

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestProcessTable(t *testing.T) {
	table := &Table{
		TempsK: []float64{1273, 1873},
		GibbsJ: []float64{-95100, -51300},
	}

	rows, err := ProcessTable(table, 0.5)
	if err != nil {
		t.Fatalf("ProcessTable: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}

	r := rows[1]
	if r.TK != 1873 {
		t.Errorf("TK = %g, want 1873", r.TK)
	}
	if math.Abs(r.TC-1599.85) > 1e-9 {
		t.Errorf("TC = %g, want 1599.85", r.TC)
	}
	if r.GMJ != -51300 {
		t.Errorf("GMJ = %g, want -51300", r.GMJ)
	}
	if r.GMKJ != -51.3 {
		t.Errorf("GMKJ = %g, want -51.3", r.GMKJ)
	}
	if math.Abs(r.DGfKJPerMolO2-(-102.6)) > 1e-9 {
		t.Errorf("DGfKJPerMolO2 = %g, want -102.6", r.DGfKJPerMolO2)
	}
}

func TestProcessTableBadFactor(t *testing.T) {
	table := &Table{TempsK: []float64{1273}, GibbsJ: []float64{-95100}}
	if _, err := ProcessTable(table, 0); err == nil {
		t.Error("expected error for zero O2 factor")
	}
}

func TestProcessedRoundTrip(t *testing.T) {
	table := &Table{
		TempsK: []float64{1273, 1573, 1873},
		GibbsJ: []float64{-95100, -73650, -51300},
	}
	rows, err := ProcessTable(table, 1.5)
	if err != nil {
		t.Fatalf("ProcessTable: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteProcessed(&buf, rows); err != nil {
		t.Fatalf("WriteProcessed: %v", err)
	}

	got, err := ReadProcessed(&buf)
	if err != nil {
		t.Fatalf("ReadProcessed: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("got %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Errorf("row %d = %+v, want %+v", i, got[i], rows[i])
		}
	}
}

func TestProcessDir(t *testing.T) {
	rawDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "processed")

	// One good export, one broken, one missing; plus one activity file.
	good := "T\tGM\n1273\t-95100\n1873\t-51300\n"
	if err := os.WriteFile(filepath.Join(rawDir, "cu2o_dGf_1273-1873K.txt"), []byte(good), 0644); err != nil {
		t.Fatal(err)
	}
	broken := "a\tb\n1\t2\n"
	if err := os.WriteFile(filepath.Join(rawDir, "mgo_dGf_1273-1873K.txt"), []byte(broken), 0644); err != nil {
		t.Fatal(err)
	}
	activity := "X(CU)\tACR(CU)\n0.01\t0.085\n0.03\t0.24\n"
	if err := os.WriteFile(filepath.Join(rawDir, "fe-cu_activity-vs-xcu_1873K.txt"), []byte(activity), 0644); err != nil {
		t.Fatal(err)
	}

	oxides := []OxideFile{
		{"cu2o_dGf_1273-1873K.txt", 0.5},
		{"mgo_dGf_1273-1873K.txt", 0.5},
		{"al2o3_dGf_1273-1873K.txt", 1.5},
	}
	results, err := ProcessDir(rawDir, outDir, oxides, []string{"fe-cu_activity-vs-xcu_1873K.txt"})
	if err != nil {
		t.Fatalf("ProcessDir: %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4", len(results))
	}

	byInput := make(map[string]ProcessResult)
	for _, r := range results {
		byInput[r.Input] = r
	}

	if r := byInput["cu2o_dGf_1273-1873K.txt"]; r.Err != nil || r.Skipped || r.Rows != 2 {
		t.Errorf("good file result = %+v", r)
	}
	if r := byInput["mgo_dGf_1273-1873K.txt"]; r.Err == nil {
		t.Errorf("broken file should carry an error, got %+v", r)
	}
	if r := byInput["al2o3_dGf_1273-1873K.txt"]; !r.Skipped {
		t.Errorf("missing file should be skipped, got %+v", r)
	}
	if r := byInput["fe-cu_activity-vs-xcu_1873K.txt"]; r.Err != nil || r.Rows != 2 {
		t.Errorf("activity file result = %+v", r)
	}

	// The processed file exists, reads back, and carries the right name.
	processed := filepath.Join(outDir, "cu2o_dGf_1273-1873K_processed.csv")
	f, err := os.Open(processed)
	if err != nil {
		t.Fatalf("open processed: %v", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := ReadProcessed(f)
	if err != nil {
		t.Fatalf("ReadProcessed: %v", err)
	}
	if len(rows) != 2 || rows[0].TK != 1273 {
		t.Errorf("processed rows = %+v", rows)
	}

	// The activity passthrough is CSV now, header preserved.
	data, err := os.ReadFile(filepath.Join(outDir, "fe-cu_activity-vs-xcu_1873K_processed.csv"))
	if err != nil {
		t.Fatalf("read activity csv: %v", err)
	}
	if !strings.HasPrefix(string(data), "X(CU),ACR(CU)") {
		t.Errorf("activity csv header = %q", strings.SplitN(string(data), "\n", 2)[0])
	}
}

func TestDefaultOxideFiles(t *testing.T) {
	files := DefaultOxideFiles()
	if len(files) != 7 {
		t.Fatalf("got %d oxide files, want 7", len(files))
	}
	for _, f := range files {
		if f.O2Factor <= 0 {
			t.Errorf("%s: O2 factor %g", f.Name, f.O2Factor)
		}
		if !strings.HasSuffix(f.Name, ".txt") {
			t.Errorf("%s: unexpected extension", f.Name)
		}
	}
}
