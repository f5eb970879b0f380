package pipeline

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dimascad/ellingham/internal/bridge"
	"github.com/dimascad/ellingham/internal/cache"
	"github.com/dimascad/ellingham/internal/model"
	"github.com/dimascad/ellingham/internal/worker"
)

// Deterministic mock energies: distinct linear models per request kind so a
// wrong reference query shows up as a wrong value.
func mockGasGM(tK float64) float64   { return -60000 - 5*tK }
func mockMetalGM(tK float64) float64 { return -20000 - 2*tK }
func mockOxideGM(tK float64) float64 { return -100000 + 10*tK }

// sweepHandler serves the three equilibrium kinds a sweep point needs (the
// O-only reference, the nearly-pure-metal reference, the oxide composition)
// and fails anything involving Mg, so a sweep exercises both the value and
// the error path.
func sweepHandler(calls *atomic.Int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req bridge.EquilibriumRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Elements[0] == "MG" {
			http.Error(w, "convergence failure", http.StatusUnprocessableEntity)
			return
		}

		var gm float64
		phase := "CUPRITE"
		switch {
		case len(req.Elements) == 1 && req.Elements[0] == "O":
			gm, phase = mockGasGM(req.TempK), "GAS"
		case req.MoleFractions["O"] == 0.0001:
			gm, phase = mockMetalGM(req.TempK), "FCC_A1"
		default:
			gm = mockOxideGM(req.TempK)
		}
		_ = json.NewEncoder(w).Encode(bridge.EquilibriumResult{
			StablePhases: []string{phase},
			SystemGM:     gm,
			PhaseGM:      map[string]float64{phase: gm},
		})
	})
}

func newTestSweeper(serverURL string, c cache.Cache) *Sweeper {
	cfg := model.DefaultConfig()
	cfg.Bridge.BaseURL = serverURL
	client := bridge.NewClient(serverURL, 5*time.Second, 1<<20)
	limiter := worker.NewLimiter(1000, 100)
	return NewSweeper(client, c, limiter, cfg)
}

func TestSweepValuesAndErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(sweepHandler(&calls))
	defer server.Close()

	oxides, _ := model.OxidesByName([]string{"Cu2O", "MgO"})
	grid, err := model.NewGrid(1273, 1473, 100)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	table, err := newTestSweeper(server.URL, nil).Sweep(context.Background(), oxides, grid)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}

	if len(table.Oxides) != 2 || table.Oxides[0] != "Cu2O" {
		t.Fatalf("column order = %v", table.Oxides)
	}

	// Cu2O formation per mole O2: 2·GM(oxide) − 4·GM(metal) − GM(O2), in kJ.
	for i, tK := range table.TempsK {
		want := (2*mockOxideGM(tK) - 4*mockMetalGM(tK) - mockGasGM(tK)) / 1000
		if got := table.Values["Cu2O"][i]; math.Abs(got-want) > 1e-9 {
			t.Errorf("Cu2O[%d] = %g, want %g", i, got, want)
		}
		if table.Errors["Cu2O"][i] != "" {
			t.Errorf("Cu2O[%d] unexpectedly failed: %s", i, table.Errors["Cu2O"][i])
		}
	}
	if table.Phases["Cu2O"] != "CUPRITE" {
		t.Errorf("matched phase = %s", table.Phases["Cu2O"])
	}

	// MgO: every cell failed, NaN values with recorded errors.
	for i := range table.TempsK {
		if !math.IsNaN(table.Values["MgO"][i]) {
			t.Errorf("MgO[%d] = %g, want NaN", i, table.Values["MgO"][i])
		}
		if !strings.Contains(table.Errors["MgO"][i], "422") {
			t.Errorf("MgO[%d] error = %q", i, table.Errors["MgO"][i])
		}
	}
	if table.ErrorCount() != grid.Len() {
		t.Errorf("ErrorCount = %d, want %d", table.ErrorCount(), grid.Len())
	}
}

func TestSweepUsesCache(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(sweepHandler(&calls))
	defer server.Close()

	oxides, _ := model.OxidesByName([]string{"Cu2O"})
	grid, err := model.NewGrid(1273, 1473, 100)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	sweeper := newTestSweeper(server.URL, cache.NewMemoryCache(time.Minute, time.Minute))

	first, err := sweeper.Sweep(context.Background(), oxides, grid)
	if err != nil {
		t.Fatalf("first Sweep: %v", err)
	}
	// Three equilibria per point: O2 reference, metal reference, oxide.
	afterFirst := calls.Load()
	if afterFirst != int64(3*grid.Len()) {
		t.Fatalf("first sweep made %d calls, want %d", afterFirst, 3*grid.Len())
	}

	second, err := sweeper.Sweep(context.Background(), oxides, grid)
	if err != nil {
		t.Fatalf("second Sweep: %v", err)
	}
	if calls.Load() != afterFirst {
		t.Errorf("second sweep hit the bridge %d more times", calls.Load()-afterFirst)
	}
	for i := range first.TempsK {
		if first.Values["Cu2O"][i] != second.Values["Cu2O"][i] {
			t.Errorf("cached value differs at %d", i)
		}
	}
}

func TestSweepDoesNotCacheFailures(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(sweepHandler(&calls))
	defer server.Close()

	oxides, _ := model.OxidesByName([]string{"MgO"})
	grid, _ := model.NewGrid(1273, 1273, 1)

	sweeper := newTestSweeper(server.URL, cache.NewMemoryCache(time.Minute, time.Minute))
	_, _ = sweeper.Sweep(context.Background(), oxides, grid)
	_, _ = sweeper.Sweep(context.Background(), oxides, grid)

	// The O2 reference succeeds once and is cached; the failed Mg reference
	// is retried on the next run, not served from cache. 2 calls for the
	// first run, 1 for the second.
	if calls.Load() != 3 {
		t.Errorf("bridge calls = %d, want 3", calls.Load())
	}
}

func TestSweepTableWriteCSV(t *testing.T) {
	table := &SweepTable{
		Database: "TCOX14",
		TempsK:   []float64{1273, 1373},
		Oxides:   []string{"Cu2O", "MgO"},
		Values: map[string][]float64{
			"Cu2O": {-174.54, -172.54},
			"MgO":  {math.NaN(), math.NaN()},
		},
		Errors: map[string][]string{
			"Cu2O": {"", ""},
			"MgO":  {"convergence failure", "convergence failure"},
		},
	}

	var b strings.Builder
	if err := table.WriteCSV(&b); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	if lines[0] != "T_K,T_C,Cu2O_dGf_kJ_per_molO2,MgO_dGf_kJ_per_molO2" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1273,999.85,") {
		t.Errorf("row = %q", lines[1])
	}
	if !strings.HasSuffix(lines[1], ",ERR") {
		t.Errorf("failed cell not marked: %q", lines[1])
	}
}
