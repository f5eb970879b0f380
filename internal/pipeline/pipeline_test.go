package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/dimascad/ellingham/internal/model"
)

func screenDefaults(t *testing.T, oxides []model.Oxide) *model.Report {
	t.Helper()

	grid, err := model.NewGrid(1273, 1873, 50)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	p := NewPipeline(model.DefaultConfig(), LinearSource{})
	report, err := p.Screen(context.Background(), ScreenOptions{
		Oxides:   oxides,
		Grid:     grid,
		RefTempK: 1873,
	})
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}
	return report
}

func TestScreenFullSelection(t *testing.T) {
	report := screenDefaults(t, model.DefaultOxides())

	if report.Source != "linearized" {
		t.Errorf("Source = %s", report.Source)
	}
	if report.GridMinK != 1273 || report.GridMaxK != 1873 {
		t.Errorf("grid bounds = [%g, %g]", report.GridMinK, report.GridMaxK)
	}
	if len(report.Curves) != 7 {
		t.Errorf("got %d curves, want 7", len(report.Curves))
	}
	if len(report.Rankings) != 7 {
		t.Fatalf("got %d rankings, want 7", len(report.Rankings))
	}

	pos := make(map[string]int)
	for _, r := range report.Rankings {
		pos[r.Oxide] = r.Rank
	}
	// The load-bearing ordering: every ceramic sits above Cu2O, and MgO is
	// the most protective of the screened set at melt temperature.
	for _, ceramic := range []string{"MgO", "Al2O3", "SiO2", "TiO2"} {
		if pos[ceramic] >= pos["Cu2O"] {
			t.Errorf("%s ranked below Cu2O", ceramic)
		}
	}
	if pos["MgO"] >= pos["Al2O3"] {
		t.Error("MgO should rank above Al2O3 at 1873 K")
	}

	if len(report.Reduction) != 4 {
		t.Fatalf("got %d reduction checks, want 4", len(report.Reduction))
	}
	for _, rxn := range report.Reduction {
		if rxn.Favorable {
			t.Errorf("Cu reduction reported favorable: %s", rxn.Equation)
		}
	}

	if report.Sulfide == nil {
		t.Fatal("sulfide exchange missing")
	}
	if !report.Sulfide.Favorable {
		t.Error("sulfide exchange should be favorable at 1873 K")
	}

	types := make(map[model.SignalType]int)
	for _, sig := range report.Signals {
		types[sig.Type]++
	}
	if types[model.SignalRanking] != 1 {
		t.Errorf("ranking signals = %d, want 1", types[model.SignalRanking])
	}
	if types[model.SignalReduction] != 4 {
		t.Errorf("reduction signals = %d, want 4", types[model.SignalReduction])
	}
	if types[model.SignalSulfide] != 1 {
		t.Errorf("sulfide signals = %d, want 1", types[model.SignalSulfide])
	}
	if types[model.SignalExtrapolation] != 0 {
		t.Error("linearized run should not warn about extrapolation")
	}

	if report.LLM != nil {
		t.Error("LLM summary present without a configured provider")
	}
}

func TestScreenCeramicOnlySelectionStillChecksCopper(t *testing.T) {
	oxides, _ := model.OxidesByName([]string{"Al2O3", "MgO"})
	report := screenDefaults(t, oxides)

	// Cu2O is pulled from the builtin set so the reduction question can
	// always be answered.
	if len(report.Reduction) != 2 {
		t.Fatalf("got %d reduction checks, want 2", len(report.Reduction))
	}
	if len(report.Curves) != 2 {
		t.Errorf("got %d curves, want 2 (Cu2O is reference only)", len(report.Curves))
	}
}

func TestScreenOffGridReferenceTemperature(t *testing.T) {
	grid, err := model.NewGrid(1273, 1873, 50)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	// 1600 K is not a sample of the 1273+50k grid; ranking must evaluate the
	// models there instead of failing the run.
	p := NewPipeline(model.DefaultConfig(), LinearSource{})
	report, err := p.Screen(context.Background(), ScreenOptions{
		Oxides:   model.DefaultOxides(),
		Grid:     grid,
		RefTempK: 1600,
	})
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}

	if len(report.Rankings) != 7 {
		t.Fatalf("got %d rankings, want 7", len(report.Rankings))
	}
	for _, r := range report.Rankings {
		if r.Oxide == "Cu2O" {
			// (-170 + 0.075*1600) / 0.5
			if want := -100.0; math.Abs(r.DGPerO2-want) > 1e-9 {
				t.Errorf("Cu2O at 1600 K = %g, want %g", r.DGPerO2, want)
			}
		}
	}
}

func TestScreenEmptySelection(t *testing.T) {
	grid, _ := model.NewGrid(1273, 1873, 50)
	p := NewPipeline(model.DefaultConfig(), LinearSource{})

	if _, err := p.Screen(context.Background(), ScreenOptions{Grid: grid, RefTempK: 1873}); err == nil {
		t.Error("expected error for empty selection")
	}
	if _, err := p.Screen(context.Background(), ScreenOptions{Oxides: model.DefaultOxides(), RefTempK: 1873}); err == nil {
		t.Error("expected error for missing grid")
	}
}

type failingSource struct{}

func (failingSource) Name() string { return "failing" }
func (failingSource) Curve(o model.Oxide, grid *model.Grid) (model.Curve, error) {
	if o.Name == "MgO" {
		return LinearSource{}.Curve(o, grid)
	}
	return model.Curve{}, context.DeadlineExceeded
}

func TestScreenRecordsDataGaps(t *testing.T) {
	oxides, _ := model.OxidesByName([]string{"MgO", "Al2O3"})
	grid, _ := model.NewGrid(1273, 1873, 50)

	p := NewPipeline(model.DefaultConfig(), failingSource{})
	report, err := p.Screen(context.Background(), ScreenOptions{
		Oxides:   oxides,
		Grid:     grid,
		RefTempK: 1873,
	})
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}

	if len(report.Curves) != 1 {
		t.Fatalf("got %d curves, want 1", len(report.Curves))
	}
	gaps := 0
	for _, sig := range report.Signals {
		if sig.Type == model.SignalDataGap {
			gaps++
			if sig.Severity != model.SeverityWarning {
				t.Errorf("data gap severity = %s", sig.Severity)
			}
		}
	}
	if gaps != 1 {
		t.Errorf("got %d data-gap signals, want 1", gaps)
	}
}
