package screen

import (
	"math"
	"strings"
	"testing"

	"github.com/dimascad/ellingham/internal/model"
)

func oxide(t *testing.T, name string) model.Oxide {
	t.Helper()
	selected, unknown := model.OxidesByName([]string{name})
	if len(unknown) > 0 {
		t.Fatalf("unknown oxide %s", name)
	}
	return selected[0]
}

func TestReductionCheckCuCannotReduceCeramics(t *testing.T) {
	cu := oxide(t, "Cu2O")

	for _, name := range []string{"Al2O3", "MgO", "SiO2", "TiO2"} {
		rxn := ReductionCheck(cu, oxide(t, name), 1873)
		if rxn.Favorable {
			t.Errorf("Cu reducing %s reported favorable, dG = %.1f", name, rxn.DGrxn)
		}
		if rxn.DGrxn <= 0 {
			t.Errorf("Cu reducing %s should have positive dG, got %.1f", name, rxn.DGrxn)
		}
	}
}

func TestReductionCheckMgOValue(t *testing.T) {
	cu := oxide(t, "Cu2O")
	mgo := oxide(t, "MgO")

	rxn := ReductionCheck(cu, mgo, 1873)

	// Cu2O line: (-170 + 0.075*1873)/0.5 = -59.05
	// MgO line:  (-601 + 0.11*1873)/0.5  = -789.94
	want := -59.05 - (-789.94)
	if math.Abs(rxn.DGrxn-want) > 0.01 {
		t.Errorf("dG_rxn = %.2f, want %.2f", rxn.DGrxn, want)
	}
}

func TestReductionChecksSignals(t *testing.T) {
	cu := oxide(t, "Cu2O")
	ceramics := []model.Oxide{oxide(t, "Al2O3"), oxide(t, "MgO")}

	reactions, signals := ReductionChecks(cu, ceramics, 1873)
	if len(reactions) != 2 || len(signals) != 2 {
		t.Fatalf("got %d reactions, %d signals, want 2 each", len(reactions), len(signals))
	}
	for _, sig := range signals {
		if sig.Type != model.SignalReduction {
			t.Errorf("signal type = %s, want reduction", sig.Type)
		}
		if sig.Severity != model.SeverityInfo {
			t.Errorf("unfavorable reduction should be info severity, got %s", sig.Severity)
		}
		if !strings.Contains(sig.Description, "cannot") {
			t.Errorf("description should say cannot: %q", sig.Description)
		}
	}
}

func TestSulfideExchange(t *testing.T) {
	feS, cu2S := model.DefaultSulfides()

	rxn, sig := SulfideExchange(feS, cu2S, 1873)

	// Cu2S: -180 + 0.032*1873 = -120.064; FeS: -150 + 0.027*1873 = -99.429
	want := -120.064 - (-99.429)
	if math.Abs(rxn.DGrxn-want) > 0.001 {
		t.Errorf("dG_rxn = %.3f, want %.3f", rxn.DGrxn, want)
	}
	if !rxn.Favorable {
		t.Error("exchange should be favorable at 1873 K")
	}
	if sig.Type != model.SignalSulfide {
		t.Errorf("signal type = %s, want sulfide", sig.Type)
	}
	if !strings.Contains(sig.Description, "favorable") {
		t.Errorf("description should carry verdict: %q", sig.Description)
	}
}

func TestExtrapolationSignal(t *testing.T) {
	curves := []model.Curve{
		{Oxide: "Cu2O", Extrapolated: []bool{false, false}},
		{Oxide: "MgO", Extrapolated: []bool{false, true}},
	}

	sig := ExtrapolationSignal(curves)
	if sig == nil {
		t.Fatal("expected a signal")
	}
	if sig.Severity != model.SeverityWarning {
		t.Errorf("severity = %s, want warning", sig.Severity)
	}
	oxides := sig.Data["oxides"].([]string)
	if len(oxides) != 1 || oxides[0] != "MgO" {
		t.Errorf("affected oxides = %v, want [MgO]", oxides)
	}

	if got := ExtrapolationSignal(curves[:1]); got != nil {
		t.Errorf("expected nil signal for in-range curves, got %+v", got)
	}
}
