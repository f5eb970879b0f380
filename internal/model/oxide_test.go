package model

import (
	"math"
	"testing"
)

func TestGibbsPerO2Cu2O(t *testing.T) {
	oxides, _ := OxidesByName([]string{"Cu2O"})
	cu2o := oxides[0]

	// -170 + 0.075*1873 = -29.525 kJ/mol, per O2: /0.5 = -59.05.
	if got := cu2o.Gibbs(1873); math.Abs(got-(-29.525)) > 1e-9 {
		t.Errorf("Gibbs(1873) = %g, want -29.525", got)
	}
	if got := cu2o.GibbsPerO2(1873); math.Abs(got-(-59.05)) > 1e-9 {
		t.Errorf("GibbsPerO2(1873) = %g, want -59.05", got)
	}
}

func TestDefaultOxidesWellFormed(t *testing.T) {
	oxides := DefaultOxides()
	if len(oxides) != 7 {
		t.Fatalf("got %d oxides, want 7", len(oxides))
	}

	seen := make(map[string]bool)
	for _, o := range oxides {
		if seen[o.Name] {
			t.Errorf("duplicate oxide %s", o.Name)
		}
		seen[o.Name] = true

		if o.O2Factor <= 0 {
			t.Errorf("%s: O2Factor = %g, must be positive", o.Name, o.O2Factor)
		}
		if o.MetalPerO2 <= 0 || o.OxidePerO2 <= 0 {
			t.Errorf("%s: per-O2 stoichiometry not positive", o.Name)
		}
		if o.XO <= 0 || o.XO >= 1 {
			t.Errorf("%s: XO = %g outside (0,1)", o.Name, o.XO)
		}
		if len(o.PhasePatterns) == 0 {
			t.Errorf("%s: no phase patterns", o.Name)
		}
		if o.A >= 0 {
			t.Errorf("%s: A = %g, formation enthalpy should be negative", o.Name, o.A)
		}
		if o.B <= 0 {
			t.Errorf("%s: B = %g, dGf should rise with temperature", o.Name, o.B)
		}
	}
}

func TestOxidesByName(t *testing.T) {
	selected, unknown := OxidesByName([]string{"MgO", "Cu2O", "Unobtainium"})
	if len(unknown) != 1 || unknown[0] != "Unobtainium" {
		t.Errorf("unknown = %v, want [Unobtainium]", unknown)
	}
	if len(selected) != 2 {
		t.Fatalf("selected %d oxides, want 2", len(selected))
	}
	// Selection order is preserved, not the builtin order.
	if selected[0].Name != "MgO" || selected[1].Name != "Cu2O" {
		t.Errorf("selection order = [%s, %s], want [MgO, Cu2O]", selected[0].Name, selected[1].Name)
	}
}

func TestDefaultSulfides(t *testing.T) {
	feS, cu2S := DefaultSulfides()
	if feS.Name != "FeS" || cu2S.Name != "Cu2S" {
		t.Fatalf("got %s, %s", feS.Name, cu2S.Name)
	}

	// The exchange 2Cu + FeS -> Cu2S + Fe must be favorable across the
	// relevant melt range or the capture route makes no sense.
	for _, tK := range []float64{1573, 1723, 1873} {
		if dg := cu2S.Gibbs(tK) - feS.Gibbs(tK); dg >= 0 {
			t.Errorf("exchange dG at %g K = %g, want negative", tK, dg)
		}
	}
}
