package gibbs

import (
	"math"
	"testing"
)

func TestPerMolO2(t *testing.T) {
	tests := []struct {
		name     string
		g        float64
		o2Factor float64
		want     float64
		wantErr  bool
	}{
		{"cu2o", -29.525, 0.5, -59.05, false},
		{"al2o3", -1076.64, 1.5, -717.76, false},
		{"sio2 identity", -572.86, 1.0, -572.86, false},
		{"zero factor", -100, 0, 0, true},
		{"negative factor", -100, -0.5, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PerMolO2(tt.g, tt.o2Factor)
			if (err != nil) != tt.wantErr {
				t.Fatalf("PerMolO2 err = %v, wantErr = %v", err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("PerMolO2 = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestFormation(t *testing.T) {
	// Cu2O from 2Cu + ½O2, with made-up reference energies.
	got := Formation(-300, []Component{
		{Name: "CU", Coeff: 2, G: -50},
		{Name: "O2", Coeff: 0.5, G: -40},
	})
	want := -300.0 - 2*(-50) - 0.5*(-40)
	if got != want {
		t.Errorf("Formation = %g, want %g", got, want)
	}

	// No references: formation equals the compound energy.
	if got := Formation(-300, nil); got != -300 {
		t.Errorf("Formation with no refs = %g, want -300", got)
	}
}

func TestFormationPerO2(t *testing.T) {
	// 4Cu + O2 -> 2Cu2O
	got := FormationPerO2(-200000, -30000, -60000, 2, 4)
	want := 2*(-200000.0) - 4*(-30000.0) - (-60000.0)
	if got != want {
		t.Errorf("FormationPerO2 = %g, want %g", got, want)
	}
}

func TestLinearFormationPerO2(t *testing.T) {
	// The documented check value: Cu2O at 1873 K.
	got, err := LinearFormationPerO2(-170, 0.075, 1873, 0.5)
	if err != nil {
		t.Fatalf("LinearFormationPerO2: %v", err)
	}
	if math.Abs(got-(-59.05)) > 1e-9 {
		t.Errorf("Cu2O at 1873 K = %g, want -59.05", got)
	}

	if _, err := LinearFormationPerO2(-170, 0.075, 0, 0.5); err == nil {
		t.Error("expected error for T = 0")
	}
	if _, err := LinearFormationPerO2(-170, 0.075, 1873, 0); err == nil {
		t.Error("expected error for zero O2 factor")
	}
}

func TestJPerMolToKJ(t *testing.T) {
	if got := JPerMolToKJ(-59050); got != -59.05 {
		t.Errorf("JPerMolToKJ(-59050) = %g, want -59.05", got)
	}
}
