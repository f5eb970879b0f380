package model

import (
	"math"
	"testing"
)

func TestKelvinToCelsius(t *testing.T) {
	tests := []struct {
		name string
		tK   float64
		want float64
	}{
		{"absolute zero", 0, -273.15},
		{"water freezing", 273.15, 0},
		{"steelmaking", 1873, 1599.85},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KelvinToCelsius(tt.tK); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("KelvinToCelsius(%g) = %g, want %g", tt.tK, got, tt.want)
			}
		})
	}
}

func TestNewGrid(t *testing.T) {
	g, err := NewGrid(1273, 1873, 50)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if g.Len() != 13 {
		t.Errorf("Len() = %d, want 13", g.Len())
	}
	if g.Min() != 1273 {
		t.Errorf("Min() = %g, want 1273", g.Min())
	}
	// The upper bound must survive float accumulation.
	if math.Abs(g.Max()-1873) > 1e-6 {
		t.Errorf("Max() = %g, want 1873", g.Max())
	}

	temps := g.Temps()
	for i := 1; i < len(temps); i++ {
		if temps[i] <= temps[i-1] {
			t.Errorf("temps not ascending at %d: %g <= %g", i, temps[i], temps[i-1])
		}
	}
}

func TestNewGridSinglePoint(t *testing.T) {
	g, err := NewGrid(1873, 1873, 1)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	if g.Len() != 1 || g.Min() != 1873 {
		t.Errorf("single-point grid: len=%d min=%g", g.Len(), g.Min())
	}
}

func TestNewGridErrors(t *testing.T) {
	tests := []struct {
		name             string
		min, max, step   float64
	}{
		{"zero min", 0, 1873, 50},
		{"negative min", -10, 1873, 50},
		{"max below min", 1873, 1273, 50},
		{"zero step", 1273, 1873, 0},
		{"negative step", 1273, 1873, -50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewGrid(tt.min, tt.max, tt.step); err == nil {
				t.Errorf("NewGrid(%g, %g, %g) expected error", tt.min, tt.max, tt.step)
			}
		})
	}
}

func TestNewLinearGrid(t *testing.T) {
	g, err := NewLinearGrid(1273, 1873, 7)
	if err != nil {
		t.Fatalf("NewLinearGrid: %v", err)
	}
	if g.Len() != 7 {
		t.Errorf("Len() = %d, want 7", g.Len())
	}
	if g.Min() != 1273 || g.Max() != 1873 {
		t.Errorf("bounds = [%g, %g], want [1273, 1873]", g.Min(), g.Max())
	}

	if _, err := NewLinearGrid(1273, 1873, 1); err == nil {
		t.Error("expected error for n=1")
	}
}

func TestTempsReturnsCopy(t *testing.T) {
	g, err := NewGrid(1273, 1373, 50)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	temps := g.Temps()
	temps[0] = -1
	if g.Min() != 1273 {
		t.Error("mutating Temps() result changed the grid")
	}
}
