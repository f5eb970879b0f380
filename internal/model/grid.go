package model

import "fmt"

// KelvinToCelsius converts an absolute temperature to Celsius.
func KelvinToCelsius(tK float64) float64 {
	return tK - 273.15
}

// Grid is an immutable, monotonically ascending list of Kelvin samples.
type Grid struct {
	temps []float64
}

// NewGrid builds a grid from min to max (inclusive) with a fixed step.
func NewGrid(minK, maxK, stepK float64) (*Grid, error) {
	if minK <= 0 {
		return nil, fmt.Errorf("grid: min temperature must be > 0 K, got %g", minK)
	}
	if maxK < minK {
		return nil, fmt.Errorf("grid: max %g K below min %g K", maxK, minK)
	}
	if stepK <= 0 {
		return nil, fmt.Errorf("grid: step must be > 0 K, got %g", stepK)
	}

	var temps []float64
	// Small epsilon so max itself survives float accumulation.
	for t := minK; t <= maxK+1e-9; t += stepK {
		temps = append(temps, t)
	}
	return &Grid{temps: temps}, nil
}

// NewLinearGrid builds a grid of n evenly spaced samples over [minK, maxK].
func NewLinearGrid(minK, maxK float64, n int) (*Grid, error) {
	if minK <= 0 {
		return nil, fmt.Errorf("grid: min temperature must be > 0 K, got %g", minK)
	}
	if maxK < minK {
		return nil, fmt.Errorf("grid: max %g K below min %g K", maxK, minK)
	}
	if n < 2 {
		return nil, fmt.Errorf("grid: need at least 2 points, got %d", n)
	}

	temps := make([]float64, n)
	step := (maxK - minK) / float64(n-1)
	for i := range temps {
		temps[i] = minK + float64(i)*step
	}
	temps[n-1] = maxK
	return &Grid{temps: temps}, nil
}

// Temps returns a copy of the Kelvin samples.
func (g *Grid) Temps() []float64 {
	out := make([]float64, len(g.temps))
	copy(out, g.temps)
	return out
}

// Len returns the number of samples.
func (g *Grid) Len() int { return len(g.temps) }

// Min returns the first (lowest) sample.
func (g *Grid) Min() float64 { return g.temps[0] }

// Max returns the last (highest) sample.
func (g *Grid) Max() float64 { return g.temps[len(g.temps)-1] }
