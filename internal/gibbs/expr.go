package gibbs

import (
	"fmt"
	"math"
)

// Expr is one piece of a CALPHAD free-energy function:
//
//	G(T) = A + B·T + C·T·ln(T) + D·T² + E/T + F·T³ + Σ coeff·ref(T)
//
// Refs carry references to other named functions (GHSERCU and friends),
// resolved at parse time.
type Expr struct {
	A, B, C, D, E, F float64
	Extra            []PowerTerm
	Refs             []Ref
}

// PowerTerm is coeff·T^power (·ln T when LogT is set), for the occasional
// assessed term outside the standard form, such as the T⁻⁹ tail of SGTE
// unary data above the melting point.
type PowerTerm struct {
	Coeff, Power float64
	LogT         bool
}

// Ref is a scaled reference to another piecewise function.
type Ref struct {
	Coeff float64
	Fn    *Piecewise
}

// Eval evaluates the expression at T Kelvin. The bool reports whether any
// referenced function had to extrapolate outside its assessed range.
func (e Expr) Eval(tK float64) (float64, bool) {
	v := e.A + e.B*tK + e.C*tK*math.Log(tK) + e.D*tK*tK + e.E/tK + e.F*tK*tK*tK
	for _, t := range e.Extra {
		term := t.Coeff * math.Pow(tK, t.Power)
		if t.LogT {
			term *= math.Log(tK)
		}
		v += term
	}

	extrapolated := false
	for _, r := range e.Refs {
		rv, ex, err := r.Fn.Eval(tK)
		if err != nil {
			// T > 0 is checked by the caller; a reference can only fail the
			// same way, so treat it as an extrapolation marker.
			extrapolated = true
			continue
		}
		if ex {
			extrapolated = true
		}
		v += r.Coeff * rv
	}
	return v, extrapolated
}

// Range is one validity interval of a piecewise function. Hi is exclusive
// except for the last range of a function, where it is inclusive.
type Range struct {
	Lo, Hi float64
	Expr   Expr
}

// Piecewise is a CALPHAD function assembled from one or more temperature
// ranges, e.g. GHSERCU with its below- and above-melting pieces.
type Piecewise struct {
	Name   string
	Ranges []Range
}

// NewPiecewise builds a function and validates that ranges are ordered and
// contiguous enough to evaluate (each Lo must not precede the previous Hi).
func NewPiecewise(name string, ranges []Range) (*Piecewise, error) {
	if len(ranges) == 0 {
		return nil, fmt.Errorf("gibbs: function %s has no ranges", name)
	}
	for i, r := range ranges {
		if r.Hi <= r.Lo {
			return nil, fmt.Errorf("gibbs: function %s range %d: hi %g <= lo %g", name, i, r.Hi, r.Lo)
		}
		if i > 0 && r.Lo < ranges[i-1].Hi {
			return nil, fmt.Errorf("gibbs: function %s range %d overlaps previous", name, i)
		}
	}
	return &Piecewise{Name: name, Ranges: ranges}, nil
}

// Eval evaluates the function at T Kelvin.
//
// Inside an assessed range the value is exact. Below the first range or
// above the last, the nearest piece is used and the extrapolation flag is
// set; callers must surface the flag rather than drop it, so a phase is
// never extended past a transition silently.
func (p *Piecewise) Eval(tK float64) (value float64, extrapolated bool, err error) {
	if tK <= 0 {
		return 0, false, fmt.Errorf("gibbs: temperature must be > 0 K, got %g", tK)
	}

	n := len(p.Ranges)
	for i, r := range p.Ranges {
		last := i == n-1
		if tK >= r.Lo && (tK < r.Hi || (last && tK == r.Hi)) {
			v, ex := r.Expr.Eval(tK)
			return v, ex, nil
		}
	}

	// Out of assessed range: nearest piece, flagged.
	if tK < p.Ranges[0].Lo {
		v, _ := p.Ranges[0].Expr.Eval(tK)
		return v, true, nil
	}
	v, _ := p.Ranges[n-1].Expr.Eval(tK)
	return v, true, nil
}

// InRange reports whether T falls inside the assessed range of the function.
func (p *Piecewise) InRange(tK float64) bool {
	if len(p.Ranges) == 0 {
		return false
	}
	return tK >= p.Ranges[0].Lo && tK <= p.Ranges[len(p.Ranges)-1].Hi
}
