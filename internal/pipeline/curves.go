package pipeline

import (
	"fmt"
	"strings"

	"github.com/dimascad/ellingham/internal/gibbs"
	"github.com/dimascad/ellingham/internal/model"
	"github.com/dimascad/ellingham/internal/tdb"
)

// CurveSource computes one oxide's Ellingham trace over a grid.
type CurveSource interface {
	Name() string
	Curve(o model.Oxide, grid *model.Grid) (model.Curve, error)
}

// LinearSource evaluates the builtin dGf = A + B·T models. Good enough for
// screening; the slopes are fitted over 1273-1873 K.
type LinearSource struct{}

// Name identifies the source in reports.
func (LinearSource) Name() string { return "linearized" }

// Curve evaluates the linearized model at every grid point.
func (LinearSource) Curve(o model.Oxide, grid *model.Grid) (model.Curve, error) {
	temps := grid.Temps()
	dg := make([]float64, len(temps))
	for i, t := range temps {
		v, err := gibbs.LinearFormationPerO2(o.A, o.B, t, o.O2Factor)
		if err != nil {
			return model.Curve{}, fmt.Errorf("%s at %.0f K: %w", o.Name, t, err)
		}
		dg[i] = v
	}
	return model.Curve{Oxide: o.Name, Reaction: o.Reaction, TempsK: temps, DGPerO2: dg}, nil
}

// TDBSource evaluates assessed database functions from a parsed TDB file.
// Formation energies come out SER-referenced:
//
//	dGf(per O2) = oxidePerO2·G(oxide) − metalPerO2·GHSER(metal) − 2·GHSER(O)
//
// in J/mol O2, converted to kJ for the curve.
type TDBSource struct {
	db   *tdb.Database
	path string
}

// NewTDBSource parses a TDB file into a curve source.
func NewTDBSource(path string) (*TDBSource, error) {
	db, err := tdb.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return &TDBSource{db: db, path: path}, nil
}

// Name identifies the source in reports.
func (s *TDBSource) Name() string { return s.path }

// Warnings returns parse warnings collected from the database file.
func (s *TDBSource) Warnings() []string { return s.db.Warnings }

// Curve evaluates the assessed formation energy at every grid point.
func (s *TDBSource) Curve(o model.Oxide, grid *model.Grid) (model.Curve, error) {
	gOxide, phaseName, err := s.oxideEnergy(o)
	if err != nil {
		return model.Curve{}, err
	}

	metal := metalElement(o)
	gMetal, okMetal := s.db.Function(ghserName(metal))
	gO, okO := s.db.Function(ghserName("O"))
	if !okO {
		return model.Curve{}, fmt.Errorf("%s: database has no GHSEROO reference", o.Name)
	}
	temps := grid.Temps()
	dg := make([]float64, len(temps))
	extrap := make([]bool, len(temps))
	sawExtrap := false

	for i, t := range temps {
		vOxide, exOxide, err := gOxide.Eval(t)
		if err != nil {
			return model.Curve{}, fmt.Errorf("%s (%s) at %.0f K: %w", o.Name, phaseName, t, err)
		}
		vO, exO, err := gO.Eval(t)
		if err != nil {
			return model.Curve{}, fmt.Errorf("GHSEROO at %.0f K: %w", t, err)
		}

		// A missing metal reference usually means the phase parameter is
		// written with +GHSER# terms and is already SER-relative; the
		// reference then contributes zero.
		var vMetal float64
		var exMetal bool
		if okMetal {
			vMetal, exMetal, err = gMetal.Eval(t)
			if err != nil {
				return model.Curve{}, fmt.Errorf("%s at %.0f K: %w", gMetal.Name, t, err)
			}
		}

		raw := gibbs.FormationPerO2(vOxide, vMetal, 2*vO, o.OxidePerO2, o.MetalPerO2)
		dg[i] = gibbs.JPerMolToKJ(raw)
		extrap[i] = exOxide || exO || exMetal
		if extrap[i] {
			sawExtrap = true
		}
	}

	c := model.Curve{Oxide: o.Name, Reaction: o.Reaction, TempsK: temps, DGPerO2: dg}
	if sawExtrap {
		c.Extrapolated = extrap
	}
	return c, nil
}

// oxideEnergy locates the phase parameter for the oxide by trying its phase
// name patterns against the database's phases, in priority order.
func (s *TDBSource) oxideEnergy(o model.Oxide) (*gibbs.Piecewise, string, error) {
	names := s.db.PhaseNames()
	for _, pattern := range o.PhasePatterns {
		upper := strings.ToUpper(pattern)
		for _, name := range names {
			if !strings.Contains(strings.ToUpper(name), upper) {
				continue
			}
			if fn, ok := s.db.PhaseEnergy(name); ok {
				return fn, name, nil
			}
		}
	}
	return nil, "", fmt.Errorf("%s: no phase matching %v in database", o.Name, o.PhasePatterns)
}

// ghserName builds the SGTE reference-function name for an element. Single
// letter symbols are doubled: GHSEROO, not GHSERO.
func ghserName(symbol string) string {
	sym := strings.ToUpper(symbol)
	if len(sym) == 1 {
		sym += sym
	}
	return "GHSER" + sym
}

// metalElement returns the oxide's non-oxygen element symbol.
func metalElement(o model.Oxide) string {
	for _, el := range o.Elements {
		if el != "O" {
			return el
		}
	}
	return ""
}
