// Package tdb reads thermodynamic database (TDB) files: the text format in
// which CALPHAD assessments publish their fitted free-energy parameters.
//
// Only the statements needed to evaluate pure-phase Gibbs energies are
// interpreted (ELEMENT, FUNCTION, PHASE, CONSTITUENT, PARAMETER); everything
// else is skipped. Malformed statements are collected as warnings and parsing
// continues, so one bad line does not lose the rest of an assessment.
package tdb

import (
	"sort"
	"strings"

	"github.com/dimascad/ellingham/internal/gibbs"
)

// Element is one ELEMENT statement: symbol, reference phase and the SER
// reference values (mass g/mol, H298-H0 J/mol, S298 J/mol/K).
type Element struct {
	Symbol   string
	RefPhase string
	Mass     float64
	H298     float64
	S298     float64
}

// Phase is one PHASE statement plus its CONSTITUENT species.
type Phase struct {
	Name         string
	Model        string
	Sublattices  []float64 // site ratios
	Constituents [][]string
}

// Database is a parsed TDB file.
type Database struct {
	Elements  []Element
	Phases    map[string]*Phase
	functions map[string]*gibbs.Piecewise
	params    map[string][]*param // phase name -> parameters
	Warnings  []string
}

type param struct {
	constituent string
	order       int
	fn          *gibbs.Piecewise
}

// ElementNames returns the element symbols, sorted, excluding the electron
// and vacancy pseudo-elements.
func (db *Database) ElementNames() []string {
	var names []string
	for _, e := range db.Elements {
		if e.Symbol == "/-" || e.Symbol == "VA" {
			continue
		}
		names = append(names, e.Symbol)
	}
	sort.Strings(names)
	return names
}

// PhaseNames returns the defined phase names, sorted.
func (db *Database) PhaseNames() []string {
	var names []string
	for name := range db.Phases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Function returns a named FUNCTION (GHSERCU and friends).
func (db *Database) Function(name string) (*gibbs.Piecewise, bool) {
	fn, ok := db.functions[strings.ToUpper(name)]
	return fn, ok
}

// PhaseEnergy returns the zeroth-order G parameter of a phase. For the
// stoichiometric compounds used here there is exactly one; when a phase
// carries several, the first constituent's parameter is returned.
func (db *Database) PhaseEnergy(phase string) (*gibbs.Piecewise, bool) {
	ps := db.params[strings.ToUpper(phase)]
	for _, p := range ps {
		if p.order == 0 {
			return p.fn, true
		}
	}
	return nil, false
}
