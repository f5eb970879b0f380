package gibbs

import "fmt"

// JPerMolToKJ converts joules per mole to kilojoules per mole.
func JPerMolToKJ(j float64) float64 { return j / 1000 }

// PerMolO2 normalizes a raw formation energy to a per-mole-of-O2 basis.
// o2Factor is the moles of O2 consumed by the reaction as written and must
// be a positive value (0.5 for Cu2O, 1.5 for Al2O3, ...).
func PerMolO2(g, o2Factor float64) (float64, error) {
	if o2Factor <= 0 {
		return 0, fmt.Errorf("gibbs: O2 factor must be > 0, got %g", o2Factor)
	}
	return g / o2Factor, nil
}

// Component is one reference species in a formation reaction, with its
// stoichiometric coefficient and Gibbs energy at the temperature of interest.
type Component struct {
	Name  string
	Coeff float64
	G     float64
}

// Formation computes the Gibbs energy of formation:
//
//	dGf = G(compound) − Σ coeff·G(reference)
//
// Units follow the inputs (the callers use J/mol for database energies and
// kJ/mol for linearized models).
func Formation(gCompound float64, refs []Component) float64 {
	dG := gCompound
	for _, r := range refs {
		dG -= r.Coeff * r.G
	}
	return dG
}

// FormationPerO2 computes the formation energy of the per-mole-O2 reaction
//
//	metalCoeff·M + O2 → oxideCoeff·MxOy
//
// from phase energies: oxideCoeff·G(oxide) − metalCoeff·G(metal) − G(O2).
func FormationPerO2(gOxide, gMetal, gO2, oxideCoeff, metalCoeff float64) float64 {
	return oxideCoeff*gOxide - metalCoeff*gMetal - gO2
}

// LinearFormationPerO2 evaluates a linearized model dGf = A + B·T (kJ/mol)
// and normalizes per mole of O2.
func LinearFormationPerO2(a, b, tK, o2Factor float64) (float64, error) {
	if tK <= 0 {
		return 0, fmt.Errorf("gibbs: temperature must be > 0 K, got %g", tK)
	}
	return PerMolO2(a+b*tK, o2Factor)
}
