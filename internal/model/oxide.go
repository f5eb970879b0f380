package model

// Oxide describes one candidate oxide and its formation reaction,
// normalized per mole of O2 for Ellingham comparison.
type Oxide struct {
	Name     string   `json:"name" yaml:"name"`         // e.g. "Cu2O"
	Formula  string   `json:"formula" yaml:"formula"`   // display formula, e.g. "Cu₂O"
	Elements []string `json:"elements" yaml:"elements"` // database element selection, e.g. ["CU", "O"]

	// Reaction written per mole of metal-oxidation step, e.g. "2Cu + ½O₂ → Cu₂O".
	Reaction string `json:"reaction" yaml:"reaction"`

	// O2Factor is the moles of O2 consumed by the formation reaction as
	// written (0.5 for Cu2O, 1.5 for Al2O3, ...). Always positive.
	O2Factor float64 `json:"o2_factor" yaml:"o2_factor"`

	// Stoichiometry of the per-mole-O2 form of the reaction,
	// e.g. 4Cu + O2 -> 2Cu2O: MetalPerO2=4, OxidePerO2=2.
	MetalPerO2 float64 `json:"metal_per_o2" yaml:"metal_per_o2"`
	OxidePerO2 float64 `json:"oxide_per_o2" yaml:"oxide_per_o2"`

	// XO is the oxygen mole fraction of the stoichiometric compound,
	// used as the composition condition for equilibrium calculations.
	XO float64 `json:"x_o" yaml:"x_o"`

	// PhasePatterns are database phase names to search for, in priority
	// order (different databases name the same compound differently).
	PhasePatterns []string `json:"phase_patterns" yaml:"phase_patterns"`

	// Linearized free-energy model dGf ≈ A + B·T in kJ/mol.
	// A tracks the standard enthalpy of formation at 298 K, B the negative
	// of the formation entropy. Valid only over limited temperature ranges.
	A float64 `json:"a" yaml:"a"`
	B float64 `json:"b" yaml:"b"`
}

// Gibbs evaluates the linearized formation energy at T Kelvin, in kJ/mol.
func (o Oxide) Gibbs(tK float64) float64 {
	return o.A + o.B*tK
}

// GibbsPerO2 evaluates the linearized formation energy normalized per mole
// of O2, in kJ/mol O2. This is the quantity plotted on an Ellingham diagram.
func (o Oxide) GibbsPerO2(tK float64) float64 {
	return o.Gibbs(tK) / o.O2Factor
}

// DefaultOxides returns the builtin screening set.
//
// A coefficients follow published enthalpies of formation (Cu2O from Holmes
// et al. 1989, the rest from NIST-JANAF); B coefficients are estimated from
// standard entropies. These are linearized approximations for screening, not
// assessed database values.
func DefaultOxides() []Oxide {
	return []Oxide{
		{
			Name: "Cu2O", Formula: "Cu₂O", Elements: []string{"CU", "O"},
			Reaction: "2Cu + ½O₂ → Cu₂O",
			O2Factor: 0.5, MetalPerO2: 4, OxidePerO2: 2, XO: 1.0 / 3.0,
			PhasePatterns: []string{"CUPRITE", "CU2O"},
			A:             -170, B: 0.075,
		},
		{
			Name: "CuO", Formula: "CuO", Elements: []string{"CU", "O"},
			Reaction: "Cu + ½O₂ → CuO",
			O2Factor: 0.5, MetalPerO2: 2, OxidePerO2: 2, XO: 0.5,
			PhasePatterns: []string{"CUO", "TENORITE"},
			A:             -155, B: 0.085,
		},
		{
			Name: "FeO", Formula: "FeO", Elements: []string{"FE", "O"},
			Reaction: "Fe + ½O₂ → FeO",
			O2Factor: 0.5, MetalPerO2: 2, OxidePerO2: 2, XO: 0.5,
			PhasePatterns: []string{"HALITE", "FEO", "WUSTITE"},
			A:             -264, B: 0.065,
		},
		{
			Name: "Al2O3", Formula: "Al₂O₃", Elements: []string{"AL", "O"},
			Reaction: "4/3Al + O₂ → 2/3Al₂O₃",
			O2Factor: 1.5, MetalPerO2: 4.0 / 3.0, OxidePerO2: 2.0 / 3.0, XO: 0.6,
			PhasePatterns: []string{"CORUNDUM", "AL2O3"},
			A:             -1676, B: 0.32,
		},
		{
			Name: "MgO", Formula: "MgO", Elements: []string{"MG", "O"},
			Reaction: "2Mg + O₂ → 2MgO",
			O2Factor: 0.5, MetalPerO2: 2, OxidePerO2: 2, XO: 0.5,
			PhasePatterns: []string{"HALITE", "MGO", "PERICLASE"},
			A:             -601, B: 0.11,
		},
		{
			Name: "SiO2", Formula: "SiO₂", Elements: []string{"SI", "O"},
			Reaction: "Si + O₂ → SiO₂",
			O2Factor: 1.0, MetalPerO2: 1, OxidePerO2: 1, XO: 2.0 / 3.0,
			PhasePatterns: []string{"QUARTZ", "SIO2", "TRIDYMITE", "CRISTOBALITE"},
			A:             -910, B: 0.18,
		},
		{
			Name: "TiO2", Formula: "TiO₂", Elements: []string{"TI", "O"},
			Reaction: "Ti + O₂ → TiO₂",
			O2Factor: 1.0, MetalPerO2: 1, OxidePerO2: 1, XO: 2.0 / 3.0,
			PhasePatterns: []string{"RUTILE", "TIO2", "ANATASE"},
			A:             -944, B: 0.18,
		},
	}
}

// OxidesByName resolves a selection of oxide names against the builtin set.
// Unknown names are returned in the second value; selection order is kept.
func OxidesByName(names []string) ([]Oxide, []string) {
	byName := make(map[string]Oxide)
	for _, o := range DefaultOxides() {
		byName[o.Name] = o
	}

	var selected []Oxide
	var unknown []string
	for _, name := range names {
		if o, ok := byName[name]; ok {
			selected = append(selected, o)
		} else {
			unknown = append(unknown, name)
		}
	}
	return selected, unknown
}

// Sulfide describes a sulfide phase for the exchange-reaction analysis,
// with the same linearized dGf ≈ A + B·T model (kJ/mol).
type Sulfide struct {
	Name     string  `json:"name"`
	Reaction string  `json:"reaction"`
	A        float64 `json:"a"`
	B        float64 `json:"b"`
}

// Gibbs evaluates the linearized formation energy at T Kelvin, in kJ/mol.
func (s Sulfide) Gibbs(tK float64) float64 {
	return s.A + s.B*tK
}

// DefaultSulfides returns the FeS/Cu2S pair used by the sulfide exchange
// analysis (2Cu + FeS → Cu₂S + Fe).
func DefaultSulfides() (feS, cu2S Sulfide) {
	feS = Sulfide{Name: "FeS", Reaction: "Fe + ½S₂ → FeS", A: -150, B: 0.027}
	cu2S = Sulfide{Name: "Cu2S", Reaction: "2Cu + ½S₂ → Cu₂S", A: -180, B: 0.032}
	return feS, cu2S
}
