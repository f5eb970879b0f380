package model

import "time"

// Report is the complete output of a screening run.
type Report struct {
	Subject     string    `json:"subject"`      // e.g. "Cu-ceramic oxide screening"
	GeneratedAt time.Time `json:"generated_at"` // when the run occurred
	Source      string    `json:"source"`       // "linearized" or the TDB file used

	GridMinK  float64 `json:"grid_min_k"`
	GridMaxK  float64 `json:"grid_max_k"`
	GridStepK float64 `json:"grid_step_k"`
	RefTempK  float64 `json:"ref_temp_k"` // temperature the rankings refer to

	Curves    []Curve    `json:"curves"`
	Rankings  []Ranking  `json:"rankings"`
	Reduction []Reaction `json:"reduction"` // Cu-reduces-ceramic feasibility
	Sulfide   *Reaction  `json:"sulfide,omitempty"`
	Signals   []Signal   `json:"signals"`

	LLM *LLMSummary `json:"llm,omitempty"` // optional, never affects the numbers
}

// Curve is one oxide's Ellingham trace over the grid.
type Curve struct {
	Oxide    string    `json:"oxide"`
	Reaction string    `json:"reaction"`
	TempsK   []float64 `json:"temps_k"`
	// DGPerO2 is dGf normalized per mole O2, kJ/mol O2, one value per grid point.
	DGPerO2 []float64 `json:"dg_per_o2_kj"`
	// Extrapolated flags grid points evaluated outside the expression's
	// assessed range. Nil when the whole curve is in range.
	Extrapolated []bool `json:"extrapolated,omitempty"`
}

// Ranking is one row of the stability ordering at the reference temperature.
// Rank 1 is the most stable oxide (most negative dGf per mol O2).
type Ranking struct {
	Rank    int     `json:"rank"`
	Oxide   string  `json:"oxide"`
	DGPerO2 float64 `json:"dg_per_o2_kj"`
}

// Reaction records a reaction favorability check at a fixed temperature.
type Reaction struct {
	Equation  string  `json:"equation"`
	TempK     float64 `json:"temp_k"`
	DGrxn     float64 `json:"dg_rxn_kj"` // kJ/mol, negative means favorable
	Favorable bool    `json:"favorable"`
}

// Signal is a typed diagnostic attached to the report.
type Signal struct {
	Type        SignalType     `json:"type"`
	Severity    SignalSeverity `json:"severity"`
	Description string         `json:"description"`
	Data        map[string]any `json:"data,omitempty"`
}

// SignalType classifies a diagnostic signal.
type SignalType string

const (
	SignalRanking       SignalType = "ranking"       // stability ordering summary
	SignalReduction     SignalType = "reduction"     // Cu cannot/can reduce a ceramic
	SignalSulfide       SignalType = "sulfide"       // sulfide exchange verdict
	SignalExtrapolation SignalType = "extrapolation" // values outside assessed range
	SignalDataGap       SignalType = "data_gap"      // oxide skipped, rows missing
)

// SignalSeverity indicates the weight of a signal.
type SignalSeverity string

const (
	SeverityInfo    SignalSeverity = "info"
	SeverityWarning SignalSeverity = "warning"
)

// LLMSummary holds the optional generated narrative.
type LLMSummary struct {
	Enabled       bool     `json:"enabled"`
	Provider      string   `json:"provider,omitempty"`
	Model         string   `json:"model,omitempty"`
	StrictNumbers bool     `json:"strict_numbers"`
	SummaryMD     string   `json:"summary_md,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}
