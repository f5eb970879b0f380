package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dimascad/ellingham/internal/model"
)

// Renderer writes reports in the supported output formats.
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer.
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the full report as indented JSON.
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// RenderCSV writes the curves as a wide table: one temperature column, one
// dGf-per-O2 column per oxide. This is the file the plotting notebooks read.
func (r *Renderer) RenderCSV(report *model.Report, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	cw := csv.NewWriter(f)
	header := []string{"T_K", "T_C"}
	for _, c := range report.Curves {
		header = append(header, c.Oxide+"_dGf_kJ_per_molO2")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if len(report.Curves) > 0 {
		for i, tK := range report.Curves[0].TempsK {
			record := []string{
				strconv.FormatFloat(tK, 'g', -1, 64),
				strconv.FormatFloat(model.KelvinToCelsius(tK), 'g', -1, 64),
			}
			for _, c := range report.Curves {
				record = append(record, strconv.FormatFloat(c.DGPerO2[i], 'g', -1, 64))
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderMarkdown writes the report as a human-readable Markdown document.
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", report.Subject)
	fmt.Fprintf(&b, "Generated: %s  \n", report.GeneratedAt.Format("2006-01-02 15:04 UTC"))
	fmt.Fprintf(&b, "Source: %s  \n", report.Source)
	fmt.Fprintf(&b, "Grid: %.0f-%.0f K  \n", report.GridMinK, report.GridMaxK)
	fmt.Fprintf(&b, "Reference temperature: %.0f K (%.0f °C)\n\n",
		report.RefTempK, model.KelvinToCelsius(report.RefTempK))

	b.WriteString("## Oxide Stability Ranking\n\n")
	fmt.Fprintf(&b, "Formation energies per mole O₂ at %.0f K, most stable first.\n\n", report.RefTempK)
	b.WriteString("| Rank | Oxide | ΔGf (kJ/mol O₂) |\n")
	b.WriteString("|------|-------|------------------|\n")
	for _, rk := range report.Rankings {
		fmt.Fprintf(&b, "| %d | %s | %.1f |\n", rk.Rank, rk.Oxide, rk.DGPerO2)
	}
	b.WriteString("\n")

	if len(report.Reduction) > 0 {
		b.WriteString("## Reduction by Copper\n\n")
		b.WriteString("| Reaction | ΔG_rxn (kJ/mol O₂) | Favorable |\n")
		b.WriteString("|----------|--------------------|-----------|\n")
		for _, rxn := range report.Reduction {
			fmt.Fprintf(&b, "| %s | %+.1f | %s |\n", rxn.Equation, rxn.DGrxn, yesNo(rxn.Favorable))
		}
		b.WriteString("\n")
	}

	if report.Sulfide != nil {
		b.WriteString("## Sulfide Exchange\n\n")
		fmt.Fprintf(&b, "%s at %.0f K: ΔG_rxn = %+.1f kJ/mol (%s)\n\n",
			report.Sulfide.Equation, report.Sulfide.TempK, report.Sulfide.DGrxn,
			favorability(report.Sulfide.Favorable))
	}

	if len(report.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		for _, sig := range report.Signals {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", sig.Type, sig.Severity, sig.Description)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("Generated by ellingham. Linearized values are screening-grade; ")
		b.WriteString("confirm ranking-sensitive conclusions against an assessed database.\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}

// RenderLLMMarkdown writes the optional generated narrative to its own file,
// kept apart from the computed report.
func (r *Renderer) RenderLLMMarkdown(markdown string, path string) error {
	return os.WriteFile(path, []byte(markdown), 0644)
}

// RenderSummary prints a terminal summary to stdout.
func (r *Renderer) RenderSummary(report *model.Report) {
	fmt.Println()
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Printf("  %s\n", report.Subject)
	fmt.Println("═══════════════════════════════════════════════════════════")
	fmt.Println()
	fmt.Printf("  Source:       %s\n", report.Source)
	fmt.Printf("  Grid:         %.0f-%.0f K\n", report.GridMinK, report.GridMaxK)
	fmt.Printf("  Reference:    %.0f K (%.0f °C)\n", report.RefTempK, model.KelvinToCelsius(report.RefTempK))
	fmt.Println()
	fmt.Printf("  Stability at %.0f K (kJ/mol O₂, most stable first):\n", report.RefTempK)
	for _, rk := range report.Rankings {
		fmt.Printf("    %d. %-6s %9.1f\n", rk.Rank, rk.Oxide, rk.DGPerO2)
	}
	fmt.Println()

	if len(report.Reduction) > 0 {
		allSafe := true
		for _, rxn := range report.Reduction {
			if rxn.Favorable {
				allSafe = false
				fmt.Printf("  ⚠ Cu CAN reduce: %s (ΔG = %+.1f kJ)\n", rxn.Equation, rxn.DGrxn)
			}
		}
		if allSafe {
			fmt.Printf("  ✓ Cu cannot reduce any screened ceramic at %.0f K\n", report.RefTempK)
		}
	}
	if report.Sulfide != nil {
		fmt.Printf("  ✓ Sulfide exchange %s: ΔG = %+.1f kJ (%s)\n",
			report.Sulfide.Equation, report.Sulfide.DGrxn, favorability(report.Sulfide.Favorable))
	}

	warnings := 0
	for _, sig := range report.Signals {
		if sig.Severity == model.SeverityWarning {
			warnings++
		}
	}
	if warnings > 0 {
		fmt.Printf("\n  %d warning signal(s), see the full report\n", warnings)
	}
	fmt.Println()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func favorability(v bool) string {
	if v {
		return "favorable"
	}
	return "unfavorable"
}
