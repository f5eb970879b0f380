package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dimascad/ellingham/internal/llm"
	"github.com/dimascad/ellingham/internal/model"
	"github.com/dimascad/ellingham/internal/screen"
)

// Pipeline orchestrates a screening run: curves over the grid, stability
// ranking at the reference temperature, reduction and sulfide checks, report.
type Pipeline struct {
	source     CurveSource
	renderer   *Renderer
	summarizer *llm.Summarizer // nil if disabled
	config     *model.Config
}

// NewPipeline creates a pipeline with the given configuration and curve source.
func NewPipeline(cfg *model.Config, source CurveSource) *Pipeline {
	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		s, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM))
		if err != nil {
			fmt.Printf("Warning: failed to initialize LLM provider: %v\n", err)
		} else {
			summarizer = s
		}
	}

	return &Pipeline{
		source:     source,
		renderer:   NewRenderer(cfg.Output.IncludeFooter),
		summarizer: summarizer,
		config:     cfg,
	}
}

// ScreenOptions selects what one screening run covers.
type ScreenOptions struct {
	Oxides   []model.Oxide
	Grid     *model.Grid
	RefTempK float64
}

// ceramicNames are the crucible candidates checked for reduction by copper.
var ceramicNames = map[string]bool{
	"Al2O3": true, "MgO": true, "SiO2": true, "TiO2": true,
}

// Screen runs the full analysis and builds a report.
func (p *Pipeline) Screen(ctx context.Context, opts ScreenOptions) (*model.Report, error) {
	if len(opts.Oxides) == 0 {
		return nil, fmt.Errorf("no oxides selected")
	}
	if opts.Grid == nil {
		return nil, fmt.Errorf("no temperature grid")
	}

	report := &model.Report{
		Subject:     "Cu-ceramic oxide screening",
		GeneratedAt: time.Now().UTC(),
		Source:      p.source.Name(),
		GridMinK:    opts.Grid.Min(),
		GridMaxK:    opts.Grid.Max(),
		RefTempK:    opts.RefTempK,
	}
	if opts.Grid.Len() > 1 {
		report.GridStepK = (opts.Grid.Max() - opts.Grid.Min()) / float64(opts.Grid.Len()-1)
	}

	// 1. Curves. A failing oxide is recorded as a data gap, not a run failure.
	for _, o := range opts.Oxides {
		curve, err := p.source.Curve(o, opts.Grid)
		if err != nil {
			report.Signals = append(report.Signals, model.Signal{
				Type:        model.SignalDataGap,
				Severity:    model.SeverityWarning,
				Description: fmt.Sprintf("skipped %s: %v", o.Name, err),
				Data:        map[string]any{"oxide": o.Name},
			})
			continue
		}
		report.Curves = append(report.Curves, curve)
	}
	if len(report.Curves) == 0 {
		return nil, fmt.Errorf("no curves could be computed from %s", p.source.Name())
	}

	// 2. Stability ranking at the reference temperature. The reference need
	// not be a grid sample; curves are pure functions of T, so the computed
	// selection is evaluated there directly.
	refCurves, err := p.referenceCurves(report.Curves, opts)
	if err != nil {
		return nil, err
	}
	rankings, err := screen.Rank(refCurves, opts.RefTempK)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	report.Rankings = rankings
	report.Signals = append(report.Signals, screen.RankingSignal(rankings, opts.RefTempK))

	// 3. Can copper reduce the crucible ceramics?
	cu, ceramics := splitSelection(opts.Oxides)
	if cu != nil && len(ceramics) > 0 {
		reactions, signals := screen.ReductionChecks(*cu, ceramics, opts.RefTempK)
		report.Reduction = reactions
		report.Signals = append(report.Signals, signals...)
	}

	// 4. Sulfide exchange route.
	feS, cu2S := model.DefaultSulfides()
	rxn, sig := screen.SulfideExchange(feS, cu2S, opts.RefTempK)
	report.Sulfide = &rxn
	report.Signals = append(report.Signals, sig)

	// 5. Extrapolation flags, if any curve left its assessed range.
	if exSig := screen.ExtrapolationSignal(report.Curves); exSig != nil {
		report.Signals = append(report.Signals, *exSig)
	}

	// 6. Optional narrative, generated after all numbers are final.
	if p.summarizer != nil && p.summarizer.IsEnabled() {
		summary, err := p.summarizer.GenerateSummary(ctx, *report)
		if err != nil {
			fmt.Printf("Warning: LLM summary generation failed: %v\n", err)
		} else if summary != nil {
			report.LLM = summary
		}
	}

	return report, nil
}

// referenceCurves evaluates every oxide that produced a curve at the
// reference temperature, as one-point curves for the ranking.
func (p *Pipeline) referenceCurves(curves []model.Curve, opts ScreenOptions) ([]model.Curve, error) {
	refGrid, err := model.NewGrid(opts.RefTempK, opts.RefTempK, 1)
	if err != nil {
		return nil, fmt.Errorf("reference temperature: %w", err)
	}

	computed := make(map[string]bool, len(curves))
	for _, c := range curves {
		computed[c.Oxide] = true
	}

	var refCurves []model.Curve
	for _, o := range opts.Oxides {
		if !computed[o.Name] {
			continue
		}
		c, err := p.source.Curve(o, refGrid)
		if err != nil {
			return nil, fmt.Errorf("evaluate %s at %.0f K: %w", o.Name, opts.RefTempK, err)
		}
		refCurves = append(refCurves, c)
	}
	return refCurves, nil
}

// RenderReport renders the report to the requested outputs, then prints the
// terminal summary.
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, csvPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if csvPath != "" {
		if err := p.renderer.RenderCSV(report, csvPath); err != nil {
			return fmt.Errorf("render CSV: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote CSV: %s\n", csvPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// The narrative goes to its own file so the computed report stays clean.
	if report.LLM != nil && report.LLM.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report.LLM), llmPath); err != nil {
			fmt.Printf("Warning: failed to write LLM summary: %v\n", err)
		} else if verbose {
			fmt.Printf("✓ Wrote LLM summary: %s\n", llmPath)
		}
	}

	p.renderer.RenderSummary(report)
	return nil
}

// splitSelection separates the Cu2O reference line from the ceramic
// candidates. Cu2O is taken from the builtin set when the selection left
// it out, since every reduction check needs the copper line.
func splitSelection(oxides []model.Oxide) (cu *model.Oxide, ceramics []model.Oxide) {
	for i := range oxides {
		switch {
		case oxides[i].Name == "Cu2O":
			cu = &oxides[i]
		case ceramicNames[oxides[i].Name]:
			ceramics = append(ceramics, oxides[i])
		}
	}
	if cu == nil {
		defaults, _ := model.OxidesByName([]string{"Cu2O"})
		if len(defaults) == 1 {
			cu = &defaults[0]
		}
	}
	return cu, ceramics
}
