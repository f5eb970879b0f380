package llm

import (
	"context"
	"fmt"
	"math"

	"github.com/dimascad/ellingham/internal/model"
)

// Provider is one LLM backend capable of summarizing a report.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Summarize generates a narrative for the report in strict-numbers mode.
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest is the input for report summarization.
type SummarizeRequest struct {
	// Report is the computed screening report. All numbers are final before
	// the summarizer ever sees them.
	Report model.Report

	// AllowedNumbers is the STRICT allowlist of numeric values the narrative
	// may contain. The model must not introduce values of its own; a number
	// outside this list fails the summarization.
	AllowedNumbers []float64

	// Prompt overrides the default prompt when non-empty.
	Prompt string

	// Model is the provider-specific model name.
	Model string

	// MaxTokens limits the response length.
	MaxTokens int
}

// SummarizeResponse is the provider's output.
type SummarizeResponse struct {
	Summary    string
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration.
type Config struct {
	// Provider name: "openai" or "" (disabled).
	Provider string

	// Model name (provider-specific).
	Model string

	// APIKey, read from the environment, never from the config file.
	APIKey string

	// BaseURL for API-compatible endpoints.
	BaseURL string

	// Timeout for API requests, seconds.
	Timeout int

	// StrictNumbers rejects summaries containing numbers not present in the
	// report. Should always be true; a thermodynamic narrative with invented
	// values is worse than none.
	StrictNumbers bool

	// MaxTokens for response generation.
	MaxTokens int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:      "",
		Model:         "",
		Timeout:       30,
		StrictNumbers: true,
		MaxTokens:     1000,
	}
}

// NewProvider creates a provider from configuration. An empty provider name
// means LLM is disabled and both return values are nil.
func NewProvider(config Config) (Provider, error) {
	switch config.Provider {
	case "openai":
		return NewOpenAIProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config.
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:      mc.Provider,
		Model:         mc.Model,
		APIKey:        mc.APIKey,
		BaseURL:       mc.BaseURL,
		Timeout:       mc.TimeoutSec,
		StrictNumbers: mc.StrictNumbers,
		MaxTokens:     mc.MaxTokens,
	}
}

// BuildPrompt constructs the default summarization prompt. The rules mirror
// the strict-numbers contract enforced after generation.
func BuildPrompt(report model.Report, allowed []float64) string {
	prompt := fmt.Sprintf(`You are summarizing an Ellingham-diagram screening report on ceramic stability against molten copper-bearing steel.

CRITICAL RULES:
1. Use ONLY numeric values that appear in the report data below. Do not compute, convert, or estimate new numbers.
2. Do not speculate beyond the computed results.
3. Describe thermodynamic favorability, never kinetics (this screening says nothing about rates).
4. Free energies are per mole of O2 unless a reaction energy says otherwise.

Report:
- Subject: %s
- Source: %s
- Temperature grid: %.0f-%.0f K
- Reference temperature: %.0f K

Stability ranking at the reference temperature (most stable first):
`, report.Subject, report.Source, report.GridMinK, report.GridMaxK, report.RefTempK)

	for _, r := range report.Rankings {
		prompt += fmt.Sprintf("- %d. %s: %.1f kJ/mol O2\n", r.Rank, r.Oxide, r.DGPerO2)
	}

	if len(report.Reduction) > 0 {
		prompt += "\nReduction checks:\n"
		for _, rxn := range report.Reduction {
			prompt += fmt.Sprintf("- %s: dG_rxn = %.1f kJ, favorable = %t\n", rxn.Equation, rxn.DGrxn, rxn.Favorable)
		}
	}
	if report.Sulfide != nil {
		prompt += fmt.Sprintf("\nSulfide exchange %s: dG_rxn = %.1f kJ, favorable = %t\n",
			report.Sulfide.Equation, report.Sulfide.DGrxn, report.Sulfide.Favorable)
	}

	prompt += "\nKey signals:\n"
	for i, sig := range report.Signals {
		if i >= 5 {
			break
		}
		prompt += fmt.Sprintf("- %s: %s\n", sig.Type, sig.Description)
	}

	prompt += "\nProvide a 3-5 sentence summary of what the screening found."
	return prompt
}

// AllowedNumbers collects every numeric value the report presents, rounded
// the way the prompt presents them. This is the allowlist strict-numbers
// mode verifies a summary against.
func AllowedNumbers(report model.Report) []float64 {
	var nums []float64
	add := func(v float64) {
		nums = append(nums, v, round1(v))
	}

	add(report.GridMinK)
	add(report.GridMaxK)
	add(report.RefTempK)
	add(model.KelvinToCelsius(report.RefTempK))

	for _, r := range report.Rankings {
		nums = append(nums, float64(r.Rank))
		add(r.DGPerO2)
	}
	for _, rxn := range report.Reduction {
		add(rxn.DGrxn)
		add(rxn.TempK)
	}
	if report.Sulfide != nil {
		add(report.Sulfide.DGrxn)
		add(report.Sulfide.TempK)
	}
	return nums
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
