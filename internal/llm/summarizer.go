package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/dimascad/ellingham/internal/model"
)

// Summarizer turns a finished report into an optional narrative. It runs
// strictly after the numbers are computed and can never change them.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer. Returns an error for a misconfigured
// provider; a deliberately disabled one (empty provider name) yields a
// summarizer whose IsEnabled reports false.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured.
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// GenerateSummary asks the provider for a narrative and wraps it for the
// report. A failed generation returns the error; the caller decides whether
// the run continues without a summary.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	req := SummarizeRequest{
		Report:         report,
		AllowedNumbers: AllowedNumbers(report),
		Model:          s.config.Model,
		MaxTokens:      s.config.MaxTokens,
	}

	resp, err := s.provider.Summarize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	return &model.LLMSummary{
		Enabled:       true,
		Provider:      s.provider.Name(),
		Model:         resp.Model,
		StrictNumbers: s.config.StrictNumbers,
		SummaryMD:     resp.Summary,
	}, nil
}

// RenderSeparateMarkdown formats the narrative for its own file, clearly
// marked as generated so it is never mistaken for computed output.
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	var b strings.Builder

	b.WriteString("# Generated Summary\n\n")
	fmt.Fprintf(&b, "> Generated by %s (%s). ", summary.Provider, summary.Model)
	b.WriteString("This narrative restates the computed report; the report itself is authoritative.\n\n")
	b.WriteString(summary.SummaryMD)
	b.WriteString("\n")

	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}
