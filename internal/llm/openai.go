package llm

import (
	"context"
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements Provider for OpenAI-compatible endpoints.
type OpenAIProvider struct {
	client *openai.Client
	config Config
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}, nil
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is properly configured.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "OpenAI API check failed: %v\n", err)
		return false
	}
	return true
}

// Summarize generates a summary via the Chat Completions API and verifies
// the strict-numbers contract on the result.
func (p *OpenAIProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	prompt := req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Report, req.AllowedNumbers)
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = p.config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}

	timeout := time.Duration(p.config.Timeout) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chatReq := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You summarize thermodynamic screening reports. You never introduce numeric values that are not in the report data.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.3,
	}

	resp, err := p.client.CreateChatCompletion(ctxWithTimeout, chatReq)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)

	if p.config.StrictNumbers {
		if leak, ok := VerifyNumbers(summary, req.AllowedNumbers); !ok {
			return nil, fmt.Errorf("NUMBER LEAK: summary contains value not in report: %s", leak)
		}
	}

	return &SummarizeResponse{
		Summary:    summary,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// VerifyNumbers checks that every numeric value in the text appears in the
// allowlist. Small counting integers pass unchecked (list positions,
// "the four ceramics"); anything else must match an allowed value within
// rounding tolerance. Returns the first offending token on failure.
func VerifyNumbers(text string, allowed []float64) (string, bool) {
	for _, tok := range numberPattern.FindAllString(text, -1) {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			continue
		}
		if v == math.Trunc(v) && v >= 0 && v <= 12 {
			continue
		}
		if !matchesAllowed(v, allowed) {
			return tok, false
		}
	}
	return "", true
}

func matchesAllowed(v float64, allowed []float64) bool {
	for _, a := range allowed {
		// Absolute tolerance covers one-decimal rounding, relative covers
		// large magnitudes the model may restate with fewer digits.
		if math.Abs(v-a) <= 0.051 || (a != 0 && math.Abs(v-a)/math.Abs(a) <= 5e-3) {
			return true
		}
		// A sign-dropped magnitude is still the same reported number.
		if math.Abs(math.Abs(v)-math.Abs(a)) <= 0.051 {
			return true
		}
	}
	return false
}
