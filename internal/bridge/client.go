// Package bridge is the HTTP client for the lab's thermodynamic calculation
// service: a thin JSON bridge in front of the commercial suite's scripting
// interface. The call surface mirrors the scripting sessions the study used:
// select a database and elements, set temperature/pressure/composition
// conditions, calculate, read stable phases and per-phase Gibbs energies.
package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Client talks to one bridge endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxBytes   int64
}

// NewClient creates a bridge client.
func NewClient(baseURL string, timeout time.Duration, maxBytes int64) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		maxBytes:   maxBytes,
	}
}

// BaseURL returns the configured endpoint (used for rate-limit keying).
func (c *Client) BaseURL() string { return c.baseURL }

// Databases lists the databases available behind the bridge.
func (c *Client) Databases(ctx context.Context) ([]string, error) {
	var out struct {
		Databases []string `json:"databases"`
	}
	if err := c.get(ctx, "/v1/databases", nil, &out); err != nil {
		return nil, err
	}
	return out.Databases, nil
}

// Phases lists the phase names a database defines for an element system.
func (c *Client) Phases(ctx context.Context, database string, elements []string) ([]string, error) {
	q := url.Values{}
	q.Set("database", database)
	q.Set("elements", strings.Join(elements, ","))

	var out struct {
		Phases []string `json:"phases"`
	}
	if err := c.get(ctx, "/v1/phases", q, &out); err != nil {
		return nil, err
	}
	return out.Phases, nil
}

// EquilibriumRequest is one single-equilibrium calculation.
type EquilibriumRequest struct {
	Database      string             `json:"database"`
	Elements      []string           `json:"elements"`
	TempK         float64            `json:"temperature_k"`
	PressurePa    float64            `json:"pressure_pa"`
	MoleFractions map[string]float64 `json:"mole_fractions,omitempty"`
}

// Key returns a canonical string identifying the calculation, used as the
// cache key. Map iteration order must not leak into it.
func (r EquilibriumRequest) Key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|T=%.6f|P=%.6f", r.Database, strings.Join(r.Elements, ","), r.TempK, r.PressurePa)

	comps := make([]string, 0, len(r.MoleFractions))
	for el := range r.MoleFractions {
		comps = append(comps, el)
	}
	sort.Strings(comps)
	for _, el := range comps {
		fmt.Fprintf(&b, "|X(%s)=%.6g", el, r.MoleFractions[el])
	}
	return b.String()
}

// EquilibriumResult is the bridge's answer for one temperature point.
type EquilibriumResult struct {
	StablePhases []string           `json:"stable_phases"`
	SystemGM     float64            `json:"system_gm"` // J/mol
	PhaseGM      map[string]float64 `json:"phase_gm"`  // J/mol per stable phase
}

// Equilibrium runs one single-equilibrium calculation. One call per
// temperature point; the caller decides how failures are recorded.
func (c *Client) Equilibrium(ctx context.Context, req EquilibriumRequest) (*EquilibriumResult, error) {
	if req.TempK <= 0 {
		return nil, fmt.Errorf("bridge: temperature must be > 0 K, got %g", req.TempK)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("bridge: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/equilibrium", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("bridge: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("bridge: equilibrium: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("bridge: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("bridge: unexpected status %d: %s", resp.StatusCode, condense(data))
	}

	var result EquilibriumResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("bridge: decode response: %w", err)
	}
	return &result, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("bridge: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bridge: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes))
	if err != nil {
		return fmt.Errorf("bridge: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bridge: unexpected status %d: %s", resp.StatusCode, condense(data))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("bridge: decode response: %w", err)
	}
	return nil
}

// PhaseGibbs finds the Gibbs energy of the first stable phase matching one
// of the patterns, in priority order. Databases name the same compound
// differently (CUPRITE vs CU2O), hence the substring match.
func PhaseGibbs(result *EquilibriumResult, patterns []string) (gm float64, phase string, ok bool) {
	for _, pattern := range patterns {
		upper := strings.ToUpper(pattern)
		for _, p := range result.StablePhases {
			if strings.Contains(strings.ToUpper(p), upper) {
				if v, found := result.PhaseGM[p]; found {
					return v, p, true
				}
			}
		}
	}
	return 0, "", false
}

func condense(data []byte) string {
	s := strings.Join(strings.Fields(string(data)), " ")
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}
