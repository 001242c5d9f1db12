// Package pricing estimates USD cost from token counts when the
// provider response carries no cost figure of its own.
package pricing

import "github.com/example/nav-agent/internal/config"

// ModelPricing holds per-million-token costs in USD.
type ModelPricing struct {
	InputPer1M  float64
	OutputPer1M float64
}

// Built-in pricing as of mid 2026. Config overrides take precedence;
// unknown models cost 0.0 (safe default).
var knownModels = map[string]ModelPricing{
	// Anthropic
	"claude-3-5-sonnet-latest": {3.00, 15.00},
	"claude-sonnet-4-5":        {3.00, 15.00},
	// OpenAI
	"gpt-4o":      {2.50, 10.00},
	"gpt-4o-mini": {0.15, 0.60},
	// Gemini
	"gemini-1.5-pro":   {1.25, 5.00},
	"gemini-1.5-flash": {0.075, 0.30},
	"gemini-2.5-flash": {0.075, 0.30},
	// Eval proxy models
	"glm-4.6": {0.60, 2.20},
}

// Table resolves model pricing, preferring configured overrides.
type Table struct {
	overrides map[string]ModelPricing
}

// NewTable builds a table from config overrides (may be nil).
func NewTable(overrides map[string]config.ModelPricing) *Table {
	t := &Table{overrides: make(map[string]ModelPricing, len(overrides))}
	for model, p := range overrides {
		t.overrides[model] = ModelPricing{InputPer1M: p.InputPer1M, OutputPer1M: p.OutputPer1M}
	}
	return t
}

// EstimateCost returns the estimated USD cost for one call.
func (t *Table) EstimateCost(model string, inputTokens, outputTokens int) float64 {
	p, ok := t.overrides[model]
	if !ok {
		if p, ok = knownModels[model]; !ok {
			return 0.0
		}
	}
	return (float64(inputTokens)/1_000_000)*p.InputPer1M +
		(float64(outputTokens)/1_000_000)*p.OutputPer1M
}
