package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/nav-agent/internal/config"
)

func TestEstimateCostKnownModel(t *testing.T) {
	table := NewTable(nil)
	// gpt-4o-mini: $0.15/1M in, $0.60/1M out
	got := table.EstimateCost("gpt-4o-mini", 1_000_000, 1_000_000)
	assert.InDelta(t, 0.75, got, 1e-9)
}

func TestEstimateCostUnknownModel(t *testing.T) {
	table := NewTable(nil)
	assert.Zero(t, table.EstimateCost("mystery-model", 5000, 5000))
}

func TestEstimateCostOverride(t *testing.T) {
	table := NewTable(map[string]config.ModelPricing{
		"glm-4.6":      {InputPer1M: 1.0, OutputPer1M: 2.0},
		"custom-model": {InputPer1M: 10.0, OutputPer1M: 20.0},
	})
	// override beats the built-in entry
	assert.InDelta(t, 3.0, table.EstimateCost("glm-4.6", 1_000_000, 1_000_000), 1e-9)
	// override introduces a model the built-in table lacks
	assert.InDelta(t, 30.0, table.EstimateCost("custom-model", 1_000_000, 1_000_000), 1e-9)
	// non-overridden models still resolve from the built-in table
	assert.InDelta(t, 0.75, table.EstimateCost("gpt-4o-mini", 1_000_000, 1_000_000), 1e-9)
}

func TestEstimateCostZeroTokens(t *testing.T) {
	table := NewTable(nil)
	assert.Zero(t, table.EstimateCost("gpt-4o-mini", 0, 0))
}
