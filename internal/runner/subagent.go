package runner

import (
	"context"

	"github.com/example/nav-agent/internal/models"
	"github.com/example/nav-agent/internal/prompts"
	"github.com/example/nav-agent/internal/providers/llm"
)

// SubagentRunner performs one task attempt: render the subagent prompt,
// call the model once, parse the structured answer. It never retries;
// the controller owns the retry budget.
type SubagentRunner struct {
	Client  llm.Client
	Prompts *prompts.Renderer
}

// Run executes one attempt. query is the augmented query (brief and
// hint folded in by the controller). A ParseError or client error is
// returned alongside the raw response when one was received.
func (s *SubagentRunner) Run(ctx context.Context, persona models.Persona, query string, table models.ContextTable) (models.SubagentAnswer, *llm.Response, error) {
	prompt, err := s.Prompts.Subagent(prompts.SubagentInput{
		Persona:      persona,
		Query:        query,
		ContextTable: prompts.FormatContextTable(table),
	})
	if err != nil {
		return models.SubagentAnswer{}, nil, err
	}
	resp, err := s.Client.Complete(ctx, prompt)
	if err != nil {
		return models.SubagentAnswer{}, nil, err
	}
	answer, err := decodeSubagentAnswer(resp.Text)
	if err != nil {
		return models.SubagentAnswer{}, resp, err
	}
	return answer, resp, nil
}
