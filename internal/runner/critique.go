package runner

import (
	"context"
	"encoding/json"

	"github.com/example/nav-agent/internal/models"
	"github.com/example/nav-agent/internal/prompts"
	"github.com/example/nav-agent/internal/providers/llm"
)

// CritiqueRunner judges a subagent answer against the task's expected
// URL with a second model call.
type CritiqueRunner struct {
	Client  llm.Client
	Prompts *prompts.Renderer
}

// Run renders the critique prompt with the answer serialized back to
// JSON and parses the verdict. On a retry verdict the justification is
// expected to carry a hint for the next attempt, but its absence is not
// an error.
func (c *CritiqueRunner) Run(ctx context.Context, persona models.Persona, query, expectedURL string, answer models.SubagentAnswer) (models.CritiqueVerdict, *llm.Response, error) {
	answerJSON, err := json.Marshal(answer)
	if err != nil {
		return models.CritiqueVerdict{}, nil, err
	}
	prompt, err := c.Prompts.Critique(prompts.CritiqueInput{
		Persona:         persona,
		Query:           query,
		ExpectedURL:     expectedURL,
		AssistantOutput: string(answerJSON),
	})
	if err != nil {
		return models.CritiqueVerdict{}, nil, err
	}
	resp, err := c.Client.Complete(ctx, prompt)
	if err != nil {
		return models.CritiqueVerdict{}, nil, err
	}
	verdict, err := decodeCritiqueVerdict(resp.Text)
	if err != nil {
		return models.CritiqueVerdict{}, resp, err
	}
	return verdict, resp, nil
}
