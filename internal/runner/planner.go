package runner

import (
	"context"

	"github.com/example/nav-agent/internal/models"
	"github.com/example/nav-agent/internal/prompts"
	"github.com/example/nav-agent/internal/providers/llm"
)

// Planner issues the advisory planning call that turns a raw task query
// into a brief for the subagent.
type Planner struct {
	Client  llm.Client
	Prompts *prompts.Renderer
}

// Plan renders the planner prompt and parses the brief. The brief is
// purely advisory, so callers degrade to an empty brief when this
// fails; the error is returned for logging only.
func (p *Planner) Plan(ctx context.Context, task models.Task, table models.ContextTable) (models.PlannerBrief, *llm.Response, error) {
	prompt, err := p.Prompts.Planner(task.Persona, task.Query, table)
	if err != nil {
		return models.PlannerBrief{}, nil, err
	}
	resp, err := p.Client.Complete(ctx, prompt)
	if err != nil {
		return models.PlannerBrief{}, nil, err
	}
	brief, err := decodePlannerBrief(resp.Text)
	if err != nil {
		return models.PlannerBrief{}, resp, err
	}
	return brief, resp, nil
}
