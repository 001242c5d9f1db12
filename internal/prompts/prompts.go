// Package prompts renders the three prompt templates of the eval loop:
// planner (main agent), subagent, and critique. Rendering is pure;
// identical inputs always produce identical text.
package prompts

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/example/nav-agent/internal/models"
)

//go:embed templates/*.md
var templateFS embed.FS

// plannerFrame wraps the replaceable planner body with the per-task
// fields, mirroring how the subagent sees its context.
const plannerFrame = `{{.Body}}

Persona: {{.Persona}}
Task query: {{.Query}}

Context pages:
{{.ContextLines}}
`

// Renderer holds the parsed templates. The planner body is mutable so
// the tuning step can swap in a revised prompt between cycles; the
// subagent and critique templates are fixed for a run.
type Renderer struct {
	plannerBody string
	plannerTpl  *template.Template
	subagentTpl *template.Template
	critiqueTpl *template.Template
}

// SubagentInput fills the subagent template. Query is the augmented
// query: brief, hint, and original request folded together.
type SubagentInput struct {
	Persona      models.Persona
	Query        string
	ContextTable string
}

// CritiqueInput fills the critique template. AssistantOutput is the
// subagent answer serialized back to JSON.
type CritiqueInput struct {
	Persona         models.Persona
	Query           string
	ExpectedURL     string
	AssistantOutput string
}

// New loads the embedded templates.
func New() (*Renderer, error) {
	body, err := templateFS.ReadFile("templates/main_agent.md")
	if err != nil {
		return nil, fmt.Errorf("load planner template: %w", err)
	}
	r := &Renderer{plannerBody: strings.TrimSpace(string(body))}
	if r.plannerTpl, err = template.New("planner").Parse(plannerFrame); err != nil {
		return nil, fmt.Errorf("parse planner frame: %w", err)
	}
	if r.subagentTpl, err = parseEmbedded("subagent"); err != nil {
		return nil, err
	}
	if r.critiqueTpl, err = parseEmbedded("critique"); err != nil {
		return nil, err
	}
	return r, nil
}

func parseEmbedded(name string) (*template.Template, error) {
	data, err := templateFS.ReadFile("templates/" + name + ".md")
	if err != nil {
		return nil, fmt.Errorf("load %s template: %w", name, err)
	}
	tpl, err := template.New(name).Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", name, err)
	}
	return tpl, nil
}

// PlannerBody returns the current planner prompt body.
func (r *Renderer) PlannerBody() string {
	return r.plannerBody
}

// SetPlannerBody replaces the planner prompt body, used by the tuning
// step between cycles.
func (r *Renderer) SetPlannerBody(body string) {
	if body = strings.TrimSpace(body); body != "" {
		r.plannerBody = body
	}
}

// Planner renders the planning prompt for one task.
func (r *Renderer) Planner(persona models.Persona, query string, table models.ContextTable) (string, error) {
	var b strings.Builder
	err := r.plannerTpl.Execute(&b, map[string]string{
		"Body":         r.plannerBody,
		"Persona":      string(persona),
		"Query":        query,
		"ContextLines": FormatContextList(table),
	})
	if err != nil {
		return "", fmt.Errorf("render planner prompt: %w", err)
	}
	return b.String(), nil
}

// Subagent renders the subagent prompt.
func (r *Renderer) Subagent(in SubagentInput) (string, error) {
	var b strings.Builder
	if err := r.subagentTpl.Execute(&b, in); err != nil {
		return "", fmt.Errorf("render subagent prompt: %w", err)
	}
	return b.String(), nil
}

// Critique renders the critique prompt.
func (r *Renderer) Critique(in CritiqueInput) (string, error) {
	var b strings.Builder
	if err := r.critiqueTpl.Execute(&b, in); err != nil {
		return "", fmt.Errorf("render critique prompt: %w", err)
	}
	return b.String(), nil
}

// FormatContextTable renders the numbered table used by the subagent
// and critique prompts: "1. Title - URL" per line.
func FormatContextTable(table models.ContextTable) string {
	var b strings.Builder
	for i, e := range table {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, e.Title, e.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatContextList renders the bulleted "Title (URL)" list used by the
// planner prompt.
func FormatContextList(table models.ContextTable) string {
	var b strings.Builder
	for _, e := range table {
		fmt.Fprintf(&b, "- %s (%s)\n", e.Title, e.URL)
	}
	return strings.TrimRight(b.String(), "\n")
}

// TunePrompt builds the prompt-improvement request issued when a
// cycle's success rate falls below the threshold.
func TunePrompt(current string, successRate, totalCost float64) string {
	return fmt.Sprintf(`You are improving the main-agent prompt for future cycles.
Existing prompt:
%s

Performance summary: Cycle success rate was %.2f%%. Total cost $%.4f.

Suggest a revised prompt of at most 200 words, keeping the JSON response
format requirement. Respond with JSON: {"prompt": "..."}`,
		current, successRate*100, totalCost)
}
