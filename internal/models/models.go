package models

// Persona names a user archetype used to scope which site pages are
// relevant to a task.
type Persona string

const (
	PersonaComputerScience Persona = "computer_science"
	PersonaNursing         Persona = "nursing"
	PersonaKinesiology     Persona = "kinesiology"
)

// Known reports whether p is one of the configured personas.
func (p Persona) Known() bool {
	switch p {
	case PersonaComputerScience, PersonaNursing, PersonaKinesiology:
		return true
	}
	return false
}

// Task is one navigation query with its graded answer. Tasks are loaded
// once per run and never mutated.
type Task struct {
	ID          string  `json:"id"`
	Persona     Persona `json:"persona"`
	Query       string  `json:"query"`
	ExpectedURL string  `json:"expected_url"`
}

// ContextEntry is one (title, url) pair exposed to the model.
type ContextEntry struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ContextTable is the persona-scoped scaffolding handed to the prompt
// templates, ordered and bounded.
type ContextTable []ContextEntry

// PlannerBrief is the advisory output of the planning call. Neither
// field is required for correctness of later calls.
type PlannerBrief struct {
	TaskBrief string `json:"task_brief"`
	Notes     string `json:"notes,omitempty"`
}

// SubagentAnswer is one attempt's structured answer. ChosenURL may be
// null when the model found no fitting page; that is a valid
// low-confidence answer, not an error.
type SubagentAnswer struct {
	ChosenURL  *string `json:"chosen_url"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
	Answer     string  `json:"answer"`
}

// VerdictState is the critique's judgment of an attempt.
type VerdictState string

const (
	VerdictOK    VerdictState = "ok"
	VerdictRetry VerdictState = "retry"
	VerdictFail  VerdictState = "fail"
)

// CritiqueVerdict is the critique call's parsed output. On retry the
// justification doubles as the hint for the next attempt.
type CritiqueVerdict struct {
	State         VerdictState `json:"state"`
	Justification string       `json:"justification"`
	RevisedURL    *string      `json:"revised_url"`
}

// FinalState is the terminal state recorded per task. Retry never
// persists; it only drives another attempt.
type FinalState string

const (
	FinalOK   FinalState = "ok"
	FinalFail FinalState = "fail"
)

// Usage carries the token and cost metadata a provider reports for one
// call. Pointers distinguish "absent" from zero.
type Usage struct {
	InputTokens  *int     `json:"input_tokens,omitempty"`
	OutputTokens *int     `json:"output_tokens,omitempty"`
	CostUSD      *float64 `json:"cost_usd,omitempty"`
	DurationMS   *int64   `json:"duration_ms,omitempty"`
}
