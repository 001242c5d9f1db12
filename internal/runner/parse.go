package runner

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/example/nav-agent/internal/models"
)

// ParseError reports model output that did not decode into the schema
// its template asked for. The raw text is kept for the ledger.
type ParseError struct {
	Raw    string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse model response: %s", e.Reason)
}

// stripFence removes a surrounding markdown code fence (``` or
// ```json) that models add despite instructions.
func stripFence(text string) string {
	raw := strings.TrimSpace(text)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	lines := strings.Split(raw, "\n")
	if len(lines) > 0 && strings.HasPrefix(lines[0], "```") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.ToLower(strings.TrimSpace(lines[0])), "json") {
		lines = lines[1:]
	}
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[len(lines)-1]), "```") {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// extractJSONObject returns the first balanced top-level {...} in s, or
// "" when none exists. Brace counting ignores string contents well
// enough for model output; a malformed remainder still fails the
// subsequent unmarshal.
func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = inString
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1]
				}
			}
		}
	}
	return ""
}

func decodeObject(text string, out any) error {
	cleaned := stripFence(text)
	if !strings.HasPrefix(cleaned, "{") {
		if obj := extractJSONObject(cleaned); obj != "" {
			cleaned = obj
		}
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return &ParseError{Raw: text, Reason: err.Error()}
	}
	return nil
}

// decodeSubagentAnswer parses model output as a SubagentAnswer. A null
// chosen_url is valid; a confidence outside [0,1] is not.
func decodeSubagentAnswer(text string) (models.SubagentAnswer, error) {
	var answer models.SubagentAnswer
	if err := decodeObject(text, &answer); err != nil {
		return models.SubagentAnswer{}, err
	}
	if answer.Confidence < 0 || answer.Confidence > 1 {
		return models.SubagentAnswer{}, &ParseError{
			Raw:    text,
			Reason: fmt.Sprintf("confidence %v outside [0,1]", answer.Confidence),
		}
	}
	return answer, nil
}

// decodeCritiqueVerdict parses model output as a CritiqueVerdict and
// rejects unknown states.
func decodeCritiqueVerdict(text string) (models.CritiqueVerdict, error) {
	var verdict models.CritiqueVerdict
	if err := decodeObject(text, &verdict); err != nil {
		return models.CritiqueVerdict{}, err
	}
	switch verdict.State {
	case models.VerdictOK, models.VerdictRetry, models.VerdictFail:
		return verdict, nil
	}
	return models.CritiqueVerdict{}, &ParseError{
		Raw:    text,
		Reason: fmt.Sprintf("unknown verdict state %q", verdict.State),
	}
}

// decodePlannerBrief parses the planning call's output. Missing
// task_brief is a ParseError; the caller treats it as advisory.
func decodePlannerBrief(text string) (models.PlannerBrief, error) {
	var brief models.PlannerBrief
	if err := decodeObject(text, &brief); err != nil {
		return models.PlannerBrief{}, err
	}
	if strings.TrimSpace(brief.TaskBrief) == "" {
		return models.PlannerBrief{}, &ParseError{Raw: text, Reason: "missing task_brief"}
	}
	return brief, nil
}
