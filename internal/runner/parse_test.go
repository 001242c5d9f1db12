package runner

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/nav-agent/internal/models"
)

func TestStripFence(t *testing.T) {
	cases := map[string]struct {
		in   string
		want string
	}{
		"plain":         {`{"a":1}`, `{"a":1}`},
		"fenced":        {"```\n{\"a\":1}\n```", `{"a":1}`},
		"fenced json":   {"```json\n{\"a\":1}\n```", `{"a":1}`},
		"language line": {"```\njson\n{\"a\":1}\n```", `{"a":1}`},
		"whitespace":    {"  {\"a\":1}\n", `{"a":1}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripFence(tc.in))
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	assert.Equal(t, `{"a": {"b": 2}}`, extractJSONObject(`noise {"a": {"b": 2}} trailing`))
	assert.Equal(t, `{"s": "br{ace}"}`, extractJSONObject(`x {"s": "br{ace}"} y`))
	assert.Empty(t, extractJSONObject("no object here"))
	assert.Empty(t, extractJSONObject(`{"unbalanced": 1`))
}

func TestDecodeSubagentAnswer(t *testing.T) {
	answer, err := decodeSubagentAnswer(`{"chosen_url": "https://u.example/nursing", "confidence": 0.9, "reasoning": "r", "answer": "a"}`)
	require.NoError(t, err)
	require.NotNil(t, answer.ChosenURL)
	assert.Equal(t, "https://u.example/nursing", *answer.ChosenURL)
	assert.Equal(t, 0.9, answer.Confidence)
}

func TestDecodeSubagentAnswerNullURL(t *testing.T) {
	// A null chosen_url is a valid low-confidence answer, not an error.
	answer, err := decodeSubagentAnswer(`{"chosen_url": null, "confidence": 0.1, "reasoning": "nothing fits", "answer": "no page"}`)
	require.NoError(t, err)
	assert.Nil(t, answer.ChosenURL)
}

func TestDecodeSubagentAnswerErrors(t *testing.T) {
	_, err := decodeSubagentAnswer("not json at all")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "not json at all", perr.Raw)

	_, err = decodeSubagentAnswer(`{"chosen_url": null, "confidence": 1.5, "reasoning": "", "answer": ""}`)
	require.ErrorAs(t, err, &perr)
}

func TestDecodeCritiqueVerdict(t *testing.T) {
	verdict, err := decodeCritiqueVerdict("```json\n{\"state\": \"retry\", \"justification\": \"look under admissions\", \"revised_url\": null}\n```")
	require.NoError(t, err)
	assert.Equal(t, models.VerdictRetry, verdict.State)
	assert.Equal(t, "look under admissions", verdict.Justification)

	_, err = decodeCritiqueVerdict(`{"state": "maybe", "justification": "", "revised_url": null}`)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestDecodePlannerBrief(t *testing.T) {
	brief, err := decodePlannerBrief(`{"task_brief": "find the placement page", "notes": "n"}`)
	require.NoError(t, err)
	assert.Equal(t, "find the placement page", brief.TaskBrief)

	_, err = decodePlannerBrief(`{"notes": "no brief"}`)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestAnswerRoundTrip(t *testing.T) {
	url := "https://u.example/page"
	in := models.SubagentAnswer{ChosenURL: &url, Confidence: 0.75, Reasoning: "r", Answer: "a"}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	out, err := decodeSubagentAnswer(string(b))
	require.NoError(t, err)
	assert.Equal(t, in, out)

	verdictIn := models.CritiqueVerdict{State: models.VerdictOK, Justification: "j", RevisedURL: nil}
	b, err = json.Marshal(verdictIn)
	require.NoError(t, err)
	verdictOut, err := decodeCritiqueVerdict(string(b))
	require.NoError(t, err)
	assert.Equal(t, verdictIn, verdictOut)
}
