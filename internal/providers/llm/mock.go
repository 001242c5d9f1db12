package llm

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/example/nav-agent/internal/models"
)

// MockClient returns scripted responses in order. Tests use Enqueue to
// line up answers; once the script is exhausted (or when empty) every
// call yields a canned null answer, so the loop still terminates when
// the mock provider is selected for a dry run.
type MockClient struct {
	mu      sync.Mutex
	script  []mockStep
	calls   int
	prompts []string
}

type mockStep struct {
	text string
	err  error
}

const mockFallback = `{"chosen_url": null, "confidence": 0, "reasoning": "mock provider", "answer": "mock provider"}`

// Enqueue appends a scripted response text.
func (m *MockClient) Enqueue(text string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{text: text})
	return m
}

// EnqueueJSON marshals v and appends it as a scripted response.
func (m *MockClient) EnqueueJSON(v any) *MockClient {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return m.Enqueue(string(b))
}

// EnqueueError appends a scripted transport failure.
func (m *MockClient) EnqueueError(msg string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{err: errors.New(msg)})
	return m
}

// Calls returns how many times Complete has been invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Prompts returns the prompts received so far, in order.
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func (m *MockClient) Complete(ctx context.Context, prompt string) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if len(m.script) == 0 {
		return mockResponse(mockFallback), nil
	}
	step := m.script[0]
	m.script = m.script[1:]
	if step.err != nil {
		return nil, step.err
	}
	return mockResponse(step.text), nil
}

func mockResponse(text string) *Response {
	in, out := 10, 5
	raw, _ := json.Marshal(map[string]any{"mock": true, "text": text})
	return &Response{
		Text:  text,
		Usage: models.Usage{InputTokens: &in, OutputTokens: &out},
		Raw:   raw,
	}
}
