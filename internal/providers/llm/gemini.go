package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient wraps the official generative-ai SDK. It owns the
// underlying SDK client; callers release it with Close.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient builds a client for the named model.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &GeminiClient{client: c, model: c.GenerativeModel(model)}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string) (*Response, error) {
	result, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, err
	}
	text := firstText(result)
	if text == "" {
		return nil, errors.New("gemini response has no text candidates")
	}
	raw, _ := json.Marshal(result)
	resp := &Response{Text: text, Raw: raw}
	if um := result.UsageMetadata; um != nil {
		in := int(um.PromptTokenCount)
		out := int(um.CandidatesTokenCount)
		resp.Usage.InputTokens = &in
		resp.Usage.OutputTokens = &out
	}
	return resp, nil
}

func firstText(r *genai.GenerateContentResponse) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				return strings.TrimSpace(string(t))
			}
		}
	}
	return ""
}
