package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// OpenAIClient talks to a chat-completions endpoint. Kept for
// OpenAI-compatible gateways; usage comes back as prompt/completion
// token counts with no cost figure.
type OpenAIClient struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration

	httpClient *http.Client
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     *int `json:"prompt_tokens"`
		CompletionTokens *int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (*Response, error) {
	body := map[string]any{
		"model":       c.Model,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"temperature": 0.2,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.APIKey}
	base := c.BaseURL
	if base == "" {
		base = "https://api.openai.com"
	}
	url := strings.TrimRight(base, "/") + "/v1/chat/completions"
	raw, err := postJSON(ctx, c.client(), "openai", url, headers, body)
	if err != nil {
		return nil, err
	}
	var parsed openAIResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("openai response has no choices")
	}
	resp := &Response{Text: strings.TrimSpace(parsed.Choices[0].Message.Content), Raw: raw}
	resp.Usage.InputTokens = parsed.Usage.PromptTokens
	resp.Usage.OutputTokens = parsed.Usage.CompletionTokens
	return resp, nil
}

func (c *OpenAIClient) client() *http.Client {
	if c.httpClient == nil {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c.httpClient
}
