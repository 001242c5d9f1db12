package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// AnthropicClient talks to an anthropic-messages endpoint. The eval
// proxy speaks this dialect and annotates responses with a cost figure,
// so this is the default provider.
type AnthropicClient struct {
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration

	httpClient *http.Client
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  *int `json:"input_tokens"`
		OutputTokens *int `json:"output_tokens"`
	} `json:"usage"`
	// Proxy extensions; absent when talking to the upstream API.
	TotalCostUSD  *float64 `json:"total_cost_usd"`
	DurationAPIMS *int64   `json:"duration_api_ms"`
}

func (c *AnthropicClient) Complete(ctx context.Context, prompt string) (*Response, error) {
	body := map[string]any{
		"model":      c.Model,
		"max_tokens": c.maxTokens(),
		"messages": []map[string]any{{
			"role":    "user",
			"content": []map[string]string{{"type": "text", "text": prompt}},
		}},
	}
	headers := map[string]string{
		"x-api-key":         c.APIKey,
		"anthropic-version": "2023-06-01",
	}
	url := strings.TrimRight(c.BaseURL, "/") + "/v1/messages"
	raw, err := postJSON(ctx, c.client(), "anthropic", url, headers, body)
	if err != nil {
		return nil, err
	}
	var parsed anthropicResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}
	var b strings.Builder
	for _, part := range parsed.Content {
		if part.Type == "text" {
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return nil, errors.New("anthropic response has no text content")
	}
	resp := &Response{Text: text, Raw: raw}
	resp.Usage.InputTokens = parsed.Usage.InputTokens
	resp.Usage.OutputTokens = parsed.Usage.OutputTokens
	resp.Usage.CostUSD = parsed.TotalCostUSD
	resp.Usage.DurationMS = parsed.DurationAPIMS
	return resp, nil
}

func (c *AnthropicClient) maxTokens() int {
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 800
}

func (c *AnthropicClient) client() *http.Client {
	if c.httpClient == nil {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	return c.httpClient
}
