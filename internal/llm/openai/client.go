package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements llm.Client using OpenAI Chat Completions.
type Client struct {
	model string
	http  *resty.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a compatible endpoint.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.http.SetBaseURL(strings.TrimRight(url, "/")) }
}

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	c := &Client{
		model: model,
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetAuthToken(apiKey).
			SetHeader("Content-Type", "application/json").
			SetTimeout(120 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

const systemPrompt = "You are a careful assistant for a resume builder. Respond with JSON only. No markdown."

// Complete returns the raw model response for the prompt.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: responseFormat{Type: "json_object"},
	}
	if !isGPT5(c.model) {
		temp := float32(0.2)
		reqBody.Temperature = &temp
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(reqBody).
		Post("/chat/completions")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return "", fmt.Errorf("openai request timeout: %w", err)
		}
		return "", err
	}

	body := resp.String()
	if msg := gjson.Get(body, "error.message"); msg.Exists() {
		return "", fmt.Errorf("openai http status %d: %s (%s)", resp.StatusCode(), msg.String(), gjson.Get(body, "error.type").String())
	}
	if resp.IsError() {
		return "", fmt.Errorf("openai http status %d: %s", resp.StatusCode(), strings.TrimSpace(body))
	}
	content := strings.TrimSpace(gjson.Get(body, "choices.0.message.content").String())
	if content == "" {
		return "", fmt.Errorf("openai response empty content")
	}
	return content, nil
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}
