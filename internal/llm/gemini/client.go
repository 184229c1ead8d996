package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// Client implements llm.Client on the Gemini API.
type Client struct {
	model    string
	generate func(ctx context.Context, model, prompt string) (string, error)
}

// NewClient builds a Gemini client for the given API key and model.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.5-flash"
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{
		model: model,
		generate: func(ctx context.Context, model, prompt string) (string, error) {
			resp, err := gc.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
				Temperature:      genai.Ptr(float32(0.2)),
				ResponseMIMEType: "application/json",
			})
			if err != nil {
				return "", err
			}
			if resp == nil || len(resp.Candidates) == 0 {
				return "", fmt.Errorf("gemini response has no candidates")
			}
			return resp.Text(), nil
		},
	}, nil
}

// Complete sends prompt and returns the text of the first candidate.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := c.generate(ctx, c.model, prompt)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("gemini http status %d: %s", apiErr.Code, apiErr.Message)
		}
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("gemini response empty content")
	}
	return out, nil
}
