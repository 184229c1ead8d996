package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"resume-studio/internal/jobs"
	"resume-studio/internal/llm"
	"resume-studio/internal/matching"
	"resume-studio/internal/shared/metrics"
	"resume-studio/internal/shared/telemetry"
	"resume-studio/resume/model"
)

const (
	maxOptimizeChars = 8000
	maxScoreChars    = 20000
	defaultJobLimit  = 8
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrBadLLMOutput   = errors.New("llm returned unusable output")
	ErrLLMUnavailable = errors.New("llm unavailable")
)

// Service wraps the LLM with the prompts the app needs.
type Service struct {
	LLM llm.Client
}

// NewService wraps client with the transient-failure retry.
func NewService(client llm.Client) *Service {
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	return &Service{LLM: llm.WithRetry(client)}
}

// Optimize rewrites text for the given kind of resume field.
func (s *Service) Optimize(ctx context.Context, text string, kind model.OptimizeKind, language string) (string, error) {
	metrics.OptimizeRequests.Inc()
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	if len(text) > maxOptimizeChars {
		return "", fmt.Errorf("%w: text exceeds %d characters", ErrInvalidInput, maxOptimizeChars)
	}
	if _, ok := model.ParseOptimizeKind(string(kind)); !ok {
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidInput, kind)
	}

	raw, err := s.complete(ctx, llm.PromptOptimize, map[string]any{
		"Kind":     string(kind),
		"Language": strings.TrimSpace(language),
		"Text":     text,
	})
	if err != nil {
		metrics.OptimizeFailures.Inc()
		return "", err
	}
	out := strings.TrimSpace(gjson.Get(llm.ExtractJSON(raw), "text").String())
	if out == "" {
		metrics.OptimizeFailures.Inc()
		return "", fmt.Errorf("%w: missing text", ErrBadLLMOutput)
	}
	return out, nil
}

// Score asks the LLM to compare a resume with a job description.
func (s *Service) Score(ctx context.Context, resumeText, jobDescription string) (matching.MatchResult, error) {
	resumeText = strings.TrimSpace(resumeText)
	jobDescription = strings.TrimSpace(jobDescription)
	if resumeText == "" || jobDescription == "" {
		return matching.MatchResult{}, fmt.Errorf("%w: resumeText and jobDescription are required", ErrInvalidInput)
	}
	raw, err := s.complete(ctx, llm.PromptMatch, map[string]any{
		"ResumeText":     truncate(resumeText, maxScoreChars),
		"JobDescription": truncate(jobDescription, maxScoreChars),
	})
	if err != nil {
		return matching.MatchResult{}, err
	}
	res, err := matching.Normalize([]byte(llm.ExtractJSON(raw)))
	if err != nil {
		return matching.MatchResult{}, fmt.Errorf("%w: %v", ErrBadLLMOutput, err)
	}
	return res, nil
}

// SearchJobs asks the LLM for postings matching query. Results are tagged with source "ai".
func (s *Service) SearchJobs(ctx context.Context, query string) ([]jobs.Posting, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		query = "software engineer"
	}
	raw, err := s.complete(ctx, llm.PromptJobSearch, map[string]any{"Limit": defaultJobLimit, "Query": query})
	if err != nil {
		return nil, err
	}
	body := llm.ExtractJSON(raw)
	list := gjson.Get(body, "jobs")
	if !list.IsArray() {
		list = gjson.Parse(body)
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("%w: expected a jobs array", ErrBadLLMOutput)
	}

	out := []jobs.Posting{}
	for _, item := range list.Array() {
		p := jobs.Posting{
			Title:       strings.TrimSpace(item.Get("title").String()),
			Company:     strings.TrimSpace(item.Get("company").String()),
			Location:    strings.TrimSpace(item.Get("location").String()),
			Description: strings.TrimSpace(item.Get("description").String()),
			URL:         strings.TrimSpace(item.Get("url").String()),
			Salary:      strings.TrimSpace(item.Get("salary").String()),
			Source:      "ai",
		}
		if p.Title == "" {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// ParseResume turns extracted resume text into a document.
func (s *Service) ParseResume(ctx context.Context, text string) (model.ResumeDocument, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ResumeDocument{}, fmt.Errorf("%w: no text extracted", ErrInvalidInput)
	}
	raw, err := s.complete(ctx, llm.PromptParseResume, map[string]any{"Text": truncate(text, maxScoreChars)})
	if err != nil {
		return model.ResumeDocument{}, err
	}
	var doc model.ResumeDocument
	if err := json.Unmarshal([]byte(llm.ExtractJSON(raw)), &doc); err != nil {
		return model.ResumeDocument{}, fmt.Errorf("%w: %v", ErrBadLLMOutput, err)
	}
	return doc, nil
}

func (s *Service) complete(ctx context.Context, promptName string, data any) (string, error) {
	prompt, err := llm.RenderPrompt(promptName, data)
	if err != nil {
		return "", err
	}
	raw, err := s.LLM.Complete(ctx, prompt)
	if err != nil {
		telemetry.Error("ai.llm_failed", map[string]any{"prompt": promptName, "error": err})
		if errors.Is(err, llm.ErrNotImplemented) {
			return "", fmt.Errorf("%w: no provider configured", ErrLLMUnavailable)
		}
		return "", fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	return raw, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
