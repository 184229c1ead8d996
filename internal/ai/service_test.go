package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"resume-studio/internal/llm"
	"resume-studio/resume/model"
)

type fakeLLM struct {
	out    string
	err    error
	prompt string
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}

func TestOptimizeReadsTextField(t *testing.T) {
	fake := &fakeLLM{out: "```json\n{\"text\":\"Led a team of 5\"}\n```"}
	svc := &Service{LLM: fake}
	out, err := svc.Optimize(context.Background(), "managed people", model.OptimizeBullet, "en")
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}
	if out != "Led a team of 5" {
		t.Fatalf("out = %q", out)
	}
	if !strings.Contains(fake.prompt, "managed people") || !strings.Contains(fake.prompt, "action verb") {
		t.Fatalf("prompt not rendered for bullet kind: %s", fake.prompt)
	}
}

func TestOptimizeValidatesInput(t *testing.T) {
	svc := &Service{LLM: &fakeLLM{}}
	if _, err := svc.Optimize(context.Background(), "  ", model.OptimizeSummary, ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := svc.Optimize(context.Background(), "x", model.OptimizeKind("poem"), ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid kind, got %v", err)
	}
}

func TestOptimizeMissingTextIsBadOutput(t *testing.T) {
	svc := &Service{LLM: &fakeLLM{out: `{"result":"x"}`}}
	if _, err := svc.Optimize(context.Background(), "x", model.OptimizeSkills, ""); !errors.Is(err, ErrBadLLMOutput) {
		t.Fatalf("expected bad output, got %v", err)
	}
}

func TestScoreNormalizesSnakeCase(t *testing.T) {
	svc := &Service{LLM: &fakeLLM{out: `{"overall_score": 64.4, "missing_keywords": ["Kafka"], "summary": "ok"}`}}
	res, err := svc.Score(context.Background(), "Go dev", "Kafka and Go")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if res.Score != 64 || res.Analysis != "ok" || len(res.MissingKeywords) != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSearchJobsTagsSourceAndSkipsUntitled(t *testing.T) {
	svc := &Service{LLM: &fakeLLM{out: `{"jobs":[{"title":"Go Dev","company":"Acme"},{"company":"NoTitle"}]}`}}
	items, err := svc.SearchJobs(context.Background(), "go")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 || items[0].Source != "ai" || items[0].Company != "Acme" {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestParseResume(t *testing.T) {
	svc := &Service{LLM: &fakeLLM{out: `{"title":"CV","personalInfo":{"fullName":"Ann"},"experience":[{"company":"Acme"}]}`}}
	doc, err := svc.ParseResume(context.Background(), "Ann, Acme")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if doc.PersonalInfo.FullName != "Ann" || len(doc.Experience) != 1 {
		t.Fatalf("unexpected doc %+v", doc)
	}
}

func TestPlaceholderProviderIsUnavailable(t *testing.T) {
	svc := NewService(nil)
	_, err := svc.Score(context.Background(), "a", "b")
	if !errors.Is(err, ErrLLMUnavailable) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	var _ llm.Client = svc.LLM
}
