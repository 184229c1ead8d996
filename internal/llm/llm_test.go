package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```":            `{"a":1}`,
		"Sure! Here it is: {\"a\":1} thanks": `{"a":1}`,
		"[1,2]":                              `[1,2]`,
		"no json":                            "no json",
	}
	for in, want := range cases {
		if got := ExtractJSON(in); got != want {
			t.Fatalf("ExtractJSON(%q) = %q want %q", in, got, want)
		}
	}
}

func TestShouldRetry(t *testing.T) {
	retry := []error{
		context.DeadlineExceeded,
		errors.New("openai http status 502: bad gateway"),
		errors.New("read tcp: connection reset by peer"),
		errors.New("gemini http status 429: quota"),
	}
	for _, err := range retry {
		if !ShouldRetry(err) {
			t.Fatalf("expected retry for %v", err)
		}
	}
	noRetry := []error{nil, ErrNotImplemented, context.Canceled, errors.New("openai http status 400: bad request")}
	for _, err := range noRetry {
		if ShouldRetry(err) {
			t.Fatalf("unexpected retry for %v", err)
		}
	}
}

type flakyClient struct {
	calls int
	errs  []error
}

func (f *flakyClient) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return "ok", nil
}

func TestWithRetryRetriesOnceOnTransientError(t *testing.T) {
	base := &flakyClient{errs: []error{fmt.Errorf("openai http status 503: down")}}
	c := retrying{base: base, delay: time.Millisecond}
	out, err := c.Complete(context.Background(), "p")
	if err != nil || out != "ok" || base.calls != 2 {
		t.Fatalf("out=%q err=%v calls=%d", out, err, base.calls)
	}
}

func TestWithRetryDoesNotRetryPermanentError(t *testing.T) {
	base := &flakyClient{errs: []error{errors.New("openai http status 401: bad key")}}
	c := retrying{base: base, delay: time.Millisecond}
	if _, err := c.Complete(context.Background(), "p"); err == nil || base.calls != 1 {
		t.Fatalf("err=%v calls=%d", err, base.calls)
	}
}

func TestRenderPrompt(t *testing.T) {
	out, err := RenderPrompt(PromptOptimize, map[string]any{"Kind": "summary", "Language": "en", "Text": "I write Go"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "I write Go") {
		t.Fatalf("prompt missing text: %s", out)
	}
	if _, err := RenderPrompt("missing.tmpl", nil); err == nil {
		t.Fatalf("expected error for unknown prompt")
	}
}
