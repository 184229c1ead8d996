package llm

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed prompts/*.tmpl
var promptFiles embed.FS

var prompts = template.Must(template.New("prompts").ParseFS(promptFiles, "prompts/*.tmpl"))

// Prompt names.
const (
	PromptOptimize    = "optimize.tmpl"
	PromptMatch       = "match.tmpl"
	PromptJobSearch   = "job_search.tmpl"
	PromptParseResume = "parse_resume.tmpl"
)

// RenderPrompt executes the named prompt template.
func RenderPrompt(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
