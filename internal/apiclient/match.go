package apiclient

import (
	"context"
	"net/http"

	"resume-studio/internal/jobmatch"
	"resume-studio/internal/jobs"
	"resume-studio/internal/matching"
	"resume-studio/internal/shared/server/respond"
	"resume-studio/internal/templates"
	"resume-studio/resume/editor"
	"resume-studio/resume/model"
)

var (
	_ editor.Store          = (*Client)(nil)
	_ editor.Optimizer      = (*Client)(nil)
	_ jobmatch.ResumeLister = (*Client)(nil)
	_ jobmatch.Scorer       = (*Client)(nil)
)

// Optimize rewrites text with the AI endpoint.
func (c *Client) Optimize(ctx context.Context, text string, kind model.OptimizeKind, language string) (string, error) {
	var out struct {
		Text string `json:"text"`
	}
	body := map[string]string{"text": text, "kind": string(kind), "language": language}
	if err := c.do(ctx, http.MethodPost, "/ai/optimize", body, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

// SearchJobs queries stored postings.
func (c *Client) SearchJobs(ctx context.Context, query string) ([]jobs.Posting, error) {
	var out respond.Page[jobs.Posting]
	resp, err := c.request(ctx).SetQueryParam("q", query).SetResult(&out).Get("/jobs/search")
	if err := check(http.MethodGet, "/jobs/search", resp, err); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// SearchJobsAI asks the language model for postings.
func (c *Client) SearchJobsAI(ctx context.Context, query string) ([]jobs.Posting, error) {
	var out respond.Page[jobs.Posting]
	if err := c.do(ctx, http.MethodPost, "/jobs/search/ai", map[string]string{"query": query}, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Score posts a match request. The response is normalized whatever its field casing.
func (c *Client) Score(ctx context.Context, resumeText, jobDescription string) (matching.MatchResult, error) {
	raw, err := c.raw(ctx, http.MethodPost, "/match", matching.Request{ResumeText: resumeText, JobDescription: jobDescription})
	if err != nil {
		return matching.MatchResult{}, err
	}
	return matching.Normalize(raw)
}

func (c *Client) MatchReports(ctx context.Context) ([]matching.Report, error) {
	var out respond.Page[matching.Report]
	err := c.do(ctx, http.MethodGet, "/match/reports", nil, &out)
	return out.Items, err
}

// Templates lists the templates users can pick.
func (c *Client) Templates(ctx context.Context) ([]templates.Template, error) {
	var out respond.Page[templates.Template]
	err := c.do(ctx, http.MethodGet, "/templates", nil, &out)
	return out.Items, err
}

// JobMatchOptions wires the workflow to this client: stored postings first, AI search as fallback.
func (c *Client) JobMatchOptions(query string) jobmatch.Options {
	return jobmatch.Options{
		Primary:  jobmatch.SearchFunc(c.SearchJobs),
		Fallback: jobmatch.SearchFunc(c.SearchJobsAI),
		Resumes:  c,
		Scorer:   c,
		Query:    query,
	}
}
