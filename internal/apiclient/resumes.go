package apiclient

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"resume-studio/internal/shared/server/respond"
	"resume-studio/resume/export"
	"resume-studio/resume/model"
)

// ListResumes returns one page of the signed-in user's resumes.
func (c *Client) ListResumes(ctx context.Context, page, pageSize int) ([]model.ResumeDocument, error) {
	var out respond.Page[model.ResumeDocument]
	req := c.request(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParam("pageSize", strconv.Itoa(pageSize)).
		SetResult(&out)
	resp, err := req.Get("/resumes")
	if err := check(http.MethodGet, "/resumes", resp, err); err != nil {
		return nil, err
	}
	if out.Items == nil {
		out.Items = []model.ResumeDocument{}
	}
	return out.Items, nil
}

func (c *Client) GetResume(ctx context.Context, id string) (model.ResumeDocument, error) {
	var out model.ResumeDocument
	err := c.do(ctx, http.MethodGet, resumePath(id), nil, &out)
	return out, err
}

// Create stores a new resume. The returned id is assigned by the server.
func (c *Client) Create(ctx context.Context, doc model.ResumeDocument) (model.ResumeDocument, error) {
	var out model.ResumeDocument
	err := c.do(ctx, http.MethodPost, "/resumes", doc, &out)
	return out, err
}

// Update replaces a resume. An empty status keeps the stored one.
func (c *Client) Update(ctx context.Context, doc model.ResumeDocument, status model.Status) (model.ResumeDocument, error) {
	var out model.ResumeDocument
	body := map[string]any{"document": doc, "status": status}
	err := c.do(ctx, http.MethodPut, resumePath(doc.ID), body, &out)
	return out, err
}

// DeleteResume reports whether the resume was removed.
func (c *Client) DeleteResume(ctx context.Context, id string) (bool, error) {
	if err := c.do(ctx, http.MethodDelete, resumePath(id), nil, nil); err != nil {
		if StatusOf(err) == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) Duplicate(ctx context.Context, id string) (model.ResumeDocument, error) {
	var out model.ResumeDocument
	err := c.do(ctx, http.MethodPost, resumePath(id)+"/duplicate", nil, &out)
	return out, err
}

// Export downloads a rendered resume.
func (c *Client) Export(ctx context.Context, id string, format export.Format) (export.Artifact, error) {
	path := resumePath(id) + "/export"
	resp, err := c.request(ctx).
		SetQueryParam("format", string(format)).
		SetHeader("Accept", "*/*").
		Get(path)
	if err := check(http.MethodGet, path, resp, err); err != nil {
		return export.Artifact{}, err
	}
	art := export.Artifact{
		Format:      format,
		ContentType: resp.Header().Get("Content-Type"),
		FileName:    fmt.Sprintf("%s.%s", id, format),
		Body:        resp.Body(),
	}
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil && params["filename"] != "" {
		art.FileName = params["filename"]
	}
	return art, nil
}

// Import uploads a PDF or DOCX and returns the resume parsed from it.
func (c *Client) Import(ctx context.Context, fileName string, body io.Reader) (model.ResumeDocument, error) {
	var out model.ResumeDocument
	resp, err := c.request(ctx).
		SetFileReader("file", fileName, body).
		SetResult(&out).
		Post("/resumes/import")
	if err := check(http.MethodPost, "/resumes/import", resp, err); err != nil {
		return model.ResumeDocument{}, err
	}
	return out, nil
}

func resumePath(id string) string {
	return "/resumes/" + url.PathEscape(id)
}
