package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"resume-studio/internal/admin"
	"resume-studio/internal/console"
	"resume-studio/internal/crawler"
	"resume-studio/internal/jobs"
	"resume-studio/internal/shared/server/respond"
	"resume-studio/internal/templates"
	"resume-studio/internal/users"
)

var _ console.AdminAPI = (*Client)(nil)

func adminPath(parts ...string) string {
	p := "/admin"
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

func (c *Client) Stats(ctx context.Context) (admin.Stats, error) {
	var out admin.Stats
	err := c.do(ctx, http.MethodGet, adminPath("stats"), nil, &out)
	return out, err
}

func (c *Client) ListUsers(ctx context.Context) ([]users.User, error) {
	var out respond.Page[users.User]
	resp, err := c.request(ctx).SetQueryParam("pageSize", "100").SetResult(&out).Get(adminPath("users"))
	if err := check(http.MethodGet, adminPath("users"), resp, err); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) CreateUser(ctx context.Context, in users.NewUser) (users.User, error) {
	var out users.User
	err := c.do(ctx, http.MethodPost, adminPath("users"), in, &out)
	return out, err
}

func (c *Client) SetUserRole(ctx context.Context, id string, role users.Role) (users.User, error) {
	var out users.User
	err := c.do(ctx, http.MethodPatch, adminPath("users", id, "role"), map[string]users.Role{"role": role}, &out)
	return out, err
}

func (c *Client) SetUserStatus(ctx context.Context, id string, status users.Status) (users.User, error) {
	var out users.User
	err := c.do(ctx, http.MethodPatch, adminPath("users", id, "status"), map[string]users.Status{"status": status}, &out)
	return out, err
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, adminPath("users", id), nil, nil)
}

func (c *Client) ListJobs(ctx context.Context) ([]jobs.Posting, error) {
	var out respond.Page[jobs.Posting]
	resp, err := c.request(ctx).SetQueryParam("pageSize", "100").SetResult(&out).Get(adminPath("jobs"))
	if err := check(http.MethodGet, adminPath("jobs"), resp, err); err != nil {
		return nil, err
	}
	return out.Items, nil
}

func (c *Client) DeleteJob(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, adminPath("jobs", id), nil, nil)
}

func (c *Client) ListCrawlerTasks(ctx context.Context) ([]crawler.Task, error) {
	var out respond.Page[crawler.Task]
	err := c.do(ctx, http.MethodGet, adminPath("crawler", "tasks"), nil, &out)
	return out.Items, err
}

func (c *Client) CreateCrawlerTask(ctx context.Context, in crawler.NewTask) (crawler.Task, error) {
	var out crawler.Task
	err := c.do(ctx, http.MethodPost, adminPath("crawler", "tasks"), in, &out)
	return out, err
}

func (c *Client) SetCrawlerTaskStatus(ctx context.Context, id string, status crawler.Status) (crawler.Task, error) {
	var out crawler.Task
	err := c.do(ctx, http.MethodPatch, adminPath("crawler", "tasks", id, "status"), map[string]crawler.Status{"status": status}, &out)
	return out, err
}

func (c *Client) DeleteCrawlerTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, adminPath("crawler", "tasks", id), nil, nil)
}

// RunCrawlerTask only queues the crawl; it returns before the crawl runs.
func (c *Client) RunCrawlerTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, adminPath("crawler", "tasks", id, "run"), nil, nil)
}

func (c *Client) ListTemplates(ctx context.Context) ([]templates.Template, error) {
	var out respond.Page[templates.Template]
	err := c.do(ctx, http.MethodGet, adminPath("templates"), nil, &out)
	return out.Items, err
}

func (c *Client) CreateTemplate(ctx context.Context, in templates.NewTemplate) (templates.Template, error) {
	var out templates.Template
	err := c.do(ctx, http.MethodPost, adminPath("templates"), in, &out)
	return out, err
}

func (c *Client) SetTemplateStatus(ctx context.Context, id string, status templates.Status) (templates.Template, error) {
	var out templates.Template
	err := c.do(ctx, http.MethodPatch, adminPath("templates", id, "status"), map[string]templates.Status{"status": status}, &out)
	return out, err
}

func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, adminPath("templates", id), nil, nil)
}
