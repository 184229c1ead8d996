package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"resume-studio/internal/account"
	"resume-studio/internal/session"
	"resume-studio/internal/shared/server/respond"
	"resume-studio/internal/users"
)

const apiPrefix = "/api/v1"

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api status %d %s: %s", e.Status, e.Code, e.Message)
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Client talks to the resume-studio backend. Every request carries the session token when one is set.
type Client struct {
	http    *resty.Client
	session *session.Store
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// New returns a client for baseURL. sess may be nil for anonymous use.
func New(baseURL string, sess *session.Store, opts ...Option) *Client {
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")+apiPrefix).
			SetHeader("Accept", "application/json").
			SetTimeout(60 * time.Second),
		session: sess,
	}
	c.installAuth()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) installAuth() {
	c.http.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		if c.session == nil {
			return nil
		}
		if token := c.session.Token(); token != "" {
			r.SetAuthToken(token)
		}
		return nil
	})
}

// Login exchanges credentials for a token and stores it in the session.
func (c *Client) Login(ctx context.Context, email, password string) (account.Session, error) {
	var out account.Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return account.Session{}, err
	}
	return out, c.remember(out.Token)
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, in users.NewUser) (account.Session, error) {
	var out account.Session
	if err := c.do(ctx, http.MethodPost, "/auth/register", in, &out); err != nil {
		return account.Session{}, err
	}
	return out, c.remember(out.Token)
}

// Logout forgets the stored token.
func (c *Client) Logout() error {
	if c.session == nil {
		return nil
	}
	return c.session.Clear()
}

// Me returns the signed-in user.
func (c *Client) Me(ctx context.Context) (users.User, error) {
	var out users.User
	err := c.do(ctx, http.MethodGet, "/me", nil, &out)
	return out, err
}

func (c *Client) remember(token string) error {
	if c.session == nil {
		return nil
	}
	return c.session.Set(token)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx)
}

// do sends body as JSON and decodes a 2xx response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.request(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, path)
	return check(method, path, resp, err)
}

// raw sends body as JSON and returns the undecoded response body.
func (c *Client) raw(ctx context.Context, method, path string, body any) ([]byte, error) {
	req := c.request(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err := check(method, path, resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func check(method, path string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if !resp.IsError() {
		return nil
	}
	return decodeError(resp.StatusCode(), resp.Body())
}

func decodeError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	if gjson.ValidBytes(body) {
		env := gjson.GetBytes(body, "error")
		apiErr.Code = env.Get("code").String()
		apiErr.Message = env.Get("message").String()
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
