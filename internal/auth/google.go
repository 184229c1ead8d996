package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"resume-studio/internal/account"
	"resume-studio/internal/shared/server/respond"
	"resume-studio/internal/shared/telemetry"
	"resume-studio/internal/users"
)

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var errUnverifiedEmail = errors.New("google account email is not verified")

// GoogleConfig holds the OAuth client registration and where the UI expects the token.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	UIRedirect   string
}

// GoogleService signs users in with Google and hands the UI one of our own tokens.
type GoogleService struct {
	oauthConfig *oauth2.Config
	uiRedirect  string
	states      *stateStore
	accounts    *account.Service
	profile     func(ctx context.Context, token *oauth2.Token) (googleProfile, error)
}

func NewGoogleService(cfg GoogleConfig, accounts *account.Service) *GoogleService {
	s := &GoogleService{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		uiRedirect: cfg.UIRedirect,
		states:     newStateStore(5*time.Minute, time.Now),
		accounts:   accounts,
	}
	s.profile = s.fetchProfile
	return s
}

func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/login", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusServiceUnavailable, "auth_not_configured", "Google sign-in is not configured", nil)
		return
	}
	c.Redirect(http.StatusFound, s.oauthConfig.AuthCodeURL(s.states.issue()))
}

func (s *GoogleService) callback(c *gin.Context) {
	state, code := c.Query("state"), c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	if !s.states.consume(state) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		telemetry.Warn("auth.google.exchange_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}
	profile, err := s.profile(ctx, token)
	switch {
	case errors.Is(err, errUnverifiedEmail):
		respond.Error(c, http.StatusForbidden, "email_unverified", err.Error(), nil)
		return
	case err != nil:
		telemetry.Error("auth.google.profile_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}

	user, err := s.accounts.Users.UpsertFromOAuth(ctx, profile.Email, profile.Name, profile.Picture)
	if err != nil {
		users.WriteError(c, err)
		return
	}
	session, err := s.accounts.IssueFor(user)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	target, err := withTokenFragment(s.uiRedirect, session.Token)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "UI_REDIRECT_URL is invalid", nil)
		return
	}
	telemetry.Info("auth.google.login", map[string]any{"user_id": user.ID})
	c.Redirect(http.StatusFound, target)
}

func (s *GoogleService) configured() bool {
	return s.oauthConfig.ClientID != "" && s.oauthConfig.ClientSecret != "" && s.oauthConfig.RedirectURL != ""
}

type googleProfile struct {
	Sub     string
	Email   string
	Name    string
	Picture string
}

func (s *GoogleService) fetchProfile(ctx context.Context, token *oauth2.Token) (googleProfile, error) {
	resp, err := resty.NewWithClient(s.oauthConfig.Client(ctx, token)).R().
		SetContext(ctx).
		Get(userInfoURL)
	if err != nil {
		return googleProfile{}, err
	}
	if resp.IsError() {
		return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode())
	}
	return parseProfile(resp.Body())
}

// parseProfile accepts both the v2 ("id", "verified_email") and OIDC ("sub", "email_verified") shapes.
func parseProfile(body []byte) (googleProfile, error) {
	if !gjson.ValidBytes(body) {
		return googleProfile{}, errors.New("userinfo: invalid json")
	}
	doc := gjson.ParseBytes(body)
	p := googleProfile{
		Sub:     firstString(doc, "sub", "id"),
		Email:   doc.Get("email").String(),
		Name:    doc.Get("name").String(),
		Picture: doc.Get("picture").String(),
	}
	if p.Sub == "" || p.Email == "" {
		return googleProfile{}, errors.New("userinfo: missing subject or email")
	}
	for _, key := range []string{"verified_email", "email_verified"} {
		if v := doc.Get(key); v.Exists() && !v.Bool() {
			return googleProfile{}, errUnverifiedEmail
		}
	}
	return p, nil
}

func firstString(doc gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := doc.Get(k).String(); v != "" {
			return v
		}
	}
	return ""
}

// stateStore remembers issued OAuth states until used or expired.
type stateStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]time.Time
}

func newStateStore(ttl time.Duration, now func() time.Time) *stateStore {
	return &stateStore{ttl: ttl, now: now, items: make(map[string]time.Time)}
}

func (s *stateStore) issue() string {
	state := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.items {
		if now.After(exp) {
			delete(s.items, k)
		}
	}
	s.items[state] = now.Add(s.ttl)
	return state
}

func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.items[state]
	delete(s.items, state)
	return ok && !s.now().After(exp)
}

func (s *stateStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// withTokenFragment puts the token in the fragment so it never reaches server logs or Referer headers.
func withTokenFragment(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	u.Fragment = url.Values{"token": {token}}.Encode()
	return u.String(), nil
}
