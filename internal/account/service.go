package account

import (
	"context"
	"errors"

	"resume-studio/internal/shared/auth"
	"resume-studio/internal/users"
)

// Session is what a successful login returns to the client.
type Session struct {
	Token string     `json:"token"`
	User  users.User `json:"user"`
}

// Service turns verified identities into bearer tokens.
type Service struct {
	Users  *users.Service
	Tokens *auth.Issuer
}

func NewService(userSvc *users.Service, tokens *auth.Issuer) *Service {
	return &Service{Users: userSvc, Tokens: tokens}
}

func (s *Service) Register(ctx context.Context, in users.NewUser) (Session, error) {
	user, err := s.Users.Register(ctx, in)
	if err != nil {
		return Session{}, err
	}
	return s.IssueFor(user)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.Users.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	return s.IssueFor(user)
}

// IssueFor signs a token carrying the user's id, email and role.
func (s *Service) IssueFor(user users.User) (Session, error) {
	if s.Tokens == nil {
		return Session{}, errors.New("token issuer not configured")
	}
	claims := auth.Claims{
		Email:   user.Email,
		Name:    user.FullName,
		Picture: user.PictureURL,
		Role:    string(user.Role),
	}
	claims.Subject = user.ID
	token, err := s.Tokens.Sign(claims)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, User: user}, nil
}

// Me loads the current user, rejecting accounts disabled after the token was issued.
func (s *Service) Me(ctx context.Context, userID string) (users.User, error) {
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return users.User{}, err
	}
	if user.Status == users.StatusDisabled {
		return users.User{}, users.ErrDisabled
	}
	return user, nil
}
