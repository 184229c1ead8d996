package users

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"resume-studio/internal/shared/auth"
	"resume-studio/internal/shared/telemetry"
)

type Service struct {
	Repo Repo
	// AdminEmails are promoted to admin when they first sign in.
	AdminEmails []string
}

func NewService(repo Repo, adminEmails []string) *Service {
	return &Service{Repo: repo, AdminEmails: adminEmails}
}

// NewUser describes an account to create.
type NewUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role"`
}

// Register creates a password account with the default role.
func (s *Service) Register(ctx context.Context, in NewUser) (User, error) {
	in.Role = ""
	return s.create(ctx, in)
}

// CreateByAdmin creates an account with an explicit role.
func (s *Service) CreateByAdmin(ctx context.Context, in NewUser) (User, error) {
	if in.Role != "" && !in.Role.Valid() {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, in.Role)
	}
	return s.create(ctx, in)
}

func (s *Service) create(ctx context.Context, in NewUser) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	email := NormalizeEmail(in.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return User{}, fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, auth.ErrWeakPassword) {
			return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, auth.MinPasswordLength)
		}
		return User{}, err
	}
	role := in.Role
	if role == "" {
		role = s.defaultRole(email)
	}
	user, err := s.Repo.Create(ctx, User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(in.FullName),
		Role:         role,
		Status:       StatusActive,
		PasswordHash: hash,
	})
	if err != nil {
		return User{}, err
	}
	telemetry.Info("users.created", map[string]any{"user_id": user.ID, "role": string(user.Role)})
	return user, nil
}

// Authenticate checks a password login.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	user, err := s.Repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return User{}, ErrInvalidCredentials
	}
	if user.Status == StatusDisabled {
		return User{}, ErrDisabled
	}
	return user, nil
}

// UpsertFromOAuth persists an identity from an external provider.
func (s *Service) UpsertFromOAuth(ctx context.Context, email, fullName, pictureURL string) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	email = NormalizeEmail(email)
	if email == "" {
		return User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	user, err := s.Repo.Upsert(ctx, User{
		ID:         uuid.NewString(),
		Email:      email,
		FullName:   strings.TrimSpace(fullName),
		Role:       s.defaultRole(email),
		Status:     StatusActive,
		PictureURL: pictureURL,
	})
	if err != nil {
		return User{}, err
	}
	if user.Status == StatusDisabled {
		return User{}, ErrDisabled
	}
	return user, nil
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]User, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Repo.List(ctx, limit, offset)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	return s.Repo.Count(ctx)
}

// SetRole changes a user's role. Admins cannot demote themselves.
func (s *Service) SetRole(ctx context.Context, actorID, userID string, role Role) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	if !role.Valid() {
		return User{}, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}
	if actorID == userID && role != RoleAdmin {
		return User{}, fmt.Errorf("%w: cannot demote yourself", ErrForbidden)
	}
	return s.Repo.UpdateRole(ctx, userID, role)
}

// SetStatus enables or disables a user. Admins cannot disable themselves.
func (s *Service) SetStatus(ctx context.Context, actorID, userID string, status Status) (User, error) {
	if err := s.ready(); err != nil {
		return User{}, err
	}
	if !status.Valid() {
		return User{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if actorID == userID && status == StatusDisabled {
		return User{}, fmt.Errorf("%w: cannot disable yourself", ErrForbidden)
	}
	return s.Repo.UpdateStatus(ctx, userID, status)
}

// Delete removes a user and, through the schema, everything they own.
func (s *Service) Delete(ctx context.Context, actorID, userID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if actorID == userID {
		return fmt.Errorf("%w: cannot delete yourself", ErrForbidden)
	}
	if err := s.Repo.Delete(ctx, userID); err != nil {
		return err
	}
	telemetry.Info("users.deleted", map[string]any{"user_id": userID, "actor_id": actorID})
	return nil
}

func (s *Service) defaultRole(email string) Role {
	for _, admin := range s.AdminEmails {
		if NormalizeEmail(admin) == email {
			return RoleAdmin
		}
	}
	return RoleUser
}

func (s *Service) ready() error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	return nil
}
