package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/emoji_shop/internal/events"
	"github.com/Skotchmaster/emoji_shop/internal/hash"
	"github.com/Skotchmaster/emoji_shop/internal/logging"
	"github.com/Skotchmaster/emoji_shop/internal/models"
	"github.com/Skotchmaster/emoji_shop/internal/repo"
	"github.com/Skotchmaster/emoji_shop/internal/tokens"
)

const (
	invalidCredentials = "Invalid email or password"
	defaultTokenTTL    = 24 * time.Hour
)

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	TokenTTL  time.Duration
	Events    events.Publisher
	Now       func() time.Time
}

type RegisterInput struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user, err := s.createUser(ctx, in, models.RoleCustomer)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, events.TopicUsers, user.ID.String(), events.UserRegistered, user)

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, newError(ErrValidation, "email and password are required")
	}

	user, err := s.Repo.UserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newError(ErrUnauthorized, invalidCredentials)
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, in.Password) {
		return nil, newError(ErrUnauthorized, invalidCredentials)
	}

	token, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// VerifyToken resolves a bearer token to the current user record.
func (s *AuthService) VerifyToken(ctx context.Context, token string) (*models.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, newError(ErrUnauthorized, "Missing or invalid Authorization header")
	}

	claims, err := tokens.AccessClaimsFromToken(token, s.JWTSecret)
	if err != nil {
		return nil, newError(ErrUnauthorized, "Invalid or expired token")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, newError(ErrUnauthorized, "Invalid or expired token")
	}

	user, err := s.Repo.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, newError(ErrUnauthorized, "User not found")
		}
		return nil, err
	}
	return user, nil
}

// CreateAdmin registers another admin on behalf of an existing one.
func (s *AuthService) CreateAdmin(ctx context.Context, actor *models.User, in RegisterInput) (*models.User, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	user, err := s.createUser(ctx, in, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.Events, events.TopicUsers, user.ID.String(), events.AdminCreated, map[string]any{
		"user":      user,
		"createdBy": actor.ID,
	})
	return user, nil
}

// EnsureAdmin seeds the first admin account. An existing account with the
// same email is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, in RegisterInput) (*models.User, error) {
	l := logging.FromContext(ctx)

	existing, err := s.Repo.UserByEmail(ctx, normalizeEmail(in.Email))
	switch {
	case err == nil:
		if existing.Role != models.RoleAdmin {
			l.Warn("seed_admin_skipped", "reason", "email belongs to a non-admin user", "email", existing.Email)
		}
		return existing, nil
	case !errors.Is(err, repo.ErrNotFound):
		return nil, err
	}

	user, err := s.createUser(ctx, in, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	l.Info("seed_admin_created", "email", user.Email, "id", user.ID)
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, in RegisterInput, role models.Role) (*models.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.Repo.UserByEmail(ctx, in.Email); err == nil {
		return nil, newError(ErrConflict, "Email already in use")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := hash.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, newError(ErrConflict, "Email already in use")
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (string, error) {
	ttl := s.TokenTTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return tokens.NewAccessToken(s.JWTSecret, user.ID.String(), string(user.Role), ttl, s.now())
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
