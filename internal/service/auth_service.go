package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// AuthService coordinates login, logout and admin user creation.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	revoker    auth.TokenRevoker
	bcryptCost int
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Revoker  auth.TokenRevoker
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.SessionTTL()),
		revoker:    deps.Revoker,
		bcryptCost: cfg.BcryptCost,
	}
}

// Login validates credentials and issues a session token carrying the
// user's id and role.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	if email == "" || password == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("email and password required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewNotFound("user", nil)
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid password")
	}

	token, expiresAt, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}
	return user, token, expiresAt, nil
}

// CreateUser registers a new account with a chosen role, defaulting to
// employee. Admin-only by route gating.
func (s *AuthService) CreateUser(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return nil, apperrors.NewValidationError("name, email and password required", nil)
	}
	if role == "" {
		role = domain.RoleEmployee
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("unrecognized role", map[string]any{"role": role})
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("user already exists", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Logout revokes the presented session token, best-effort. Logout never
// fails: an unparseable token leaves nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, tokenStr string) {
	if s.revoker == nil || tokenStr == "" {
		return
	}
	claims, err := s.tokenMgr.ParseToken(tokenStr)
	if err != nil {
		return
	}
	_ = s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// EnsureAdmin seeds the bootstrap admin account when configured and not
// already present.
func (s *AuthService) EnsureAdmin(ctx context.Context, seed config.SeedConfig) (*domain.User, error) {
	if seed.AdminEmail == "" || seed.AdminPassword == "" {
		return nil, nil
	}
	if existing, err := s.users.GetByEmail(ctx, seed.AdminEmail); err == nil {
		return existing, nil
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}
	return s.CreateUser(ctx, seed.AdminName, seed.AdminEmail, seed.AdminPassword, domain.RoleAdmin)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
