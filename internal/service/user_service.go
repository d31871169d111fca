package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// UserService covers user administration and self-service profile
// operations. Accounts are never hard-deleted.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// ListAll returns every user; callers must strip credentials before
// serialization.
func (s *UserService) ListAll(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ListSupportAgents returns users holding the support role.
func (s *UserService) ListSupportAgents(ctx context.Context) ([]domain.User, error) {
	agents, err := s.users.ListByRole(ctx, domain.RoleSupport)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return agents, nil
}

// UpdateRole sets a user's role to one of the recognized values.
func (s *UserService) UpdateRole(ctx context.Context, userID string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role provided", map[string]any{"role": role})
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateProfile changes the caller's own name and email.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name, email string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return nil, apperrors.NewValidationError("name and email are required", nil)
	}
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.Email = email
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ChangePassword verifies the current password before storing the new
// hash.
func (s *UserService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword, confirmNewPassword string) error {
	if currentPassword == "" || newPassword == "" || confirmNewPassword == "" {
		return apperrors.NewValidationError("all password fields are required", nil)
	}
	if newPassword != confirmNewPassword {
		return apperrors.NewValidationError("new passwords do not match", nil)
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		return apperrors.NewUnauthorized("current password is incorrect")
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}

// SetProfileImage stores the uploaded image reference on the user.
func (s *UserService) SetProfileImage(ctx context.Context, userID, imageRef string) (*domain.User, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.ProfileImage = &imageRef
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

func (s *UserService) getUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
