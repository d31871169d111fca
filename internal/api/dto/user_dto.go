package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse echoes the session token for non-cookie clients.
type LoginResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// CreateUserRequest payload for admin user creation.
type CreateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// UpdateRoleRequest payload for role changes.
type UpdateRoleRequest struct {
	Role domain.Role `json:"role"`
}

// UpdateProfileRequest payload for self-service profile updates.
type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ChangePasswordRequest payload for self-service password changes.
type ChangePasswordRequest struct {
	CurrentPassword    string `json:"currentPassword"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

// UserResponse is the user record without credentials.
type UserResponse struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Role         domain.Role `json:"role"`
	ProfileImage *string     `json:"profileImage,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// UserFromDomain projects a user for responses, excluding the password
// hash.
func UserFromDomain(user *domain.User) UserResponse {
	return UserResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		ProfileImage: user.ProfileImage,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

// UsersFromDomain projects a slice of users.
func UsersFromDomain(users []domain.User) []UserResponse {
	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, UserFromDomain(&users[i]))
	}
	return result
}
