package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/storage"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// UsersHandler exposes user administration and profile endpoints.
type UsersHandler struct {
	users  *service.UserService
	images storage.ImageStore
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(userService *service.UserService, images storage.ImageStore) *UsersHandler {
	return &UsersHandler{users: userService, images: images}
}

// Me handles GET /users/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.UserFromDomain(principal.User)})
}

// List handles GET /users (admin only by route gating).
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.ListAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UsersFromDomain(users)})
}

// ListSupportAgents handles GET /users/support-agents (admin only).
func (h *UsersHandler) ListSupportAgents(c *fiber.Ctx) error {
	agents, err := h.users.ListSupportAgents(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UsersFromDomain(agents)})
}

// UpdateRole handles PATCH /users/:id/role (admin only).
func (h *UsersHandler) UpdateRole(c *fiber.Ctx) error {
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.users.UpdateRole(c.Context(), c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserFromDomain(user)})
}

// UpdateProfile handles PUT /users/profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, err := h.users.UpdateProfile(c.Context(), principal.User.ID, req.Name, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserFromDomain(user)})
}

// ChangePassword handles PUT /users/change-password.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.users.ChangePassword(c.Context(), principal.User.ID, req.CurrentPassword, req.NewPassword, req.ConfirmNewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}

// UploadProfileImage handles POST /users/upload-profile-image.
func (h *UsersHandler) UploadProfileImage(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return apperrors.NewValidationError("no file uploaded", nil)
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	defer file.Close()

	imageRef, err := h.images.Save(c.Context(), fileHeader.Filename, file)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}

	user, err := h.users.SetProfileImage(c.Context(), principal.User.ID, imageRef)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserFromDomain(user)})
}
