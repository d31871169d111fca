package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/service"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// AuthHandler exposes login, logout and admin user creation.
type AuthHandler struct {
	auth *service.AuthService
	cfg  config.AuthConfig
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(authService *service.AuthService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{auth: authService, cfg: cfg}
}

// Login handles POST /auth/login. The session token is set as an
// httpOnly cookie and echoed in the body for non-cookie clients.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, token, expiresAt, err := h.auth.Login(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return c.JSON(fiber.Map{"data": dto.LoginResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Token:     token,
		ExpiresAt: expiresAt,
	}})
}

// CreateUser handles POST /auth/create (admin only by route gating).
func (h *AuthHandler) CreateUser(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.auth.CreateUser(c.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.UserFromDomain(user)})
}

// Logout handles POST /auth/logout. Public: clearing an absent session
// is a no-op, revoking a present one is best-effort.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(h.cfg.CookieName); token != "" {
		h.auth.Logout(c.Context(), token)
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{"message": "logged out"})
}
