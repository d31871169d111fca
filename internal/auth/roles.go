package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// RoleAllowed reports whether role is in the permitted set. An empty
// permitted set allows any authenticated role.
func RoleAllowed(role domain.Role, allowed []domain.Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, candidate := range allowed {
		if role == candidate {
			return true
		}
	}
	return false
}

// RequireRoles ensures the authenticated principal holds one of the
// allowed roles. It must run after AuthMiddleware.Handle.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if !RoleAllowed(principal.Role, allowed) {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAuthenticated ensures a principal is present without any role
// restriction.
func RequireAuthenticated() fiber.Handler {
	return RequireRoles()
}
