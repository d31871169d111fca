package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller for the current request.
// It carries the token metadata needed to revoke the session on logout.
type Principal struct {
	User      *domain.User
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

// AuthMiddleware validates session tokens and loads principals. Tokens
// arrive as an httpOnly cookie or a bearer header for non-cookie clients.
type AuthMiddleware struct {
	tokens     *TokenManager
	users      repository.UserRepository
	revoker    TokenRevoker
	cookieName string
}

// NewAuthMiddleware constructs middleware. revoker may be nil, in which
// case logout relies on cookie clearing alone.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, revoker TokenRevoker, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, revoker: revoker, cookieName: cookieName}
}

// Handle enforces authentication for protected routes. It runs before
// any role guard, so a missing or invalid credential always yields
// UNAUTHORIZED rather than FORBIDDEN.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	tokenStr := m.extractToken(c)
	if tokenStr == "" {
		return apperrors.NewUnauthorized("missing session token")
	}

	claims, err := m.tokens.ParseToken(tokenStr)
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired session token")
	}

	if m.revoker != nil {
		revoked, err := m.revoker.IsRevoked(c.Context(), claims.ID)
		if err == nil && revoked {
			return apperrors.NewUnauthorized("session revoked")
		}
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{
		User:      user,
		Role:      claims.Role,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	})
	return c.Next()
}

func (m *AuthMiddleware) extractToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(m.cookieName); cookie != "" {
		return cookie
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
