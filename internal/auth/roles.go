package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/playdesk/support-desk/internal/domain"
	apperrors "github.com/playdesk/support-desk/pkg/util/errorutil"
)

// RequireRole ensures the principal holds one of the allowed roles.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAnyRole ensures caller is authenticated (player or agent).
func RequireAnyRole() fiber.Handler {
	return RequireRole(domain.RolePlayer, domain.RoleAgent)
}
