package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
)

// RequireRoles gates a route group to an explicit allow-list of roles.
// Admins pass every gate.
func RequireRoles(roles ...models.UserRole) echo.MiddlewareFunc {
	allowed := make(map[models.UserRole]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := GetUserRole(c)
			if !models.IsValidUserRole(role) {
				return echo.NewHTTPError(http.StatusForbidden, "Unknown role")
			}
			if role == models.UserRoleAdmin || allowed[role] {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}
