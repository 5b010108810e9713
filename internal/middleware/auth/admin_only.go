package auth

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emoji_shop/internal/logging"
	"github.com/Skotchmaster/emoji_shop/internal/models"
)

// RequireRole must run after RequireLogin.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := User(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}
			if !slices.Contains(roles, user.Role) {
				logging.FromContext(c.Request().Context()).Warn("auth_error", "status", 403, "reason", "insufficient role", "role", user.Role)
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden: insufficient role")
			}
			return next(c)
		}
	}
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return RequireRole(models.RoleAdmin)(next)
}
