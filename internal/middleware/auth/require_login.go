package auth

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emoji_shop/internal/logging"
	"github.com/Skotchmaster/emoji_shop/internal/service"
)

// RequireLogin accepts "Authorization: Bearer <token>" and loads the user.
func RequireLogin(v TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("middleware", "require_login")

			token, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				l.Warn("auth_error", "status", 401, "reason", "missing bearer token")
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing or invalid Authorization header")
			}

			user, err := v.VerifyToken(ctx, token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthorized) {
					msg := service.PublicMessage(err)
					l.Warn("auth_error", "status", 401, "reason", msg, "error", err)
					return echo.NewHTTPError(http.StatusUnauthorized, msg)
				}
				l.Error("auth_error", "status", 500, "reason", "cannot verify token", "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
			}

			setUser(c, user)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, logging.FromContext(ctx).With("user_id", user.ID.String()))))
			return next(c)
		}
	}
}
