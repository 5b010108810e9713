package auth

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emoji_shop/internal/models"
)

const userKey = "user"

// TokenVerifier resolves a bearer token to the current user record.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*models.User, error)
}

func setUser(c echo.Context, u *models.User) {
	c.Set(userKey, u)
}

// User returns the authenticated user, or nil outside RequireLogin.
func User(c echo.Context) *models.User {
	u, _ := c.Get(userKey).(*models.User)
	return u
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
