package service

import (
	"slices"

	"github.com/google/uuid"

	"github.com/Skotchmaster/emoji_shop/internal/models"
)

func RequireRole(user *models.User, roles ...models.Role) error {
	if user == nil {
		return newError(ErrUnauthorized, "Not authenticated")
	}
	if !slices.Contains(roles, user.Role) {
		return newError(ErrForbidden, "Forbidden: insufficient role")
	}
	return nil
}

func RequireOwnerOrAdmin(user *models.User, ownerID uuid.UUID) error {
	if user == nil {
		return newError(ErrUnauthorized, "Not authenticated")
	}
	if user.IsAdmin() || user.ID == ownerID {
		return nil
	}
	return newError(ErrForbidden, "Forbidden: not the owner")
}
