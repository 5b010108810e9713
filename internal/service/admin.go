package service

import (
	"context"

	"github.com/Skotchmaster/emoji_shop/internal/models"
)

// AdminService groups the admin dashboard operations over the catalog, the
// order ledger and user accounts.
type AdminService struct {
	Auth    *AuthService
	Catalog *CatalogService
	Orders  *OrderService
}

func (s *AdminService) ListProducts(ctx context.Context, actor *models.User) ([]models.Product, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.Catalog.List(ctx)
}

func (s *AdminService) DeleteProducts(ctx context.Context, actor *models.User, rawIDs []string) (int64, error) {
	return s.Catalog.BulkDelete(ctx, actor, rawIDs)
}

func (s *AdminService) ListOrders(ctx context.Context, actor *models.User) ([]models.Order, error) {
	return s.Orders.AdminList(ctx, actor)
}

func (s *AdminService) SetOrderStatus(ctx context.Context, actor *models.User, rawID, status string) (*models.Order, error) {
	return s.Orders.AdminSetStatus(ctx, actor, rawID, status)
}

func (s *AdminService) DeleteOrder(ctx context.Context, actor *models.User, rawID string) error {
	return s.Orders.AdminDelete(ctx, actor, rawID)
}

func (s *AdminService) CreateAdmin(ctx context.Context, actor *models.User, in RegisterInput) (*models.User, error) {
	return s.Auth.CreateAdmin(ctx, actor, in)
}
