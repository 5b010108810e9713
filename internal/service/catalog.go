package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/emoji_shop/internal/events"
	"github.com/Skotchmaster/emoji_shop/internal/logging"
	"github.com/Skotchmaster/emoji_shop/internal/models"
	"github.com/Skotchmaster/emoji_shop/internal/repo"
)

const (
	msgProductNotFound   = "Product not found"
	msgProductInUse      = "Cannot delete: there are active orders for this product. Mark out of stock instead."
	msgProductsInUse     = "Cannot delete: there are active orders for one or more selected products. Mark out of stock instead."
	msgProductIDsMissing = "ids[] is required"
)

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	Index  ProductIndex
}

type CreateProductInput struct {
	Name        string   `json:"name"        validate:"required"`
	Price       *float64 `json:"price"       validate:"required,gte=0"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Emoji       string   `json:"emoji"`
	InStock     *bool    `json:"inStock"`
}

// UpdateProductInput lists the editable fields; nil means unchanged.
type UpdateProductInput struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Emoji       *string  `json:"emoji"`
	InStock     *bool    `json:"inStock"`
}

func (s *CatalogService) List(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *CatalogService) Get(ctx context.Context, rawID string) (*models.Product, error) {
	id, err := parseID(rawID, "product")
	if err != nil {
		return nil, err
	}
	p, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgProductNotFound)
	}
	return p, nil
}

func (s *CatalogService) Create(ctx context.Context, user *models.User, in CreateProductInput) (*models.Product, error) {
	if err := RequireRole(user, models.RoleCustomer, models.RoleAdmin); err != nil {
		return nil, err
	}

	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:        in.Name,
		Price:       *in.Price,
		Category:    orDefault(in.Category, models.DefaultCategory),
		Description: strings.TrimSpace(in.Description),
		Emoji:       orDefault(in.Emoji, models.DefaultEmoji),
		InStock:     in.InStock == nil || *in.InStock,
		CreatedBy:   user.ID,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	p.Owner = user

	s.reindex(ctx, p)
	publish(ctx, s.Events, events.TopicProducts, p.ID.String(), events.ProductCreated, p)
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, user *models.User, rawID string, in UpdateProductInput) (*models.Product, error) {
	id, err := parseID(rawID, "product")
	if err != nil {
		return nil, err
	}
	current, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		return nil, notFound(err, msgProductNotFound)
	}
	if err := RequireOwnerOrAdmin(user, current.CreatedBy); err != nil {
		return nil, err
	}

	updates, err := in.columns()
	if err != nil {
		return nil, err
	}

	p, err := s.Repo.UpdateProduct(ctx, id, updates)
	if err != nil {
		return nil, notFound(err, msgProductNotFound)
	}

	s.reindex(ctx, p)
	publish(ctx, s.Events, events.TopicProducts, p.ID.String(), events.ProductUpdated, p)
	return p, nil
}

func (in UpdateProductInput) columns() (map[string]any, error) {
	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, newError(ErrValidation, "name is required")
		}
		updates["name"] = name
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return nil, newError(ErrValidation, "price must be a number >= 0")
		}
		updates["price"] = *in.Price
	}
	if in.Category != nil {
		updates["category"] = orDefault(*in.Category, models.DefaultCategory)
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.Emoji != nil {
		updates["emoji"] = orDefault(*in.Emoji, models.DefaultEmoji)
	}
	if in.InStock != nil {
		updates["in_stock"] = *in.InStock
	}
	return updates, nil
}

func (s *CatalogService) Delete(ctx context.Context, user *models.User, rawID string) error {
	id, err := parseID(rawID, "product")
	if err != nil {
		return err
	}
	current, err := s.Repo.ProductByID(ctx, id)
	if err != nil {
		return notFound(err, msgProductNotFound)
	}
	if err := RequireOwnerOrAdmin(user, current.CreatedBy); err != nil {
		return err
	}

	deleted, err := s.Repo.DeleteProducts(ctx, []uuid.UUID{id})
	if err != nil {
		if errors.Is(err, repo.ErrActiveOrders) {
			return newError(ErrConflict, msgProductInUse)
		}
		return err
	}
	if deleted == 0 {
		return newError(ErrNotFound, msgProductNotFound)
	}

	s.unindex(ctx, []uuid.UUID{id})
	publish(ctx, s.Events, events.TopicProducts, id.String(), events.ProductDeleted, map[string]any{"id": id})
	return nil
}

// BulkDelete removes all given products or none of them.
func (s *CatalogService) BulkDelete(ctx context.Context, user *models.User, rawIDs []string) (int64, error) {
	if err := RequireRole(user, models.RoleAdmin); err != nil {
		return 0, err
	}
	if len(rawIDs) == 0 {
		return 0, newError(ErrValidation, msgProductIDsMissing)
	}

	ids := make([]uuid.UUID, 0, len(rawIDs))
	seen := make(map[uuid.UUID]struct{}, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := parseID(raw, "product")
		if err != nil {
			return 0, err
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	deleted, err := s.Repo.DeleteProducts(ctx, ids)
	if err != nil {
		if errors.Is(err, repo.ErrActiveOrders) {
			return 0, newError(ErrConflict, msgProductsInUse)
		}
		return 0, err
	}

	s.unindex(ctx, ids)
	for _, id := range ids {
		publish(ctx, s.Events, events.TopicProducts, id.String(), events.ProductDeleted, map[string]any{"id": id, "bulk": true})
	}
	return deleted, nil
}

// Search uses the search index when configured and falls back to a database
// substring match.
func (s *CatalogService) Search(ctx context.Context, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Repo.ListProducts(ctx)
	}
	if s.Index == nil {
		return s.Repo.SearchProducts(ctx, query)
	}

	ids, err := s.Index.Search(ctx, query)
	if err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to database", "error", err)
		return s.Repo.SearchProducts(ctx, query)
	}

	found, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogService) reindex(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) unindex(ctx context.Context, ids []uuid.UUID) {
	if s.Index == nil {
		return
	}
	if err := s.Index.DeleteProducts(ctx, ids); err != nil {
		logging.FromContext(ctx).Warn("search_unindex_failed", "count", len(ids), "error", err)
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
