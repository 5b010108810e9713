package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/emoji_shop/internal/models"
)

func (r *GormRepo) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.DB.WithContext(ctx).
		Preload("Owner").
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, wrap(err, "list products")
	}
	return products, nil
}

func (r *GormRepo) ProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Preload("Owner").First(&product, "id = ?", id).Error; err != nil {
		return nil, wrap(err, "find product")
	}
	return &product, nil
}

func (r *GormRepo) ProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.Product
	if err := r.DB.WithContext(ctx).Preload("Owner").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, wrap(err, "find products by ids")
	}
	return products, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(product).Error; err != nil {
		return wrap(err, "create product")
	}
	return nil
}

// UpdateProduct writes the given columns and returns the fresh row.
func (r *GormRepo) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Product, error) {
	if len(updates) > 0 {
		res := r.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, wrap(res.Error, "update product")
		}
		if res.RowsAffected == 0 {
			return nil, wrap(gorm.ErrRecordNotFound, "update product")
		}
	}
	return r.ProductByID(ctx, id)
}

// DeleteProducts removes the products in one transaction unless an active
// order references any of them; then nothing is deleted. Ids without a
// product are skipped. The product rows stay locked until commit so a
// concurrent buy-now either lands before the check or sees the product gone.
func (r *GormRepo) DeleteProducts(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var deleted int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []models.Product
		if err := r.locking(tx, "UPDATE").
			Select("id").Where("id IN ?", ids).Find(&locked).Error; err != nil {
			return err
		}

		var active int64
		if err := tx.Model(&models.OrderItem{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("order_items.product_id IN ? AND orders.status IN ?", ids, models.ActiveOrderStatuses).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrActiveOrders
		}

		res := tx.Where("id IN ?", ids).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, wrap(err, "delete products")
	}
	return deleted, nil
}

// SearchProducts is the database substring search used when no search
// cluster is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"

	var products []models.Product
	err := r.DB.WithContext(ctx).
		Preload("Owner").
		Joins("LEFT JOIN users ON users.id = products.created_by").
		Where(
			"LOWER(products.name) LIKE ? OR LOWER(products.category) LIKE ? OR LOWER(products.description) LIKE ? OR LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?",
			like, like, like, like, like,
		).
		Order("products.created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, wrap(err, "search products")
	}
	return products, nil
}
