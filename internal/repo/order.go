package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/emoji_shop/internal/models"
)

// CreateOrderForProduct reads the product under a share lock and stores the
// order build returns for it, items included, in the same transaction.
func (r *GormRepo) CreateOrderForProduct(ctx context.Context, productID uuid.UUID, build func(p *models.Product) *models.Order) (*models.Order, error) {
	var order *models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := r.locking(tx, "SHARE").First(&product, "id = ?", productID).Error; err != nil {
			return err
		}

		order = build(&product)
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, wrap(err, "create order")
	}
	return order, nil
}

func (r *GormRepo) OrdersByCustomer(ctx context.Context, customerID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, wrap(err, "list customer orders")
	}
	return orders, nil
}

func (r *GormRepo) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, wrap(err, "list orders")
	}
	return orders, nil
}

func (r *GormRepo) OrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Customer").
		Preload("Items").
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, wrap(err, "find order")
	}
	return &order, nil
}

// TransitionOrder locks the order, asks decide for the next status and stores
// it. decide errors abort the transaction and are returned unchanged.
func (r *GormRepo) TransitionOrder(ctx context.Context, id uuid.UUID, decide func(o *models.Order) (models.OrderStatus, error)) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.locking(tx, "UPDATE").First(&order, "id = ?", id).Error; err != nil {
			return err
		}

		next, err := decide(&order)
		if err != nil {
			return err
		}
		if next == order.Status {
			return nil
		}
		return tx.Model(&order).Update("status", next).Error
	})
	if err != nil {
		return nil, wrap(err, "transition order")
	}
	return r.OrderByID(ctx, id)
}

func (r *GormRepo) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return wrap(err, "delete order")
}
