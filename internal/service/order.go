package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/emoji_shop/internal/events"
	"github.com/Skotchmaster/emoji_shop/internal/models"
	"github.com/Skotchmaster/emoji_shop/internal/repo"
)

const msgOrderNotFound = "Order not found"

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type BuyNowInput struct {
	ProductID string `json:"productId"`
	Qty       *int   `json:"qty"`
}

type buyNowParams struct {
	ProductID string `json:"productId" validate:"required"`
	Qty       int    `json:"qty"       validate:"min=1"`
}

type statusChange struct {
	ID     uuid.UUID          `json:"id"`
	From   models.OrderStatus `json:"from"`
	To     models.OrderStatus `json:"to"`
	ByUser uuid.UUID          `json:"by"`
}

// BuyNow places a single-item order with a snapshot of the product.
func (s *OrderService) BuyNow(ctx context.Context, user *models.User, in BuyNowInput) (*models.Order, error) {
	if err := RequireRole(user, models.RoleCustomer, models.RoleAdmin); err != nil {
		return nil, err
	}

	params := buyNowParams{ProductID: strings.TrimSpace(in.ProductID), Qty: 1}
	if in.Qty != nil {
		params.Qty = *in.Qty
	}
	if err := validateStruct(params); err != nil {
		return nil, err
	}
	productID, err := parseID(params.ProductID, "product")
	if err != nil {
		return nil, err
	}

	order, err := s.Repo.CreateOrderForProduct(ctx, productID, func(p *models.Product) *models.Order {
		item := models.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Price:     p.Price,
			Qty:       params.Qty,
			Emoji:     orDefault(p.Emoji, models.DefaultEmoji),
		}
		o := &models.Order{
			CustomerID: user.ID,
			Items:      []models.OrderItem{item},
			Status:     models.OrderStatusPending,
		}
		o.Total = o.ComputeTotal()
		return o
	})
	if err != nil {
		return nil, notFound(err, msgProductNotFound)
	}

	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), events.OrderCreated, order)
	return order, nil
}

func (s *OrderService) MyOrders(ctx context.Context, user *models.User) ([]models.Order, error) {
	if err := RequireRole(user, models.RoleCustomer, models.RoleAdmin); err != nil {
		return nil, err
	}
	return s.Repo.OrdersByCustomer(ctx, user.ID)
}

// Cancel is allowed to the owner or an admin while the order is active.
func (s *OrderService) Cancel(ctx context.Context, user *models.User, rawID string) (*models.Order, error) {
	if user == nil {
		return nil, newError(ErrUnauthorized, "Not authenticated")
	}
	id, err := parseID(rawID, "order")
	if err != nil {
		return nil, err
	}

	var from models.OrderStatus
	order, err := s.Repo.TransitionOrder(ctx, id, func(o *models.Order) (models.OrderStatus, error) {
		if err := RequireOwnerOrAdmin(user, o.CustomerID); err != nil {
			return "", err
		}
		if !o.Status.Active() {
			return "", newError(ErrConflict, "Order cannot be cancelled in status %s", o.Status)
		}
		from = o.Status
		return models.OrderStatusCancelled, nil
	})
	if err != nil {
		return nil, notFound(err, msgOrderNotFound)
	}

	publish(ctx, s.Events, events.TopicOrders, order.ID.String(), events.OrderCancelled,
		statusChange{ID: order.ID, From: from, To: order.Status, ByUser: user.ID})
	return order, nil
}

// AdminList returns every order with its customer and the current state of
// the products its items reference.
func (s *OrderService) AdminList(ctx context.Context, actor *models.User) ([]models.Order, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	orders, err := s.Repo.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID
	seen := map[uuid.UUID]struct{}{}
	for _, o := range orders {
		for _, it := range o.Items {
			if _, ok := seen[it.ProductID]; !ok {
				seen[it.ProductID] = struct{}{}
				ids = append(ids, it.ProductID)
			}
		}
	}
	products, err := s.Repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(products))
	for _, p := range products {
		names[p.ID] = p.Name
	}

	for i := range orders {
		for j := range orders[i].Items {
			it := &orders[i].Items[j]
			name, ok := names[it.ProductID]
			it.Product = &models.ProductRef{ID: it.ProductID, Name: name, Deleted: !ok}
		}
	}
	return orders, nil
}

// AdminSetStatus moves an order to any status unless it is already
// completed or cancelled; re-applying the current status is a no-op.
func (s *OrderService) AdminSetStatus(ctx context.Context, actor *models.User, rawID, rawStatus string) (*models.Order, error) {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return nil, err
	}
	next := models.OrderStatus(strings.ToLower(strings.TrimSpace(rawStatus)))
	if !next.Valid() {
		return nil, newError(ErrValidation, "Invalid status")
	}
	id, err := parseID(rawID, "order")
	if err != nil {
		return nil, err
	}

	var from models.OrderStatus
	order, err := s.Repo.TransitionOrder(ctx, id, func(o *models.Order) (models.OrderStatus, error) {
		from = o.Status
		if !o.Status.Active() && next != o.Status {
			return "", newError(ErrConflict, "Order is already %s", o.Status)
		}
		return next, nil
	})
	if err != nil {
		return nil, notFound(err, msgOrderNotFound)
	}

	if from != order.Status {
		publish(ctx, s.Events, events.TopicOrders, order.ID.String(), events.OrderStatusChanged,
			statusChange{ID: order.ID, From: from, To: order.Status, ByUser: actor.ID})
	}
	return order, nil
}

func (s *OrderService) AdminDelete(ctx context.Context, actor *models.User, rawID string) error {
	if err := RequireRole(actor, models.RoleAdmin); err != nil {
		return err
	}
	id, err := parseID(rawID, "order")
	if err != nil {
		return err
	}
	if err := s.Repo.DeleteOrder(ctx, id); err != nil {
		return notFound(err, msgOrderNotFound)
	}

	publish(ctx, s.Events, events.TopicOrders, id.String(), events.OrderDeleted, map[string]any{"id": id, "by": actor.ID})
	return nil
}
