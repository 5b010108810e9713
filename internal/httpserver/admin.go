package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emoji_shop/internal/logging"
	authmw "github.com/Skotchmaster/emoji_shop/internal/middleware/auth"
	"github.com/Skotchmaster/emoji_shop/internal/service"
	"github.com/Skotchmaster/emoji_shop/internal/transport"
)

type AdminHTTP struct {
	Svc *service.AdminService
}

func (h *AdminHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_products")

	products, err := h.Svc.ListProducts(ctx, authmw.User(c))
	if err != nil {
		return respondError(l, "admin_list_products_error", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *AdminHTTP) DeleteProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_products")

	var req transport.DeleteManyRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "admin_delete_products_error", err)
	}

	n, err := h.Svc.DeleteProducts(ctx, authmw.User(c), req.IDs)
	if err != nil {
		return respondError(l, "admin_delete_products_error", err)
	}

	l.Info("admin_delete_products_success", "deleted", n)
	return c.JSON(http.StatusOK, transport.DeleteManyResponse{DeletedCount: n})
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	orders, err := h.Svc.ListOrders(ctx, authmw.User(c))
	if err != nil {
		return respondError(l, "admin_list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHTTP) SetOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.set_order_status")

	var req transport.StatusRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "admin_set_status_error", err)
	}

	order, err := h.Svc.SetOrderStatus(ctx, authmw.User(c), c.Param("id"), req.Status)
	if err != nil {
		return respondError(l, "admin_set_status_error", err)
	}

	l.Info("admin_set_status_success", "order_id", order.ID, "status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *AdminHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_order")

	if err := h.Svc.DeleteOrder(ctx, authmw.User(c), c.Param("id")); err != nil {
		return respondError(l, "admin_delete_order_error", err)
	}

	l.Info("admin_delete_order_success", "order_id", c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHTTP) CreateAdmin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.create_admin")

	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "admin_create_admin_error", err)
	}

	user, err := h.Svc.CreateAdmin(ctx, authmw.User(c), req)
	if err != nil {
		return respondError(l, "admin_create_admin_error", err)
	}

	l.Info("admin_create_admin_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}
