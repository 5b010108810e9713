package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emoji_shop/internal/logging"
	authmw "github.com/Skotchmaster/emoji_shop/internal/middleware/auth"
	"github.com/Skotchmaster/emoji_shop/internal/service"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) BuyNow(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.buy_now")

	var req service.BuyNowInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "buy_now_error", err)
	}

	order, err := h.Svc.BuyNow(ctx, authmw.User(c), req)
	if err != nil {
		return respondError(l, "buy_now_error", err)
	}

	l.Info("buy_now_success", "order_id", order.ID, "total", order.Total)
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) MyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.my_orders")

	orders, err := h.Svc.MyOrders(ctx, authmw.User(c))
	if err != nil {
		return respondError(l, "my_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	order, err := h.Svc.Cancel(ctx, authmw.User(c), c.Param("id"))
	if err != nil {
		return respondError(l, "cancel_order_error", err)
	}

	l.Info("cancel_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, order)
}
