package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/emoji_shop/internal/logging"
	authmw "github.com/Skotchmaster/emoji_shop/internal/middleware/auth"
	"github.com/Skotchmaster/emoji_shop/internal/service"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	products, err := h.Svc.List(ctx)
	if err != nil {
		return respondError(l, "get_products_error", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	products, err := h.Svc.Search(ctx, c.QueryParam("q"))
	if err != nil {
		return respondError(l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	product, err := h.Svc.Get(ctx, c.Param("id"))
	if err != nil {
		return respondError(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req service.CreateProductInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "product_create_error", err)
	}

	product, err := h.Svc.Create(ctx, authmw.User(c), req)
	if err != nil {
		return respondError(l, "product_create_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update")

	var req service.UpdateProductInput
	if err := c.Bind(&req); err != nil {
		return invalidBody(l, "product_update_error", err)
	}

	product, err := h.Svc.Update(ctx, authmw.User(c), c.Param("id"), req)
	if err != nil {
		return respondError(l, "product_update_error", err)
	}

	l.Info("update_product_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	if err := h.Svc.Delete(ctx, authmw.User(c), c.Param("id")); err != nil {
		return respondError(l, "product_delete_error", err)
	}

	l.Info("delete_product_success", "product_id", c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}
