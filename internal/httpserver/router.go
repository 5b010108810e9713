package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/emoji_shop/internal/middleware/auth"
	"github.com/Skotchmaster/emoji_shop/internal/models"
)

type Deps struct {
	AuthHandler    *AuthHTTP
	CatalogHandler *CatalogHTTP
	OrderHandler   *OrderHTTP
	AdminHandler   *AdminHTTP
	Verifier       authmw.TokenVerifier
	Ready          func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/", func(c echo.Context) error { return c.String(http.StatusOK, "E-Commerce API is running") })
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
			}
		}
		return c.NoContent(http.StatusOK)
	})

	login := authmw.RequireLogin(d.Verifier)
	shopper := authmw.RequireRole(models.RoleCustomer, models.RoleAdmin)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.GET("/me", d.AuthHandler.Me, login)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/search", d.CatalogHandler.SearchProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	products.POST("", d.CatalogHandler.CreateProduct, login, shopper)
	products.PUT("/:id", d.CatalogHandler.UpdateProduct, login)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, login)

	orders := api.Group("/orders", login)
	orders.POST("/buy-now", d.OrderHandler.BuyNow, shopper)
	orders.GET("/my", d.OrderHandler.MyOrders, shopper)
	orders.PUT("/:id/cancel", d.OrderHandler.Cancel)
	// older clients manage orders through these paths
	orders.GET("", d.AdminHandler.ListOrders, authmw.RequireAdmin)
	orders.PUT("/:id/status", d.AdminHandler.SetOrderStatus, authmw.RequireAdmin)
	orders.DELETE("/:id", d.AdminHandler.DeleteOrder, authmw.RequireAdmin)

	admin := api.Group("/admin", login, authmw.RequireAdmin)
	admin.GET("/products", d.AdminHandler.ListProducts)
	admin.POST("/products/delete-many", d.AdminHandler.DeleteProducts)
	admin.GET("/orders", d.AdminHandler.ListOrders)
	admin.PUT("/orders/:id/status", d.AdminHandler.SetOrderStatus)
	admin.DELETE("/orders/:id", d.AdminHandler.DeleteOrder)
	admin.POST("/users/admin", d.AdminHandler.CreateAdmin)
}
