package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/card_market/pkg/db"
	authmw "github.com/Skotchmaster/card_market/pkg/middleware/auth"
	"github.com/Skotchmaster/card_market/pkg/middleware/csrf"
)

type Deps struct {
	DB *gorm.DB

	Catalog  *CatalogHTTP
	Account  *AccountHTTP
	Checkout *CheckoutHTTP
	Cart     *CartHTTP
	Success  *SuccessHTTP
	Webhooks *WebhookHTTP

	Session *authmw.SessionMiddleware
	CSRF    csrf.Config
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := pkgdb.Ping(c.Request().Context(), d.DB); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	cards := e.Group("/cards")
	cards.GET("", d.Catalog.ListCards)
	cards.GET("/search", d.Catalog.SearchCards)
	cards.GET("/:id", d.Catalog.GetCard)
	cards.GET("/:id/stats", d.Catalog.CardStats)

	e.GET("/user", d.Account.CurrentUser, d.Session.OptionalAuth)
	e.GET("/success", d.Success.Success)

	hooks := e.Group("/webhooks")
	hooks.POST("/identity", d.Webhooks.IdentityEvent)
	hooks.POST("/payment", d.Webhooks.PaymentEvent)

	authed := []echo.MiddlewareFunc{d.Session.RequireAuth, csrf.Middleware(d.CSRF)}
	e.GET("/inventory", d.Account.Inventory, authed...)
	e.GET("/transactions", d.Account.Transactions, authed...)
	e.POST("/checkout", d.Checkout.Checkout, authed...)

	cart := e.Group("/cart", authed...)
	cart.GET("", d.Cart.GetCart)
	cart.DELETE("", d.Cart.Clear)
	cart.POST("/items", d.Cart.AddItem)
	cart.PATCH("/items/:id", d.Cart.UpdateItem)
	cart.DELETE("/items/:id", d.Cart.RemoveItem)
	cart.POST("/checkout", d.Checkout.CheckoutCart)
}
