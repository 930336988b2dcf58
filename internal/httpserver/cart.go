package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/card_market/internal/cart"
	"github.com/Skotchmaster/card_market/internal/repo"
	"github.com/Skotchmaster/card_market/internal/service"
	"github.com/Skotchmaster/card_market/pkg/logging"
	authmw "github.com/Skotchmaster/card_market/pkg/middleware/auth"
)

type CartHTTP struct {
	Svc *cart.Service
}

type cartItemRequest struct {
	ItemID   string `json:"itemId"`
	Quantity int    `json:"quantity"`
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	externalID, _ := authmw.ExternalUserID(c)
	stored, err := h.Svc.Get(ctx, externalID)
	if err != nil {
		l.Error("get_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.JSON(http.StatusOK, toCart(stored))
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req cartItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	id, err := service.ParseCardID(req.ItemID)
	if err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	externalID, _ := authmw.ExternalUserID(c)
	updated, err := h.Svc.AddItem(ctx, externalID, id, req.Quantity)
	if err != nil {
		return cartError(c, "add_to_cart_error", err)
	}
	return c.JSON(http.StatusOK, toCart(updated))
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	id, err := service.ParseCardID(c.Param("id"))
	if err != nil {
		l.Warn("update_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		l.Warn("update_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "quantity required")
	}

	externalID, _ := authmw.ExternalUserID(c)
	updated, err := h.Svc.UpdateQuantity(ctx, externalID, id, *req.Quantity)
	if err != nil {
		return cartError(c, "update_cart_error", err)
	}
	return c.JSON(http.StatusOK, toCart(updated))
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	id, err := service.ParseCardID(c.Param("id"))
	if err != nil {
		l.Warn("remove_from_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid item id")
	}

	externalID, _ := authmw.ExternalUserID(c)
	updated, err := h.Svc.RemoveItem(ctx, externalID, id)
	if err != nil {
		return cartError(c, "remove_from_cart_error", err)
	}
	return c.JSON(http.StatusOK, toCart(updated))
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	externalID, _ := authmw.ExternalUserID(c)
	if err := h.Svc.Clear(ctx, externalID); err != nil {
		l.Error("clear_cart_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.NoContent(http.StatusNoContent)
}

func cartError(c echo.Context, event string, err error) error {
	l := logging.FromContext(c.Request().Context())
	switch {
	case errors.Is(err, cart.ErrValidation):
		l.Warn(event, "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid quantity")
	case errors.Is(err, cart.ErrNotInCart):
		l.Warn(event, "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "item not in cart")
	case errors.Is(err, repo.ErrNotFound):
		l.Warn(event, "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Card not found")
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
}
