package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/card_market/internal/cart"
	"github.com/Skotchmaster/card_market/internal/service"
	"github.com/Skotchmaster/card_market/pkg/logging"
	authmw "github.com/Skotchmaster/card_market/pkg/middleware/auth"
)

type CheckoutHTTP struct {
	Svc  *service.CheckoutService
	Cart *cart.Service
}

type checkoutRequest struct {
	Items []struct {
		ItemID   string `json:"itemId"`
		Quantity int    `json:"quantity"`
	} `json:"items"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

func (h *CheckoutHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.create")

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	lines := make([]service.CheckoutLine, 0, len(req.Items))
	for _, it := range req.Items {
		lines = append(lines, service.CheckoutLine{ItemID: it.ItemID, Quantity: it.Quantity})
	}

	externalID, _ := authmw.ExternalUserID(c)
	res, err := h.Svc.Checkout(ctx, externalID, lines)
	if err != nil {
		return checkoutError(l, err)
	}

	l.Info("checkout session created", "order_id", res.OrderID, "total", money(res.TotalPrice))
	return c.JSON(http.StatusOK, checkoutResponse{URL: res.URL})
}

// CheckoutCart checks out the stored cart and, once the payment URL exists, removes the
// checked-out quantities from it. Items added meanwhile are kept.
func (h *CheckoutHTTP) CheckoutCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	externalID, _ := authmw.ExternalUserID(c)
	stored, err := h.Cart.Get(ctx, externalID)
	if err != nil {
		l.Error("cart_checkout_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	lines := make([]service.CheckoutLine, 0, len(stored.Items))
	for _, it := range stored.Items {
		lines = append(lines, service.CheckoutLine{
			ItemID:   strconv.FormatUint(uint64(it.ID), 10),
			Quantity: it.Quantity,
		})
	}

	res, err := h.Svc.Checkout(ctx, externalID, lines)
	if err != nil {
		return checkoutError(l, err)
	}
	if err := h.Cart.Deduct(ctx, externalID, stored); err != nil {
		l.Warn("cart_clear_failed", "order_id", res.OrderID, "error", err)
	}

	l.Info("checkout session created", "order_id", res.OrderID, "total", money(res.TotalPrice))
	return c.JSON(http.StatusOK, checkoutResponse{URL: res.URL})
}

func checkoutError(l *slog.Logger, err error) error {
	var missing *service.ItemNotFoundError
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn("checkout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid checkout request")
	case errors.Is(err, service.ErrUnauthorized):
		l.Warn("checkout_error", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	case errors.Is(err, service.ErrUserNotProvisioned):
		l.Warn("checkout_error", "status", 403, "error", err)
		return echo.NewHTTPError(http.StatusForbidden, "UserNotProvisioned")
	case errors.As(err, &missing):
		l.Warn("checkout_error", "status", 404, "item_id", missing.ItemID)
		return echo.NewHTTPError(http.StatusNotFound, "ItemNotFound: "+missing.ItemID)
	case errors.Is(err, service.ErrCheckoutFailed):
		l.Error("checkout_error", "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "CheckoutFailed")
	default:
		l.Error("checkout_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "CheckoutFailed")
	}
}
