package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/card_market/internal/service"
	"github.com/Skotchmaster/card_market/pkg/logging"
	authmw "github.com/Skotchmaster/card_market/pkg/middleware/auth"
)

type AccountHTTP struct {
	Svc *service.AccountService
}

// CurrentUser answers for guests too: without a session it returns the guest profile.
func (h *AccountHTTP) CurrentUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.user")

	externalID, ok := authmw.ExternalUserID(c)
	if !ok {
		return c.JSON(http.StatusOK, guest)
	}

	u, err := h.Svc.Profile(ctx, externalID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotProvisioned) {
			l.Warn("get_user_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		l.Error("get_user_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}

	resp := userResponse{Email: u.Email}
	if claims, ok := authmw.Claims(c); ok {
		resp.Name = claims.Name
	}
	if u.ImageURL != nil {
		resp.Avatar = *u.ImageURL
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *AccountHTTP) Inventory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.inventory")

	externalID, _ := authmw.ExternalUserID(c)
	rows, err := h.Svc.Inventory(ctx, externalID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			l.Warn("get_inventory_error", "status", 401)
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		case errors.Is(err, service.ErrUserNotProvisioned):
			l.Warn("get_inventory_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		l.Error("get_inventory_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.JSON(http.StatusOK, toInventory(rows))
}

func (h *AccountHTTP) Transactions(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.transactions")

	externalID, _ := authmw.ExternalUserID(c)
	orders, err := h.Svc.Transactions(ctx, externalID)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			l.Warn("get_transactions_error", "status", 401)
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}
		l.Error("get_transactions_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.JSON(http.StatusOK, toTransactions(orders))
}
