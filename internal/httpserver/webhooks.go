package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/card_market/internal/service"
	"github.com/Skotchmaster/card_market/pkg/logging"
)

const maxWebhookBody = 1 << 20

type WebhookHTTP struct {
	Identity   *service.IdentityService
	Settlement *service.SettlementService
}

func readBody(c echo.Context) ([]byte, error) {
	return io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
}

func (h *WebhookHTTP) IdentityEvent(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webhook.identity")

	payload, err := readBody(c)
	if err != nil {
		l.Warn("identity_webhook_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Identity.HandleWebhook(ctx, payload, c.Request().Header); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			l.Warn("identity_webhook_error", "status", 400, "reason", "signature", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Error verifying webhook")
		case errors.Is(err, service.ErrMissingEmail):
			l.Warn("identity_webhook_error", "status", 400, "reason", "missing email", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "No email address found")
		case errors.Is(err, service.ErrValidation):
			l.Warn("identity_webhook_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid event")
		case errors.Is(err, service.ErrEmailConflict):
			l.Error("identity_webhook_error", "status", 409, "reason", "email conflict", "error", err)
			return echo.NewHTTPError(http.StatusConflict, "Email already registered")
		}
		l.Error("identity_webhook_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.NoContent(http.StatusOK)
}

func (h *WebhookHTTP) PaymentEvent(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "webhook.payment")

	payload, err := readBody(c)
	if err != nil {
		l.Warn("payment_webhook_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	err = h.Settlement.HandlePaymentWebhook(ctx, payload, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			l.Warn("payment_webhook_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "Error verifying webhook")
		case errors.Is(err, service.ErrOrderNotFound):
			l.Warn("payment_webhook_error", "status", 404, "error", err)
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		l.Error("payment_webhook_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.NoContent(http.StatusOK)
}
