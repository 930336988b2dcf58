package httpserver

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/card_market/internal/service"
	"github.com/Skotchmaster/card_market/pkg/logging"
)

var pages = template.Must(template.New("success").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Thank you for your purchase!</title></head>
<body>
<main>
  <h1>Thank you for your purchase!</h1>
  <p>Your transaction was successful and the cards have been added to your inventory.</p>
  <a href="{{.InventoryURL}}">View Inventory</a>
  <a href="{{.CatalogURL}}">Continue Shopping</a>
</main>
</body>
</html>
`))

func init() {
	template.Must(pages.New("failure").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Something went wrong</title></head>
<body>
<main>
  <h1>Something went wrong</h1>
  <p>We couldn't process your transaction. Please contact support if this persists.</p>
  <a href="{{.CatalogURL}}">Return to Marketplace</a>
</main>
</body>
</html>
`))
}

type pageLinks struct {
	CatalogURL   string
	InventoryURL string
}

// SuccessHTTP serves the processor's post-payment redirect.
type SuccessHTTP struct {
	Svc          *service.SettlementService
	CatalogURL   string
	InventoryURL string
}

func (h *SuccessHTTP) Success(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.success")

	orderID := c.QueryParam("transaction_id")
	if orderID == "" {
		return c.Redirect(http.StatusSeeOther, h.CatalogURL)
	}

	page, status := "success", http.StatusOK
	res, err := h.Svc.SettleAfterRedirect(ctx, orderID)
	switch {
	case err == nil:
		l.Info("settlement_complete", "order_id", orderID, "already_settled", res.AlreadySettled)
	case errors.Is(err, service.ErrOrderNotFound):
		l.Warn("settlement_error", "status", 404, "order_id", orderID, "error", err)
		page, status = "failure", http.StatusNotFound
	case errors.Is(err, service.ErrPaymentNotConfirmed):
		l.Warn("settlement_error", "status", 402, "order_id", orderID, "error", err)
		page, status = "failure", http.StatusPaymentRequired
	default:
		l.Error("settlement_error", "status", 500, "order_id", orderID, "error", err)
		page, status = "failure", http.StatusInternalServerError
	}

	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, page, pageLinks{CatalogURL: h.CatalogURL, InventoryURL: h.InventoryURL}); err != nil {
		l.Error("render_page_error", "page", page, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.HTMLBlob(status, buf.Bytes())
}
