package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/card_market/internal/models"
	"github.com/Skotchmaster/card_market/internal/repo"
	"github.com/Skotchmaster/card_market/internal/service"
	"github.com/Skotchmaster/card_market/internal/util"
	"github.com/Skotchmaster/card_market/pkg/logging"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
	Now func() time.Time
}

func (h *CatalogHTTP) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *CatalogHTTP) ListCards(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.list")

	cards, err := h.Svc.ListCards(ctx)
	if err != nil {
		l.Error("list_cards_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.JSON(http.StatusOK, toCards(cards))
}

func (h *CatalogHTTP) GetCard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get")

	card, err := h.Svc.GetCard(ctx, c.Param("id"))
	if err != nil {
		return cardError(l, "get_card_error", err)
	}
	return c.JSON(http.StatusOK, toCard(*card))
}

func (h *CatalogHTTP) SearchCards(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	f := repo.CardFilter{
		Query:  strings.TrimSpace(c.QueryParam("q")),
		Type:   models.CardType(c.QueryParam("type")),
		Rarity: models.Rarity(c.QueryParam("rarity")),
	}
	page := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))

	total, cards, err := h.Svc.SearchCards(ctx, f, page.Offset(), page.Size)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_cards_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid filter")
		}
		l.Error("search_cards_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
	return c.JSON(http.StatusOK, searchResponse{
		Total: total,
		Page:  page.Number,
		Size:  page.Size,
		Items: toCards(cards),
	})
}

func (h *CatalogHTTP) CardStats(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.stats")

	days, err := h.Svc.CardStats(ctx, c.Param("id"), h.now())
	if err != nil {
		return cardError(l, "card_stats_error", err)
	}
	return c.JSON(http.StatusOK, toStats(days))
}

func cardError(l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid card id")
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Card not found")
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "Internal Server Error")
	}
}
