package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/card_market/internal/models"
	"github.com/Skotchmaster/card_market/internal/repo"
	"github.com/Skotchmaster/card_market/pkg/logging"
)

const StatsWindowDays = 30

type CatalogService struct {
	Repo   *repo.GormRepo
	Search CardSearcher
}

func (s *CatalogService) ListCards(ctx context.Context) ([]models.Card, error) {
	return s.Repo.ListCards(ctx)
}

func ParseCardID(raw string) (uint, error) {
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("%w: invalid card id %q", ErrValidation, raw)
	}
	return uint(n), nil
}

func (s *CatalogService) GetCard(ctx context.Context, rawID string) (*models.Card, error) {
	id, err := ParseCardID(rawID)
	if err != nil {
		return nil, err
	}
	c, err := s.Repo.GetCard(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

// SearchCards queries the search index and falls back to the database when the index fails.
func (s *CatalogService) SearchCards(ctx context.Context, f repo.CardFilter, offset, limit int) (int64, []models.Card, error) {
	if f.Type != "" && !f.Type.Valid() {
		return 0, nil, fmt.Errorf("%w: unknown type %q", ErrValidation, f.Type)
	}
	if f.Rarity != "" && !f.Rarity.Valid() {
		return 0, nil, fmt.Errorf("%w: unknown rarity %q", ErrValidation, f.Rarity)
	}
	if s.Search != nil {
		total, cards, err := s.Search.SearchCards(ctx, f, offset, limit)
		if err == nil {
			return total, cards, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to database", "error", err)
	}
	return s.Repo.SearchCards(ctx, f, offset, limit)
}

type DayStats struct {
	Date          string
	Count         int
	TotalQuantity int
	Revenue       decimal.Decimal
}

// CardStats returns one entry per UTC calendar day for the last StatsWindowDays days ending
// today, oldest first. Days without settled sales are zero.
func (s *CatalogService) CardStats(ctx context.Context, rawID string, now time.Time) ([]DayStats, error) {
	card, err := s.GetCard(ctx, rawID)
	if err != nil {
		return nil, err
	}

	now = now.UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(StatsWindowDays - 1))

	rows, err := s.Repo.CardSales(ctx, card.ID, start)
	if err != nil {
		return nil, fmt.Errorf("load sales: %w", err)
	}

	days := make([]DayStats, StatsWindowDays)
	index := make(map[string]int, StatsWindowDays)
	for i := range days {
		d := start.AddDate(0, 0, i).Format(time.DateOnly)
		days[i] = DayStats{Date: d, Revenue: decimal.Zero}
		index[d] = i
	}

	orders := make(map[string]map[string]struct{}, StatsWindowDays)
	for _, r := range rows {
		d := r.CreatedAt.UTC().Format(time.DateOnly)
		i, ok := index[d]
		if !ok {
			continue
		}
		if orders[d] == nil {
			orders[d] = map[string]struct{}{}
		}
		orders[d][r.OrderID.String()] = struct{}{}
		days[i].TotalQuantity += r.Quantity
		days[i].Revenue = days[i].Revenue.Add(r.PriceAtPurchase.Mul(decimal.NewFromInt(int64(r.Quantity))))
	}
	for d, set := range orders {
		days[index[d]].Count = len(set)
	}
	return days, nil
}
