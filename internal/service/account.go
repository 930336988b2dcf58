package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/card_market/internal/models"
	"github.com/Skotchmaster/card_market/internal/repo"
)

// AccountService serves the signed-in user's own data: profile, inventory and order history.
type AccountService struct {
	Repo *repo.GormRepo
}

func (s *AccountService) resolve(ctx context.Context, externalID string) (*models.User, error) {
	if externalID == "" {
		return nil, ErrUnauthorized
	}
	u, err := s.Repo.GetUserByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotProvisioned
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *AccountService) Profile(ctx context.Context, externalID string) (*models.User, error) {
	return s.resolve(ctx, externalID)
}

func (s *AccountService) Inventory(ctx context.Context, externalID string) ([]repo.InventoryRow, error) {
	u, err := s.resolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListInventory(ctx, u.ID)
}

// Transactions lists the user's orders with their lines. A user who was never provisioned has none.
func (s *AccountService) Transactions(ctx context.Context, externalID string) ([]models.Order, error) {
	u, err := s.resolve(ctx, externalID)
	if err != nil {
		if errors.Is(err, ErrUserNotProvisioned) {
			return []models.Order{}, nil
		}
		return nil, err
	}
	return s.Repo.ListOrdersWithItems(ctx, u.ID)
}
