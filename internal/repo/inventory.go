package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/card_market/internal/models"
)

const inventoryColumns = "uc.card_id AS card_id, uc.quantity AS quantity, uc.obtained_at AS obtained_at, " +
	"c.name AS name, c.type AS type, c.rarity AS rarity, c.image AS image, c.price AS price"

type InventoryRow struct {
	CardID     uint
	Quantity   int
	ObtainedAt time.Time
	Name       string
	Type       models.CardType
	Rarity     models.Rarity
	Image      string
	Price      decimal.Decimal
}

func (r *GormRepo) ListInventory(ctx context.Context, userID uuid.UUID) ([]InventoryRow, error) {
	var rows []InventoryRow
	err := r.DB.WithContext(ctx).
		Table("user_cards AS uc").
		Select(inventoryColumns).
		Joins("JOIN cards c ON c.id = uc.card_id").
		Where("uc.user_id = ?", userID).
		Order("uc.obtained_at DESC, uc.card_id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepo) GetInventoryEntry(ctx context.Context, userID uuid.UUID, cardID uint) (*models.UserCard, error) {
	var uc models.UserCard
	if err := r.DB.WithContext(ctx).Where("user_id = ? AND card_id = ?", userID, cardID).First(&uc).Error; err != nil {
		return nil, notFound(err)
	}
	return &uc, nil
}
