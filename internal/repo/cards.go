package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/card_market/internal/models"
)

type CardFilter struct {
	Query  string
	Type   models.CardType
	Rarity models.Rarity
}

func (r *GormRepo) ListCards(ctx context.Context) ([]models.Card, error) {
	var cards []models.Card
	if err := r.DB.WithContext(ctx).Order("id ASC").Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

func (r *GormRepo) GetCard(ctx context.Context, id uint) (*models.Card, error) {
	var c models.Card
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *GormRepo) GetCardsByIDs(ctx context.Context, ids []uint) ([]models.Card, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var cards []models.Card
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&cards).Error; err != nil {
		return nil, err
	}
	return cards, nil
}

// SearchCards is the database fallback for catalog search: a case-insensitive substring match on name.
func (r *GormRepo) SearchCards(ctx context.Context, f CardFilter, offset, limit int) (int64, []models.Card, error) {
	q := r.DB.WithContext(ctx).Model(&models.Card{})
	if s := strings.TrimSpace(f.Query); s != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.Rarity != "" {
		q = q.Where("rarity = ?", f.Rarity)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var cards []models.Card
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&cards).Error; err != nil {
		return 0, nil, err
	}
	return total, cards, nil
}

// UpsertCards writes catalog rows keyed by id. Existing rows are left untouched.
func (r *GormRepo) UpsertCards(ctx context.Context, cards []models.Card) (int64, error) {
	if len(cards) == 0 {
		return 0, nil
	}
	db := r.DB.WithContext(ctx)
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&cards)
	if res.Error != nil {
		return 0, res.Error
	}
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec("SELECT setval(pg_get_serial_sequence('cards', 'id'), (SELECT COALESCE(MAX(id), 1) FROM cards))").Error; err != nil {
			return res.RowsAffected, err
		}
	}
	return res.RowsAffected, nil
}
