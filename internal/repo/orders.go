package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/card_market/internal/models"
)

var ErrOwnerMissing = errors.New("order owner not found")

// CreateOrder writes the order and its lines in one transaction.
func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := order.Items
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return err
		}
		order.Items = items
		return nil
	})
}

func (r *GormRepo) SetPaymentSession(ctx context.Context, orderID uuid.UUID, sessionID string) error {
	res := r.DB.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_session_id", sessionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// SettleOrder moves a pending order to settled and credits its lines to the owner's inventory,
// all in one transaction. The status flip is a conditional update, so of any number of concurrent
// callers exactly one credits the inventory. applied is false when the order was already settled.
func (r *GormRepo) SettleOrder(ctx context.Context, id uuid.UUID, now time.Time) (order *models.Order, applied bool, err error) {
	var o models.Order
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&o, "id = ?", id).Error; err != nil {
			return notFound(err)
		}
		if o.Status == models.OrderStatusSettled {
			return nil
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, models.OrderStatusPending).
			Updates(map[string]any{"status": models.OrderStatusSettled, "settled_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			o.Status = models.OrderStatusSettled
			return nil
		}

		var owner models.User
		if err := tx.Select("id").First(&owner, "id = ?", o.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOwnerMissing
			}
			return err
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", id).Order("id ASC").Find(&items).Error; err != nil {
			return err
		}
		for _, it := range items {
			if err := creditInventory(tx, owner.ID, it.CardID, it.Quantity, now); err != nil {
				return err
			}
		}

		o.Status = models.OrderStatusSettled
		o.SettledAt = &now
		o.Items = items
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &o, applied, nil
}

// creditInventory adds qty to the (user, card) entry, creating it on first acquisition.
func creditInventory(tx *gorm.DB, userID uuid.UUID, cardID uint, qty int, now time.Time) error {
	entry := models.UserCard{
		UserID:     userID,
		CardID:     cardID,
		Quantity:   qty,
		ObtainedAt: now,
	}
	return tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "card_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("user_cards.quantity + excluded.quantity"),
		}),
	}).Create(&entry).Error
}

// ListOrdersWithItems returns the user's orders newest first, each with its lines and their catalog items.
func (r *GormRepo) ListOrdersWithItems(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Card").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

type SaleRow struct {
	OrderID         uuid.UUID
	CreatedAt       time.Time
	Quantity        int
	PriceAtPurchase decimal.Decimal
}

// CardSales lists settled sale lines of one card created at or after since.
func (r *GormRepo) CardSales(ctx context.Context, cardID uint, since time.Time) ([]SaleRow, error) {
	var rows []SaleRow
	err := r.DB.WithContext(ctx).
		Table("transaction_items AS ti").
		Select("ti.order_id AS order_id, t.created_at AS created_at, ti.quantity AS quantity, ti.price_at_purchase AS price_at_purchase").
		Joins("JOIN transactions t ON t.id = ti.order_id").
		Where("ti.card_id = ? AND t.status = ? AND t.created_at >= ?", cardID, models.OrderStatusSettled, since).
		Order("t.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
