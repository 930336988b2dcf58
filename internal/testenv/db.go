// Package testenv builds throwaway sqlite databases for package tests.
package testenv

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/card_market/internal/models"
	"github.com/Skotchmaster/card_market/internal/seed"
	pkgdb "github.com/Skotchmaster/card_market/pkg/db"
)

// NewDB opens an isolated in-memory database with the schema applied.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), pkgdb.GormConfig())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// NewSeededDB is NewDB plus the starter catalog.
func NewSeededDB(t testing.TB) *gorm.DB {
	t.Helper()
	db := NewDB(t)
	cards := seed.Cards()
	require.NoError(t, db.Create(&cards).Error)
	return db
}

func CreateUser(t testing.TB, db *gorm.DB, externalID string) *models.User {
	t.Helper()
	u := &models.User{ExternalID: externalID, Email: externalID + "@example.com"}
	require.NoError(t, db.WithContext(context.Background()).Create(u).Error)
	return u
}

type Line struct {
	CardID   uint
	Quantity int
	Price    string
}

// CreateOrder inserts an order directly, bypassing checkout.
func CreateOrder(t testing.TB, db *gorm.DB, userID uuid.UUID, status models.OrderStatus, createdAt time.Time, lines ...Line) *models.Order {
	t.Helper()

	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(lines))
	for _, l := range lines {
		price := decimal.RequireFromString(l.Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		items = append(items, models.OrderItem{CardID: l.CardID, Quantity: l.Quantity, PriceAtPurchase: price})
	}
	o := &models.Order{
		UserID:     userID,
		TotalPrice: total,
		Status:     status,
		CreatedAt:  createdAt,
	}
	require.NoError(t, db.Omit("Items").Create(o).Error)
	for i := range items {
		items[i].OrderID = o.ID
	}
	if len(items) > 0 {
		require.NoError(t, db.Omit("Card").Create(&items).Error)
	}
	o.Items = items
	return o
}
