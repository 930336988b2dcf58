//go:build integration

package repo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	"github.com/Skotchmaster/card_market/internal/models"
	"github.com/Skotchmaster/card_market/internal/repo"
	"github.com/Skotchmaster/card_market/internal/seed"
	"github.com/Skotchmaster/card_market/internal/testenv"
	"github.com/Skotchmaster/card_market/migrations"
	pkgdb "github.com/Skotchmaster/card_market/pkg/db"
)

type PostgresSuite struct {
	suite.Suite
	ctx       context.Context
	container *postgres.PostgresContainer
	db        *gorm.DB
	repo      *repo.GormRepo
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	s.ctx = context.Background()

	var err error
	s.container, err = postgres.Run(
		s.ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("cards_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)

	dsn, err := s.container.ConnectionString(s.ctx, "sslmode=disable")
	s.Require().NoError(err)

	applied, err := migrations.Up(dsn, "")
	s.Require().NoError(err)
	s.Require().True(applied)

	s.db, err = pkgdb.Open(s.ctx, dsn)
	s.Require().NoError(err)
	s.repo = repo.New(s.db)

	n, err := s.repo.UpsertCards(s.ctx, seed.Cards())
	s.Require().NoError(err)
	s.Require().EqualValues(18, n)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.db != nil {
		_ = pkgdb.Close(s.db)
	}
	if s.container != nil {
		s.NoError(s.container.Terminate(s.ctx))
	}
}

func (s *PostgresSuite) SetupTest() {
	s.Require().NoError(s.db.Exec("TRUNCATE user_cards, transaction_items, transactions, users CASCADE").Error)
}

func (s *PostgresSuite) TestConcurrentSettlementCreditsOnce() {
	u := testenv.CreateUser(s.T(), s.db, "user_1")
	order := testenv.CreateOrder(s.T(), s.db, u.ID, models.OrderStatusPending, time.Now().UTC(),
		testenv.Line{CardID: 9, Quantity: 2, Price: "400.00"},
		testenv.Line{CardID: 18, Quantity: 1, Price: "900.00"})

	const callers = 12
	var wg sync.WaitGroup
	var mu sync.Mutex
	appliedCount := 0
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, applied, err := s.repo.SettleOrder(s.ctx, order.ID, time.Now().UTC())
			s.NoError(err)
			if applied {
				mu.Lock()
				appliedCount++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	s.Equal(1, appliedCount)
	entry, err := s.repo.GetInventoryEntry(s.ctx, u.ID, 9)
	s.Require().NoError(err)
	s.Equal(2, entry.Quantity)
	entry, err = s.repo.GetInventoryEntry(s.ctx, u.ID, 18)
	s.Require().NoError(err)
	s.Equal(1, entry.Quantity)
}

func (s *PostgresSuite) TestConcurrentFirstPurchasesShareOneEntry() {
	u := testenv.CreateUser(s.T(), s.db, "user_1")
	var orders []*models.Order
	for range 5 {
		orders = append(orders, testenv.CreateOrder(s.T(), s.db, u.ID, models.OrderStatusPending, time.Now().UTC(),
			testenv.Line{CardID: 12, Quantity: 3, Price: "2100.00"}))
	}

	var wg sync.WaitGroup
	for _, o := range orders {
		wg.Add(1)
		go func(o *models.Order) {
			defer wg.Done()
			_, _, err := s.repo.SettleOrder(s.ctx, o.ID, time.Now().UTC())
			s.NoError(err)
		}(o)
	}
	wg.Wait()

	var rows int64
	s.Require().NoError(s.db.Model(&models.UserCard{}).Where("user_id = ?", u.ID).Count(&rows).Error)
	s.EqualValues(1, rows)

	entry, err := s.repo.GetInventoryEntry(s.ctx, u.ID, 12)
	s.Require().NoError(err)
	s.Equal(15, entry.Quantity)
}

func (s *PostgresSuite) TestDuplicateProvisioningKeepsOneUser() {
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.repo.CreateUserIfAbsent(s.ctx, &models.User{ExternalID: "user_7", Email: "user_7@example.com"})
			s.NoError(err)
		}()
	}
	wg.Wait()

	var n int64
	s.Require().NoError(s.db.Model(&models.User{}).Where("external_id = ?", "user_7").Count(&n).Error)
	s.EqualValues(1, n)
}

func (s *PostgresSuite) TestProvisioningReportsEmailHeldByAnotherUser() {
	created, err := s.repo.CreateUserIfAbsent(s.ctx, &models.User{ExternalID: "user_8", Email: "shared@example.com"})
	s.Require().NoError(err)
	s.True(created)

	created, err = s.repo.CreateUserIfAbsent(s.ctx, &models.User{ExternalID: "user_9", Email: "shared@example.com"})
	s.ErrorIs(err, repo.ErrEmailTaken)
	s.False(created)
}

func (s *PostgresSuite) TestUpsertCardsIsRepeatable() {
	n, err := s.repo.UpsertCards(s.ctx, seed.Cards())
	s.Require().NoError(err)
	s.Zero(n)

	cards, err := s.repo.ListCards(s.ctx)
	s.Require().NoError(err)
	s.Len(cards, 18)
	s.Equal("400.00", cards[8].Price.StringFixed(2))
}
