package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed *.sql
var FS embed.FS

const DefaultTable = "schema_migrations"

// Up applies every pending migration. It reports applied=false when the schema was already current.
func Up(databaseURL, table string) (applied bool, err error) {
	if table == "" {
		table = DefaultTable
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return false, fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: table})
	if err != nil {
		return false, fmt.Errorf("migrate driver: %w", err)
	}
	src, err := iofs.New(FS, ".")
	if err != nil {
		return false, fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return false, fmt.Errorf("migrate: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
