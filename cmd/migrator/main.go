package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/Skotchmaster/card_market/internal/repo"
	"github.com/Skotchmaster/card_market/internal/seed"
	"github.com/Skotchmaster/card_market/migrations"
	pkgdb "github.com/Skotchmaster/card_market/pkg/db"
)

func main() {
	var dbURL, table string
	var withSeed bool

	flag.StringVar(&dbURL, "db-url", os.Getenv("DATABASE_URL"), "postgres connection url")
	flag.StringVar(&table, "migrations-table", migrations.DefaultTable, "name of migrations table")
	flag.BoolVar(&withSeed, "seed", false, "insert the starter catalog")
	flag.Parse()

	if dbURL == "" {
		log.Fatal("db url is required")
	}

	applied, err := migrations.Up(dbURL, table)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if applied {
		log.Println("migrations applied successfully")
	} else {
		log.Println("no migrations to apply")
	}

	if !withSeed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := pkgdb.Open(ctx, dbURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = pkgdb.Close(db) }()

	n, err := repo.New(db).UpsertCards(ctx, seed.Cards())
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	log.Printf("seeded %d cards", n)
}
