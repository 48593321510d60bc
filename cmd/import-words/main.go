// Package main seeds the Postgres word catalog from a CSV file of
// category_id,category_name,word rows.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/scythe504/undercover-backend/internal/config"
	"github.com/scythe504/undercover-backend/internal/storage/postgres"
	"github.com/scythe504/undercover-backend/internal/utils"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and environment")
	csvPath := flag.String("csv", "", "path to the words CSV file")
	timeout := flag.Duration("timeout", time.Minute, "overall import timeout")
	flag.Parse()

	if *csvPath == "" {
		fmt.Fprintln(os.Stderr, "usage: import-words -csv <file> [-config <file>]")
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: loading .env: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading config: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	n, err := run(cfg.Database, *csvPath, *timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("imported %d new words in %s\n", n, time.Since(start).Round(time.Millisecond))
}

func run(db config.DatabaseConfig, csvPath string, timeout time.Duration) (int, error) {
	categories, err := utils.ReadCsvFile(csvPath)
	if err != nil {
		return 0, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, db)
	if err != nil {
		return 0, err
	}
	defer pool.Close()

	repo := postgres.NewWordRepository(pool.DB())
	if err := repo.EnsureSchema(ctx); err != nil {
		return 0, err
	}
	return repo.SeedCategories(ctx, categories)
}
