// Package main runs the Undercover game server: websocket gateway plus HTTP
// lookup endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scythe504/undercover-backend/internal"
	"github.com/scythe504/undercover-backend/internal/catalog"
	"github.com/scythe504/undercover-backend/internal/config"
	"github.com/scythe504/undercover-backend/internal/game"
	"github.com/scythe504/undercover-backend/internal/observability"
	"github.com/scythe504/undercover-backend/internal/server"
	"github.com/scythe504/undercover-backend/internal/storage/postgres"
	"github.com/scythe504/undercover-backend/internal/websocket"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty uses defaults and environment")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	words, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("loading word catalog", zap.Error(err))
	}
	logger.Info("word catalog loaded",
		zap.String("source", cfg.Catalog.Source),
		zap.Int("categories", len(words.Categories())),
		zap.String("default", words.Default()),
	)

	registry := game.NewRegistry(words,
		game.WithLogger(logger),
		game.WithMaxPlayers(cfg.Game.MaxPlayers),
		game.WithDefaults(internal.Settings{
			Category:     words.Default(),
			SpiesCount:   cfg.Game.DefaultSpies,
			TimerSeconds: cfg.Game.TimerSeconds,
		}),
	)
	gateway := websocket.NewGateway(registry, cfg.Websocket, cfg.Server.AllowedOrigins, logger)
	httpServer := server.NewServer(cfg.Server, registry, words, gateway, logger).HTTPServer()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening",
			zap.String("addr", httpServer.Addr),
			zap.Duration("startup", time.Since(start)),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down", zap.Int("rooms", registry.Count()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// loadCatalog builds the word catalog from the configured source. Postgres is
// read once at startup; the pool is closed afterwards.
func loadCatalog(ctx context.Context, cfg config.Config, logger *zap.Logger) (*catalog.Catalog, error) {
	opts := []catalog.Option{catalog.WithDefault(cfg.Game.DefaultCategory)}

	switch cfg.Catalog.Source {
	case config.CatalogCSV:
		return catalog.FromCSV(cfg.Catalog.CSVPath, opts...)
	case config.CatalogPostgres:
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)

		repo := postgres.NewWordRepository(pool.DB())
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		return catalog.Load(ctx, repo, opts...)
	default:
		return catalog.Builtin(opts...), nil
	}
}
