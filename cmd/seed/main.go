package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	"bengkel-bot/internal/corpus"
	"bengkel-bot/internal/models"
	"bengkel-bot/internal/repository"
	"bengkel-bot/migrations"
	"bengkel-bot/pkg/config"
	"bengkel-bot/pkg/logger"
	"bengkel-bot/pkg/postgres"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// Usage: seed            apply migrations, then import documents
//        seed migrate    apply migrations only
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	if err := runMigrations(&cfg.Database, appLogger); err != nil {
		appLogger.Fatal("Migration failed", zap.Error(err))
	}
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		return
	}

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	knowledgeRepo := repository.NewKnowledgeRepository(db, appLogger)
	priceRepo := repository.NewPriceRepository(db, appLogger)

	// A store without database sources reads the structured documents only.
	documents := corpus.NewStore(nil, nil, cfg.Corpus.DocumentDir, cfg.Corpus.PriceDocument, appLogger)

	appLogger.Info("Starting database seeding", zap.String("dir", cfg.Corpus.DocumentDir))

	for _, domain := range models.Domains() {
		entries, err := documents.LoadDomain(ctx, domain)
		if err != nil {
			appLogger.Warn("Skipping domain", zap.String("domain", string(domain)), zap.Error(err))
			continue
		}
		if err := knowledgeRepo.ReplaceDomain(ctx, domain, entries); err != nil {
			appLogger.Fatal("Failed to import domain", zap.String("domain", string(domain)), zap.Error(err))
		}
	}

	prices := documents.LoadPrices(ctx)
	if err := priceRepo.Upsert(ctx, prices); err != nil {
		appLogger.Fatal("Failed to import prices", zap.Error(err))
	}
	appLogger.Info("Seeding complete", zap.Int("prices", len(prices)))
}

func runMigrations(cfg *config.DatabaseConfig, appLogger *zap.Logger) error {
	db, err := sql.Open("pgx", postgres.DSN(cfg))
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping db: %w", err)
	}

	dbDriver, err := migratepostgres.WithInstance(db, &migratepostgres.Config{})
	if err != nil {
		return fmt.Errorf("db driver: %w", err)
	}
	srcDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", srcDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("read version: %w", err)
	}
	appLogger.Info("Migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}
