package bundb

import (
	"context"
	"fmt"
	"log/slog"

	flashcardmigrations "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/flashcard/infrastructure/repositories/migrations"
	matchmigrations "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/match/infrastructure/repositories/migrations"
	playermigrations "github.com/Black-And-White-Club/flashcard-frenzy/app/modules/player/infrastructure/repositories/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// ModuleMigrations names the migration set of one module.
type ModuleMigrations struct {
	Name       string
	Migrations *migrate.Migrations
}

// OrderedMigrations lists module migrations in foreign key order:
// flashcards reference players, rounds reference both.
func OrderedMigrations() []ModuleMigrations {
	return []ModuleMigrations{
		{"player", playermigrations.Migrations},
		{"flashcard", flashcardmigrations.Migrations},
		{"match", matchmigrations.Migrations},
	}
}

// Migrate creates the migration tables and applies every pending module
// migration in order.
func Migrate(ctx context.Context, db *bun.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	modules := OrderedMigrations()
	if err := migrate.NewMigrator(db, modules[0].Migrations).Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}

	for _, mod := range modules {
		group, err := migrate.NewMigrator(db, mod.Migrations).Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", mod.Name, err)
		}
		if group.IsZero() {
			logger.InfoContext(ctx, "No new migrations", slog.String("module", mod.Name))
			continue
		}
		logger.InfoContext(ctx, "Migrated module", slog.String("module", mod.Name), slog.String("group", group.String()))
	}
	return nil
}

// MigrateRiver applies the River queue schema. It is only needed when the
// river auto-advance scheduler is used.
func MigrateRiver(ctx context.Context, dsn string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Errorf("failed to parse DSN for River migrations: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool for River migrations: %w", err)
	}
	defer pool.Close()

	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("failed to create River migrator: %w", err)
	}
	res, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, &rivermigrate.MigrateOpts{})
	if err != nil {
		return fmt.Errorf("failed to run River migrations: %w", err)
	}
	logger.InfoContext(ctx, "River migrations applied", slog.Int("versions", len(res.Versions)))
	return nil
}
