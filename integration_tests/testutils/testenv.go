//go:build integration

package testutils

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Black-And-White-Club/flashcard-frenzy/config"
	"github.com/Black-And-White-Club/flashcard-frenzy/integration_tests/containers"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/db/bundb"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
)

// TestSecret signs the tokens integration tests send.
const TestSecret = "integration-secret"

// AppTables are truncated between tests, children first.
var AppTables = []string{"round_attempts", "match_rounds", "match_players", "matches", "flashcards", "players"}

// TestEnvironment holds the containers and connections shared by one test binary.
type TestEnvironment struct {
	Ctx         context.Context
	PgContainer *postgres.PostgresContainer
	DSN         string
	DB          *bun.DB
	Logger      *slog.Logger

	natsOnce      sync.Once
	natsContainer testcontainers.Container
	natsURL       string
	natsErr       error
}

var (
	envOnce   sync.Once
	globalEnv *TestEnvironment
	envErr    error
)

// GetOrCreateTestEnv starts Postgres on first use and migrates it, River
// schema included.
func GetOrCreateTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	envOnce.Do(func() {
		globalEnv, envErr = NewTestEnvironment(context.Background())
	})
	if envErr != nil {
		t.Fatalf("Failed to set up test environment: %v", envErr)
	}
	return globalEnv
}

// NewTestEnvironment creates a new test environment with a Postgres container.
func NewTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	pgContainer, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, err
	}

	db, err := bundb.Open(ctx, dsn)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := bundb.Migrate(ctx, db, logger); err != nil {
		_ = db.Close()
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	if err := bundb.MigrateRiver(ctx, dsn, logger); err != nil {
		_ = db.Close()
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	return &TestEnvironment{
		Ctx:         ctx,
		PgContainer: pgContainer,
		DSN:         dsn,
		DB:          db,
		Logger:      logger,
	}, nil
}

// NatsURL starts a NATS container the first time it is asked for.
func (env *TestEnvironment) NatsURL(t *testing.T) string {
	t.Helper()
	env.natsOnce.Do(func() {
		c, url, err := containers.SetupNatsContainer(env.Ctx)
		if err != nil {
			env.natsErr = err
			return
		}
		env.natsContainer, env.natsURL = c, url
	})
	if env.natsErr != nil {
		t.Fatalf("Failed to start NATS: %v", env.natsErr)
	}
	return env.natsURL
}

// Config returns an app config pointing at the test containers.
func (env *TestEnvironment) Config() *config.Config {
	return &config.Config{
		Postgres: config.PostgresConfig{DSN: env.DSN},
		JWT:      config.JWTConfig{Secret: TestSecret, DefaultTTL: time.Hour, DevTokensEnabled: true},
		HTTP: config.HTTPConfig{
			Address:        "127.0.0.1:0",
			AllowedOrigins: []string{"*"},
			RateLimit:      1000,
			RateBurst:      1000,
		},
		Match: config.MatchConfig{
			AutoAdvanceDelay: 200 * time.Millisecond,
			Scheduler:        config.SchedulerLocal,
		},
		Observability: config.ObservabilityConfig{Environment: "test"},
	}
}

// Reset truncates every application table and the River job table.
func (env *TestEnvironment) Reset(t *testing.T) {
	t.Helper()
	if err := TruncateTables(env.Ctx, env.DB, AppTables...); err != nil {
		t.Fatalf("Failed to reset tables: %v", err)
	}
	if _, err := env.DB.ExecContext(env.Ctx, "DELETE FROM river_job"); err != nil && !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("Failed to clean river jobs: %v", err)
	}
}

// Shutdown terminates the shared containers. Call it from TestMain.
func Shutdown(ctx context.Context) {
	if globalEnv == nil {
		return
	}
	_ = globalEnv.DB.Close()
	if globalEnv.natsContainer != nil {
		_ = globalEnv.natsContainer.Terminate(ctx)
	}
	_ = globalEnv.PgContainer.Terminate(ctx)
}

// TruncateTables truncates the specified tables
func TruncateTables(ctx context.Context, db bun.IDB, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	quoted := make([]string, len(tables))
	for i, table := range tables {
		quoted[i] = fmt.Sprintf("%q", table)
	}
	query := "TRUNCATE TABLE " + strings.Join(quoted, ", ") + " CASCADE"
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables %v: %w", tables, err)
	}
	return nil
}
