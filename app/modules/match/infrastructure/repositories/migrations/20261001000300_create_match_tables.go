package matchmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating match tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			statements := []struct {
				name string
				sql  string
			}{
				{"matches", `
					CREATE TABLE IF NOT EXISTS matches (
						id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
						created_by UUID NOT NULL REFERENCES players(id),
						created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
					);`},
				{"match_players", `
					CREATE TABLE IF NOT EXISTS match_players (
						match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
						player_id UUID NOT NULL REFERENCES players(id),
						joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
						PRIMARY KEY (match_id, player_id)
					);`},
				{"match_rounds", `
					CREATE TABLE IF NOT EXISTS match_rounds (
						id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
						match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
						flashcard_id UUID NOT NULL REFERENCES flashcards(id),
						answered_by UUID REFERENCES players(id),
						is_correct BOOLEAN,
						created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
						answered_at TIMESTAMPTZ,
						CONSTRAINT match_rounds_match_flashcard_key UNIQUE (match_id, flashcard_id)
					);
					CREATE INDEX IF NOT EXISTS idx_match_rounds_match_created ON match_rounds(match_id, created_at);`},
				{"round_attempts", `
					CREATE TABLE IF NOT EXISTS round_attempts (
						id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
						round_id UUID NOT NULL REFERENCES match_rounds(id),
						player_id UUID NOT NULL REFERENCES players(id),
						answer TEXT NOT NULL,
						is_correct BOOLEAN NOT NULL,
						created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
						CONSTRAINT round_attempts_round_player_key UNIQUE (round_id, player_id)
					);
					CREATE INDEX IF NOT EXISTS idx_round_attempts_player ON round_attempts(player_id);`},
			}

			for _, stmt := range statements {
				if _, err := tx.ExecContext(ctx, stmt.sql); err != nil {
					return fmt.Errorf("failed to create %s table: %w", stmt.name, err)
				}
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping match tables...")
		_, err := db.ExecContext(ctx, `
			DROP TABLE IF EXISTS round_attempts;
			DROP TABLE IF EXISTS match_rounds;
			DROP TABLE IF EXISTS match_players;
			DROP TABLE IF EXISTS matches;
		`)
		return err
	})
}
