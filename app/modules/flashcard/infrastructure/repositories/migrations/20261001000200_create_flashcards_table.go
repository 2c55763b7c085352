package flashcardmigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating flashcards table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS flashcards (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					question TEXT NOT NULL CHECK (length(btrim(question)) > 0),
					options JSONB NOT NULL,
					correct_answer TEXT NOT NULL,
					created_by UUID REFERENCES players(id) ON DELETE SET NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT flashcards_correct_answer_in_options CHECK (options @> jsonb_build_array(correct_answer))
				);
				CREATE INDEX IF NOT EXISTS idx_flashcards_created_at ON flashcards(created_at);
			`); err != nil {
				return fmt.Errorf("failed to create flashcards table: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping flashcards table...")
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS flashcards CASCADE;`)
		return err
	})
}
