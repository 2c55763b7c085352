package playermigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating players table...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS players (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					user_id TEXT NOT NULL,
					name TEXT NOT NULL,
					email TEXT,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					CONSTRAINT players_user_id_key UNIQUE (user_id)
				);
			`); err != nil {
				return fmt.Errorf("failed to create players table: %w", err)
			}
			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping players table...")
		_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS players CASCADE;`)
		return err
	})
}
