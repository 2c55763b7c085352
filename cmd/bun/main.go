package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/Black-And-White-Club/flashcard-frenzy/config"
	"github.com/Black-And-White-Club/flashcard-frenzy/internal/db/bundb"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

type namedMigrator struct {
	name     string
	migrator *migrate.Migrator
}

func main() {
	var (
		cfg *config.Config
		db  *bun.DB
	)

	cliApp := &cli.App{
		Name: "bun",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Before: func(c *cli.Context) error {
			var err error
			cfg, err = config.LoadConfig(c.String("config"))
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			db, err = bundb.Open(c.Context, cfg.Postgres.DSN)
			return err
		},
		After: func(c *cli.Context) error {
			if db != nil {
				return db.Close()
			}
			return nil
		},
		Commands: []*cli.Command{
			newMultiModuleDBCommand(func() *bun.DB { return db }, func() *config.Config { return cfg }),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func migrators(db *bun.DB) []namedMigrator {
	modules := bundb.OrderedMigrations()
	out := make([]namedMigrator, 0, len(modules))
	for _, mod := range modules {
		out = append(out, namedMigrator{name: mod.Name, migrator: migrate.NewMigrator(db, mod.Migrations)})
	}
	return out
}

func lookup(db *bun.DB, name string) (*migrate.Migrator, error) {
	for _, m := range migrators(db) {
		if m.name == name {
			return m.migrator, nil
		}
	}
	return nil, fmt.Errorf("invalid module name: %s", name)
}

func newMultiModuleDBCommand(db func() *bun.DB, cfg func() *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "database migrations",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "create migration tables",
				Action: func(c *cli.Context) error {
					return migrators(db())[0].migrator.Init(c.Context)
				},
			},
			{
				Name:  "migrate",
				Usage: "migrate database, modules in foreign key order",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "river", Usage: "also apply the River queue schema"},
				},
				Action: func(c *cli.Context) error {
					if err := bundb.Migrate(c.Context, db(), nil); err != nil {
						return err
					}
					if c.Bool("river") || cfg().Match.Scheduler == config.SchedulerRiver {
						return bundb.MigrateRiver(c.Context, cfg().Postgres.DSN, nil)
					}
					return nil
				},
			},
			{
				Name:  "rollback",
				Usage: "rollback the last migration group of every module, newest module first",
				Action: func(c *cli.Context) error {
					all := migrators(db())
					for i := len(all) - 1; i >= 0; i-- {
						m := all[i]
						group, err := m.migrator.Rollback(c.Context)
						if err != nil {
							return err
						}
						if group.IsZero() {
							fmt.Printf("No groups to roll back for module: %s\n", m.name)
						} else {
							fmt.Printf("Rolled back module: %s to %s\n", m.name, group)
						}
					}
					return nil
				},
			},
			{
				Name:      "create_go",
				Usage:     "create Go migration",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					migrator, err := lookup(db(), c.Args().First())
					if err != nil {
						return err
					}
					name := strings.Join(c.Args().Tail(), "_")
					mf, err := migrator.CreateGoMigration(c.Context, name)
					if err != nil {
						return err
					}
					fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
					return nil
				},
			},
			{
				Name:      "create_sql",
				Usage:     "create up and down SQL migrations",
				ArgsUsage: "<module> <name...>",
				Action: func(c *cli.Context) error {
					migrator, err := lookup(db(), c.Args().First())
					if err != nil {
						return err
					}
					name := strings.Join(c.Args().Tail(), "_")
					files, err := migrator.CreateSQLMigrations(c.Context, name)
					if err != nil {
						return err
					}
					for _, mf := range files {
						fmt.Printf("Created migration %s (%s)\n", mf.Name, mf.Path)
					}
					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print migrations status",
				Action: func(c *cli.Context) error {
					for _, m := range migrators(db()) {
						ms, err := m.migrator.MigrationsWithStatus(c.Context)
						if err != nil {
							return err
						}
						fmt.Printf("Migrations for module: %s\n", m.name)
						fmt.Printf("  %s\n", ms)
						fmt.Printf("  Applied: %s\n", ms.Applied())
						fmt.Printf("  Unapplied: %s\n", ms.Unapplied())
					}
					return nil
				},
			},
		},
	}
}
