package playermigrations

import "github.com/uptrace/bun/migrate"

var Migrations = migrate.NewMigrations()

func init() {
	// Migration ids come from the caller file names.
	if err := Migrations.DiscoverCaller(); err != nil {
		panic(err)
	}
}
