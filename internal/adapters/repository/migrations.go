package repository

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/comitanigiacomo/kanso-goals/migrations"
)

// RunMigrations brings the Postgres schema up to date from the embedded
// goose migrations.
func RunMigrations(db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
