package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// Schema migrations ship inside the binary; a fresh database is fully
// provisioned on first start with no external files.
//
//go:embed migrations/*.sql
var migrationFS embed.FS

// RunMigrations brings the schema up to date. Call once at startup, before
// any query runs; goose records applied versions in its own table and skips
// them on subsequent starts.
func RunMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrationFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("database: set dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("database: apply migrations: %w", err)
	}
	return nil
}
