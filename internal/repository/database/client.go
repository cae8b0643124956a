package database

import (
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

var client *sqlx.DB

func NewPostgresClient(dsn string) error {
	var err error

	client, err = sqlx.Connect("postgres", dsn)
	if err != nil {
		return err
	}
	return nil
}

func Client() *sqlx.DB {
	return client
}

// MigrateUp applies the embedded schema migrations.
func MigrateUp(db *sqlx.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.Up(db.DB, migrationsDir); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

func MigrateDown(db *sqlx.DB) error {
	if err := setupGoose(); err != nil {
		return err
	}
	if err := goose.DownTo(db.DB, migrationsDir, 0); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

func setupGoose() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migrations dialect: %w", err)
	}
	return nil
}
