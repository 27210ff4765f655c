package db

import (
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/SwarupDevkota/ghumna-sub000/pkg/config"
)

// DefaultMigrationsPath is used when MIGRATIONS_PATH is unset.
const DefaultMigrationsPath = "file://migrations"

func Migrate(cfg config.Config) error {
	path := strings.TrimSpace(cfg.MigrationsPath)
	if path == "" {
		path = DefaultMigrationsPath
	}

	m, err := migrate.New(path, migrationConnString(cfg))
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return err
	}
	return nil
}

// Down rolls back a single migration step. Used by the dev migrate command.
func Down(cfg config.Config) error {
	path := strings.TrimSpace(cfg.MigrationsPath)
	if path == "" {
		path = DefaultMigrationsPath
	}

	m, err := migrate.New(path, migrationConnString(cfg))
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Steps(-1); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return err
	}
	return nil
}
