package storage

import "embed"

// Migrations holds the goose migrations for the users table, rooted so that
// MigrationsDir is the directory to pass to pg.Migrate.
//
//go:embed migrations/*.sql
var Migrations embed.FS

const MigrationsDir = "migrations"
