package postgres

import "embed"

// MigrationsDir is the directory inside Migrations holding the goose files.
const MigrationsDir = "migrations"

// Migrations holds the schema migrations in goose's SQL format.
//
//go:embed migrations/*.sql
var Migrations embed.FS
