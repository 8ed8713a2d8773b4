package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Comandos de migración aceptados por Migrate.
const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// Migrate aplica el esquema embebido con goose sobre el pool.
func Migrate(ctx context.Context, pool *pgxpool.Pool, command string) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	var err error
	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, db, "migrations")
	case MigrateDown:
		err = goose.DownContext(ctx, db, "migrations")
	case MigrateStatus:
		err = goose.StatusContext(ctx, db, "migrations")
	default:
		return fmt.Errorf("comando de migración desconocido %q", command)
	}
	if err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}
	return nil
}

// EnsureGlobalIdentityIndex hace único el username entre todas las empresas.
// Solo se aplica con la estrategia de identidad global; falla si ya hay duplicados.
func EnsureGlobalIdentityIndex(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `CREATE UNIQUE INDEX IF NOT EXISTS users_username_global_uq ON users(lower(username))`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("índice de identidad global: %w", err)
	}
	return nil
}
