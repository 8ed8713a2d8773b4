// Command migrate aplica el esquema de la base de datos.
//
//	migrate [up|down|status]
package main

import (
	"context"
	"os"
	"time"

	"github.com/jhoicas/audit-portal-api/internal/infrastructure/postgres"
	"github.com/jhoicas/audit-portal-api/pkg/config"
	"github.com/jhoicas/audit-portal-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: "migrate"})

	command := postgres.MigrateUp
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, command); err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("migración")
	}
	if command == postgres.MigrateUp && cfg.Auth.IdentityScope == config.IdentityScopeGlobal {
		if err := postgres.EnsureGlobalIdentityIndex(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("migración")
		}
	}
	log.Info().Str("command", command).Msg("migración completada")
}
