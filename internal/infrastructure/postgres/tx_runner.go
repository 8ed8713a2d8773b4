package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/audit-portal-api/internal/application/auth"
	"github.com/jhoicas/audit-portal-api/internal/application/documents"
	"github.com/jhoicas/audit-portal-api/internal/domain/repository"
)

// Ensure TxRunner implements auth.TxRunner and documents.TxRunner.
var (
	_ auth.TxRunner      = (*TxRunner)(nil)
	_ documents.TxRunner = (*TxRunner)(nil)
)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunRegistration alta de usuario + concesiones: todo o nada.
func (r *TxRunner) RunRegistration(ctx context.Context, fn func(
	users repository.UserRepository,
	access repository.AccessRepository,
) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewUserRepository(tx), NewAccessRepository(tx))
	})
}

// RunUpload registra los archivos recibidos y actualiza las solicitudes en una sola transacción.
func (r *TxRunner) RunUpload(ctx context.Context, fn func(docs repository.DocumentRepository) error) error {
	return r.inTx(ctx, func(tx pgx.Tx) error {
		return fn(NewDocumentRepository(tx))
	})
}

// inTx inicia una transacción, ejecuta fn y hace Commit o Rollback.
func (r *TxRunner) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
