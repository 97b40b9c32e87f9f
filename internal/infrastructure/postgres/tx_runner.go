package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/application/estoque"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
)

var _ estoque.TxRunner = (*TxRunner)(nil)

// TxRunner executa callbacks dentro de uma transação PostgreSQL, com
// lock_timeout limitando a espera pelos bloqueios de linha de saldo.
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner constrói o runner com o pool e o tempo máximo de espera por bloqueio.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia uma transação, executa fn com repositórios atados à tx e faz
// Commit ou Rollback. SET LOCAL lock_timeout vale só para esta transação.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovimentacaoEstoqueRepository,
	saldoRepo repository.SaldoEstoqueRepository,
	reservaRepo repository.ReservaEstoqueRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if r.lockTimeout > 0 {
		if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set lock_timeout: %w", err)
		}
	}

	movRepo := NewMovimentacaoEstoqueRepository(tx)
	saldoRepo := NewSaldoEstoqueRepository(tx)
	reservaRepo := NewReservaEstoqueRepository(tx)

	if err := fn(movRepo, saldoRepo, reservaRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
