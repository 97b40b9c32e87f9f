package estoque

import (
	"context"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
)

// TxRunner executa uma função dentro de uma unidade de trabalho, passando
// repositórios atados a essa transação. Commit se fn devolve nil, rollback caso
// contrário. É a garantia de atomicidade do motor de estoque: razão, saldo e
// reservas do mesmo produto mudam juntos ou não mudam.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movRepo repository.MovimentacaoEstoqueRepository,
		saldoRepo repository.SaldoEstoqueRepository,
		reservaRepo repository.ReservaEstoqueRepository,
	) error) error
}
