package estoque

import (
	"time"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
)

// recalcularReservado recomputa QuantidadeReservada como a soma das reservas
// ativas do produto e persiste o saldo. Usado após criação/cancelamento de
// reserva para que o saldo reflita sempre a verdade do banco em vez de ser
// ajustado incrementalmente (evita deriva sob falhas parciais concorrentes).
// Pré-condição: o saldo já foi obtido com GetForUpdate na mesma transação.
func recalcularReservado(
	saldoRepo repository.SaldoEstoqueRepository,
	reservaRepo repository.ReservaEstoqueRepository,
	saldo *entity.SaldoEstoque,
) error {
	total, err := reservaRepo.SumAtivasPorProduto(saldo.ProdutoCatalogoID)
	if err != nil {
		return err
	}
	saldo.QuantidadeReservada = total
	saldo.UltimaAtualizacao = time.Now()
	return saldoRepo.Save(saldo)
}
