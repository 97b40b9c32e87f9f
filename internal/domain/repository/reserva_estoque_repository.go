package repository

import "github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"

// ReservaEstoqueRepository define a porta de persistência das reservas de estoque.
type ReservaEstoqueRepository interface {
	Create(reserva *entity.ReservaEstoque) error
	// Save persiste alterações (cancelamento flipa Ativa para false; nunca há
	// remoção física).
	Save(reserva *entity.ReservaEstoque) error
	ListAtivasPorOrdemServico(ordemServicoID int64) ([]*entity.ReservaEstoque, error)
	ListPorOrdemServico(ordemServicoID int64) ([]*entity.ReservaEstoque, error)
	// SumAtivasPorProduto soma as quantidades das reservas ativas do produto;
	// é a fonte de verdade do QuantidadeReservada do saldo.
	SumAtivasPorProduto(produtoCatalogoID int64) (int, error)
}
