package repository

import "github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"

// SaldoEstoqueRepository define a porta para consultar/atualizar o saldo por produto.
// Nenhuma operação pode ler o saldo para mutação sem antes obter o bloqueio
// exclusivo via GetForUpdate (dentro de uma unidade de trabalho).
type SaldoEstoqueRepository interface {
	// GetOrCreate devolve o saldo do produto, criando uma linha zerada no
	// primeiro acesso.
	GetOrCreate(produtoCatalogoID int64) (*entity.SaldoEstoque, error)
	// GetForUpdate bloqueia a linha do saldo para escrita (SELECT FOR UPDATE ou
	// equivalente). Operações concorrentes sobre o mesmo produto aguardam até o
	// limite configurado e então falham com domain.ErrLockTimeout.
	GetForUpdate(produtoCatalogoID int64) (*entity.SaldoEstoque, error)
	Save(saldo *entity.SaldoEstoque) error
	List() ([]*entity.SaldoEstoque, error)
	// ListBaixoEstoque devolve os saldos com disponível abaixo do estoque mínimo.
	ListBaixoEstoque() ([]*entity.SaldoEstoque, error)
}
