package estoque

import (
	"context"
	"time"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
)

// SaldoEstoqueUseCase consultas de saldo e ajuste do estoque mínimo.
type SaldoEstoqueUseCase struct {
	txRunner  TxRunner
	saldoRepo repository.SaldoEstoqueRepository // leituras fora de transação
}

// NewSaldoEstoqueUseCase constrói o caso de uso.
func NewSaldoEstoqueUseCase(txRunner TxRunner, saldoRepo repository.SaldoEstoqueRepository) *SaldoEstoqueUseCase {
	return &SaldoEstoqueUseCase{txRunner: txRunner, saldoRepo: saldoRepo}
}

// ObterSaldo devolve o saldo consolidado do produto, criando a linha zerada no
// primeiro acesso.
func (uc *SaldoEstoqueUseCase) ObterSaldo(_ context.Context, produtoCatalogoID int64) (*entity.SaldoEstoque, error) {
	return uc.saldoRepo.GetOrCreate(produtoCatalogoID)
}

// ListarSaldos lista todos os saldos de estoque.
func (uc *SaldoEstoqueUseCase) ListarSaldos(_ context.Context) ([]*entity.SaldoEstoque, error) {
	return uc.saldoRepo.List()
}

// ListarBaixoEstoque lista os saldos com disponível abaixo do estoque mínimo.
func (uc *SaldoEstoqueUseCase) ListarBaixoEstoque(_ context.Context) ([]*entity.SaldoEstoque, error) {
	return uc.saldoRepo.ListBaixoEstoque()
}

// AtualizarEstoqueMinimo altera o limiar de baixo estoque do produto, sob o
// bloqueio da linha como toda mutação de saldo.
func (uc *SaldoEstoqueUseCase) AtualizarEstoqueMinimo(ctx context.Context, produtoCatalogoID int64, estoqueMinimo int) (*entity.SaldoEstoque, error) {
	if estoqueMinimo < 0 {
		return nil, domain.ErrQuantidadeInvalida
	}
	var out *entity.SaldoEstoque
	err := uc.txRunner.Run(ctx, func(
		_ repository.MovimentacaoEstoqueRepository,
		saldoRepo repository.SaldoEstoqueRepository,
		_ repository.ReservaEstoqueRepository,
	) error {
		saldo, err := saldoRepo.GetForUpdate(produtoCatalogoID)
		if err != nil {
			return err
		}
		saldo.EstoqueMinimo = estoqueMinimo
		saldo.UltimaAtualizacao = time.Now()
		if err := saldoRepo.Save(saldo); err != nil {
			return err
		}
		out = saldo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
