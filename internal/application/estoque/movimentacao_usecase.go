package estoque

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
	domainestoque "github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/estoque"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
	"github.com/fiap-soat-grupo36/oficina-microservices/pkg/logger"
)

// MovimentacaoEstoqueUseCase registra movimentações (ENTRADA/SAIDA) de forma
// transacional, com bloqueio da linha de saldo e Commit/Rollback. O append no
// razão e a atualização do saldo acontecem na mesma unidade de trabalho.
type MovimentacaoEstoqueUseCase struct {
	txRunner TxRunner
	movRepo  repository.MovimentacaoEstoqueRepository // leituras fora de transação
	log      *logger.Logger
}

// NewMovimentacaoEstoqueUseCase constrói o caso de uso.
func NewMovimentacaoEstoqueUseCase(txRunner TxRunner, movRepo repository.MovimentacaoEstoqueRepository, log *logger.Logger) *MovimentacaoEstoqueUseCase {
	return &MovimentacaoEstoqueUseCase{txRunner: txRunner, movRepo: movRepo, log: log}
}

// MovimentacaoInput entrada para registrar uma movimentação.
// CustoUnitario é obrigatório na ENTRADA e ignorado na SAIDA.
type MovimentacaoInput struct {
	ProdutoCatalogoID   int64
	Tipo                string
	Quantidade          int
	CustoUnitario       *decimal.Decimal
	DocumentoReferencia *string
	Observacao          *string
}

// RegistrarMovimentacao valida a entrada (antes de qualquer bloqueio), abre a
// transação, bloqueia a linha de saldo, grava a movimentação no razão e aplica
// o efeito no saldo:
//   - ENTRADA: recalcula o custo médio ponderado e soma a quantidade.
//   - SAIDA: subtrai a quantidade; falha com estoque insuficiente se o total
//     ficaria abaixo do reservado (não se remove estoque fisicamente reservado).
//     O custo médio não muda em saídas.
func (uc *MovimentacaoEstoqueUseCase) RegistrarMovimentacao(ctx context.Context, input MovimentacaoInput) (*entity.MovimentacaoEstoque, error) {
	if input.Quantidade <= 0 {
		return nil, domain.ErrQuantidadeInvalida
	}
	switch input.Tipo {
	case entity.TipoMovimentacaoEntrada:
		if input.CustoUnitario == nil || input.CustoUnitario.LessThan(decimal.Zero) {
			return nil, domain.ErrQuantidadeInvalida
		}
	case entity.TipoMovimentacaoSaida:
		// custo é resolvido pelo médio vigente
	default:
		return nil, domain.ErrQuantidadeInvalida
	}

	var out *entity.MovimentacaoEstoque
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovimentacaoEstoqueRepository,
		saldoRepo repository.SaldoEstoqueRepository,
		_ repository.ReservaEstoqueRepository,
	) error {
		saldo, err := saldoRepo.GetForUpdate(input.ProdutoCatalogoID)
		if err != nil {
			return err
		}

		now := time.Now()
		mov := &entity.MovimentacaoEstoque{
			ID:                  uuid.New().String(),
			ProdutoCatalogoID:   input.ProdutoCatalogoID,
			Tipo:                input.Tipo,
			Quantidade:          input.Quantidade,
			DocumentoReferencia: input.DocumentoReferencia,
			Observacao:          input.Observacao,
			DataMovimentacao:    now,
			CriadoEm:            now,
		}

		switch input.Tipo {
		case entity.TipoMovimentacaoEntrada:
			saldo.PrecoCustoMedio = domainestoque.CustoMedioPonderado(
				saldo.QuantidadeTotal, saldo.PrecoCustoMedio,
				input.Quantidade, *input.CustoUnitario,
			)
			saldo.QuantidadeTotal += input.Quantidade
			mov.CustoUnitario = *input.CustoUnitario
		case entity.TipoMovimentacaoSaida:
			if saldo.QuantidadeTotal-input.Quantidade < saldo.QuantidadeReservada {
				return &domain.EstoqueInsuficienteError{
					ProdutoCatalogoID: input.ProdutoCatalogoID,
					Solicitada:        input.Quantidade,
					Disponivel:        saldo.QuantidadeDisponivel(),
				}
			}
			saldo.QuantidadeTotal -= input.Quantidade
			mov.CustoUnitario = saldo.PrecoCustoMedio
		}

		if err := movRepo.Create(mov); err != nil {
			return err
		}
		saldo.UltimaAtualizacao = now
		if err := saldoRepo.Save(saldo); err != nil {
			return err
		}
		out = mov
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("movimentacao_id", out.ID).
		Int64("produto_catalogo_id", out.ProdutoCatalogoID).
		Str("tipo", out.Tipo).
		Int("quantidade", out.Quantidade).
		Msg("movimentação de estoque registrada")
	return out, nil
}

// ListarMovimentacoes lista o razão com filtros opcionais de produto, tipo e
// período (datas inclusivas).
func (uc *MovimentacaoEstoqueUseCase) ListarMovimentacoes(_ context.Context, filtro repository.MovimentacaoFiltro) ([]*entity.MovimentacaoEstoque, error) {
	return uc.movRepo.ListWithFilters(filtro)
}

// BuscarPorID devolve uma movimentação ou domain.ErrNaoEncontrado.
func (uc *MovimentacaoEstoqueUseCase) BuscarPorID(_ context.Context, id string) (*entity.MovimentacaoEstoque, error) {
	mov, err := uc.movRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if mov == nil {
		return nil, domain.ErrNaoEncontrado
	}
	return mov, nil
}
