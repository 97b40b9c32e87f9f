package estoque

import (
	"context"
	"errors"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/application/dto"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
	"github.com/fiap-soat-grupo36/oficina-microservices/pkg/logger"
)

// ReservaEstoqueLoteUseCase aplica uma lista de reservas (produto, quantidade)
// para uma OS sob uma política de atomicidade:
//   - allOrNothing=true: o lote inteiro é uma unidade de trabalho; a primeira
//     falha aborta e reverte todas as reservas já criadas nesta chamada.
//   - allOrNothing=false: best-effort, cada item na sua própria unidade de
//     trabalho; falhas não desfazem os sucessos anteriores.
//
// Os itens são processados na ordem recebida, para relato determinístico de
// falhas parciais.
type ReservaEstoqueLoteUseCase struct {
	txRunner TxRunner
	reservas *ReservaEstoqueUseCase
	log      *logger.Logger
}

// NewReservaEstoqueLoteUseCase constrói o coordenador de lote.
func NewReservaEstoqueLoteUseCase(txRunner TxRunner, reservas *ReservaEstoqueUseCase, log *logger.Logger) *ReservaEstoqueLoteUseCase {
	return &ReservaEstoqueLoteUseCase{txRunner: txRunner, reservas: reservas, log: log}
}

// ReservarEmLote processa os itens e devolve o relatório por item. No modo
// all-or-nothing um lote abortado também devolve o erro da primeira falha, já
// traduzido nos itens do relatório.
func (uc *ReservaEstoqueLoteUseCase) ReservarEmLote(ctx context.Context, req dto.ReservaLoteRequest) (*dto.ReservaLoteResponse, error) {
	if req.AllOrNothing {
		return uc.reservarAtomico(ctx, req)
	}
	return uc.reservarBestEffort(ctx, req)
}

func (uc *ReservaEstoqueLoteUseCase) reservarAtomico(ctx context.Context, req dto.ReservaLoteRequest) (*dto.ReservaLoteResponse, error) {
	resultados := make([]dto.ItemReservaResult, 0, len(req.Itens))

	err := uc.txRunner.Run(ctx, func(
		_ repository.MovimentacaoEstoqueRepository,
		saldoRepo repository.SaldoEstoqueRepository,
		reservaRepo repository.ReservaEstoqueRepository,
	) error {
		for _, item := range req.Itens {
			resultado := dto.ItemReservaResult{
				ProdutoCatalogoID: item.ProdutoCatalogoID,
				Solicitada:        item.Quantidade,
			}
			reserva, err := reservarEmTx(saldoRepo, reservaRepo, item.ProdutoCatalogoID, req.OrdemServicoID, item.Quantidade)
			if err != nil {
				resultado.Status = dto.StatusItemReservaErro
				resultado.Detalhe = err.Error()
				resultados = append(resultados, resultado)
				// aborta a unidade de trabalho: rollback de tudo que foi
				// reservado neste lote
				return err
			}
			resultado.Reservada = item.Quantidade
			resultado.Status = dto.StatusItemReservaOK
			resultado.ReservaItemID = reserva.ID
			resultados = append(resultados, resultado)
		}
		return nil
	})
	if err != nil {
		// Os itens marcados OK antes da falha foram revertidos junto com a
		// transação; o relatório precisa dizer isso ao caller.
		for i := range resultados {
			if resultados[i].Status == dto.StatusItemReservaOK {
				resultados[i].Status = dto.StatusItemReservaErro
				resultados[i].Reservada = 0
				resultados[i].ReservaItemID = ""
				resultados[i].Detalhe = "reserva revertida: lote all-or-nothing abortado"
			}
		}
		uc.logFalha(req.OrdemServicoID, err)
		return &dto.ReservaLoteResponse{
			OrdemServicoID: req.OrdemServicoID,
			SucessoGeral:   false,
			Itens:          resultados,
		}, err
	}

	return &dto.ReservaLoteResponse{
		OrdemServicoID: req.OrdemServicoID,
		SucessoGeral:   true,
		Itens:          resultados,
	}, nil
}

func (uc *ReservaEstoqueLoteUseCase) reservarBestEffort(ctx context.Context, req dto.ReservaLoteRequest) (*dto.ReservaLoteResponse, error) {
	resultados := make([]dto.ItemReservaResult, 0, len(req.Itens))
	houveErro := false

	for _, item := range req.Itens {
		resultado := dto.ItemReservaResult{
			ProdutoCatalogoID: item.ProdutoCatalogoID,
			Solicitada:        item.Quantidade,
		}
		reserva, err := uc.reservas.Reservar(ctx, item.ProdutoCatalogoID, req.OrdemServicoID, item.Quantidade)
		if err != nil {
			// o detalhe do erro é sempre exposto por item; falha inesperada
			// (não de estoque) também vai para o log operacional
			resultado.Status = dto.StatusItemReservaErro
			resultado.Detalhe = err.Error()
			houveErro = true
			uc.logFalha(req.OrdemServicoID, err)
			resultados = append(resultados, resultado)
			continue
		}
		resultado.Reservada = item.Quantidade
		resultado.Status = dto.StatusItemReservaOK
		resultado.ReservaItemID = reserva.ID
		resultados = append(resultados, resultado)
	}

	return &dto.ReservaLoteResponse{
		OrdemServicoID: req.OrdemServicoID,
		SucessoGeral:   !houveErro,
		Itens:          resultados,
	}, nil
}

func (uc *ReservaEstoqueLoteUseCase) logFalha(ordemServicoID int64, err error) {
	evt := uc.log.Warn()
	if !errors.Is(err, domain.ErrEstoqueInsuficiente) && !errors.Is(err, domain.ErrQuantidadeInvalida) {
		// condição não prevista de domínio merece visibilidade operacional
		evt = uc.log.Error()
	}
	evt.Err(err).Int64("ordem_servico_id", ordemServicoID).Msg("falha ao reservar item do lote")
}
