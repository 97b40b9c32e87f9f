package estoque

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
	"github.com/fiap-soat-grupo36/oficina-microservices/pkg/logger"
)

// ReservaEstoqueUseCase cria e cancela reservas atadas a ordens de serviço,
// garantindo disponibilidade sob o bloqueio da linha de saldo.
type ReservaEstoqueUseCase struct {
	txRunner    TxRunner
	reservaRepo repository.ReservaEstoqueRepository // leituras fora de transação
	log         *logger.Logger
}

// NewReservaEstoqueUseCase constrói o caso de uso.
func NewReservaEstoqueUseCase(txRunner TxRunner, reservaRepo repository.ReservaEstoqueRepository, log *logger.Logger) *ReservaEstoqueUseCase {
	return &ReservaEstoqueUseCase{txRunner: txRunner, reservaRepo: reservaRepo, log: log}
}

// Reservar retém quantidade disponível do produto para a OS. Nunca cria reserva
// parcial: ou a quantidade inteira é reservada, ou falha com estoque
// insuficiente (carregando solicitado x disponível).
func (uc *ReservaEstoqueUseCase) Reservar(ctx context.Context, produtoCatalogoID, ordemServicoID int64, quantidade int) (*entity.ReservaEstoque, error) {
	// validação antes de qualquer bloqueio
	if quantidade <= 0 {
		return nil, domain.ErrQuantidadeInvalida
	}
	var out *entity.ReservaEstoque
	err := uc.txRunner.Run(ctx, func(
		_ repository.MovimentacaoEstoqueRepository,
		saldoRepo repository.SaldoEstoqueRepository,
		reservaRepo repository.ReservaEstoqueRepository,
	) error {
		reserva, err := reservarEmTx(saldoRepo, reservaRepo, produtoCatalogoID, ordemServicoID, quantidade)
		if err != nil {
			return err
		}
		out = reserva
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.log.Info().
		Str("reserva_id", out.ID).
		Int64("produto_catalogo_id", produtoCatalogoID).
		Int64("ordem_servico_id", ordemServicoID).
		Int("quantidade", quantidade).
		Msg("reserva de estoque criada")
	return out, nil
}

// reservarEmTx executa a reserva com os repositórios da transação do caller,
// permitindo que o lote all-or-nothing reserve vários itens na mesma unidade de
// trabalho.
func reservarEmTx(
	saldoRepo repository.SaldoEstoqueRepository,
	reservaRepo repository.ReservaEstoqueRepository,
	produtoCatalogoID, ordemServicoID int64,
	quantidade int,
) (*entity.ReservaEstoque, error) {
	if quantidade <= 0 {
		return nil, domain.ErrQuantidadeInvalida
	}
	saldo, err := saldoRepo.GetForUpdate(produtoCatalogoID)
	if err != nil {
		return nil, err
	}
	disponivel := saldo.QuantidadeDisponivel()
	if quantidade > disponivel {
		return nil, &domain.EstoqueInsuficienteError{
			ProdutoCatalogoID: produtoCatalogoID,
			Solicitada:        quantidade,
			Disponivel:        disponivel,
		}
	}
	reserva := &entity.ReservaEstoque{
		ID:                  uuid.New().String(),
		ProdutoCatalogoID:   produtoCatalogoID,
		OrdemServicoID:      ordemServicoID,
		QuantidadeReservada: quantidade,
		Ativa:               true,
		CriadaEm:            time.Now(),
	}
	if err := reservaRepo.Create(reserva); err != nil {
		return nil, err
	}
	if err := recalcularReservado(saldoRepo, reservaRepo, saldo); err != nil {
		return nil, err
	}
	return reserva, nil
}

// CancelarPorOrdemServico desativa todas as reservas ativas da OS e recalcula o
// saldo de cada produto afetado, tudo na mesma unidade de trabalho. Idempotente:
// sem reservas ativas é um no-op, não um erro.
func (uc *ReservaEstoqueUseCase) CancelarPorOrdemServico(ctx context.Context, ordemServicoID int64) error {
	var canceladas int
	err := uc.txRunner.Run(ctx, func(
		_ repository.MovimentacaoEstoqueRepository,
		saldoRepo repository.SaldoEstoqueRepository,
		reservaRepo repository.ReservaEstoqueRepository,
	) error {
		ativas, err := reservaRepo.ListAtivasPorOrdemServico(ordemServicoID)
		if err != nil {
			return err
		}
		for _, reserva := range ativas {
			saldo, err := saldoRepo.GetForUpdate(reserva.ProdutoCatalogoID)
			if err != nil {
				return err
			}
			now := time.Now()
			reserva.Ativa = false
			reserva.CanceladaEm = &now
			if err := reservaRepo.Save(reserva); err != nil {
				return err
			}
			if err := recalcularReservado(saldoRepo, reservaRepo, saldo); err != nil {
				return err
			}
		}
		canceladas = len(ativas)
		return nil
	})
	if err != nil {
		return err
	}

	uc.log.Info().
		Int64("ordem_servico_id", ordemServicoID).
		Int("reservas_canceladas", canceladas).
		Msg("reservas da ordem de serviço canceladas")
	return nil
}

// ListarPorOrdemServico devolve todas as reservas da OS, ativas e históricas.
func (uc *ReservaEstoqueUseCase) ListarPorOrdemServico(_ context.Context, ordemServicoID int64) ([]*entity.ReservaEstoque, error) {
	return uc.reservaRepo.ListPorOrdemServico(ordemServicoID)
}
