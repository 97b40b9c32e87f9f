package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
)

func TestStore_LockTimeoutEmProdutoDisputado(t *testing.T) {
	store := NewStore(50 * time.Millisecond)
	runner := NewTxRunner(store)

	segurando := make(chan struct{})
	solta := make(chan struct{})
	go func() {
		_ = runner.Run(context.Background(), func(
			_ repository.MovimentacaoEstoqueRepository,
			saldoRepo repository.SaldoEstoqueRepository,
			_ repository.ReservaEstoqueRepository,
		) error {
			_, err := saldoRepo.GetForUpdate(1)
			if err != nil {
				return err
			}
			close(segurando)
			<-solta
			return nil
		})
	}()

	<-segurando
	// segunda transação disputando o mesmo produto expira
	err := runner.Run(context.Background(), func(
		_ repository.MovimentacaoEstoqueRepository,
		saldoRepo repository.SaldoEstoqueRepository,
		_ repository.ReservaEstoqueRepository,
	) error {
		_, err := saldoRepo.GetForUpdate(1)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrLockTimeout)
	close(solta)
}

func TestStore_ProdutosDiferentesNaoSeBloqueiam(t *testing.T) {
	store := NewStore(100 * time.Millisecond)
	runner := NewTxRunner(store)

	segurando := make(chan struct{})
	solta := make(chan struct{})
	go func() {
		_ = runner.Run(context.Background(), func(
			_ repository.MovimentacaoEstoqueRepository,
			saldoRepo repository.SaldoEstoqueRepository,
			_ repository.ReservaEstoqueRepository,
		) error {
			_, err := saldoRepo.GetForUpdate(1)
			if err != nil {
				return err
			}
			close(segurando)
			<-solta
			return nil
		})
	}()

	<-segurando
	defer close(solta)
	// produto 2 não espera pelo bloqueio do produto 1
	err := runner.Run(context.Background(), func(
		_ repository.MovimentacaoEstoqueRepository,
		saldoRepo repository.SaldoEstoqueRepository,
		_ repository.ReservaEstoqueRepository,
	) error {
		saldo, err := saldoRepo.GetForUpdate(2)
		if err != nil {
			return err
		}
		saldo.QuantidadeTotal = 7
		return saldoRepo.Save(saldo)
	})
	require.NoError(t, err)

	saldo, err := NewSaldoEstoqueRepository(store).GetOrCreate(2)
	require.NoError(t, err)
	assert.Equal(t, 7, saldo.QuantidadeTotal)
}

func TestTxRunner_RollbackDescartaStaging(t *testing.T) {
	store := NewStore(time.Second)
	runner := NewTxRunner(store)
	boom := errors.New("boom")

	err := runner.Run(context.Background(), func(
		movRepo repository.MovimentacaoEstoqueRepository,
		saldoRepo repository.SaldoEstoqueRepository,
		reservaRepo repository.ReservaEstoqueRepository,
	) error {
		saldo, err := saldoRepo.GetForUpdate(1)
		if err != nil {
			return err
		}
		saldo.QuantidadeTotal = 99
		if err := saldoRepo.Save(saldo); err != nil {
			return err
		}
		if err := movRepo.Create(&entity.MovimentacaoEstoque{ID: "mov-1", ProdutoCatalogoID: 1}); err != nil {
			return err
		}
		if err := reservaRepo.Create(&entity.ReservaEstoque{ID: "res-1", ProdutoCatalogoID: 1, OrdemServicoID: 10, QuantidadeReservada: 1, Ativa: true}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	saldo, err := NewSaldoEstoqueRepository(store).GetOrCreate(1)
	require.NoError(t, err)
	assert.Equal(t, 0, saldo.QuantidadeTotal, "saldo staged não pode vazar")

	mov, err := NewMovimentacaoEstoqueRepository(store).GetByID("mov-1")
	require.NoError(t, err)
	assert.Nil(t, mov, "movimentação staged não pode vazar")

	total, err := NewReservaEstoqueRepository(store).SumAtivasPorProduto(1)
	require.NoError(t, err)
	assert.Zero(t, total, "reserva staged não pode vazar")
}

func TestTxRunner_EscritasStagedVisiveisNaPropriaTransacao(t *testing.T) {
	store := NewStore(time.Second)
	runner := NewTxRunner(store)

	err := runner.Run(context.Background(), func(
		_ repository.MovimentacaoEstoqueRepository,
		saldoRepo repository.SaldoEstoqueRepository,
		reservaRepo repository.ReservaEstoqueRepository,
	) error {
		if err := reservaRepo.Create(&entity.ReservaEstoque{ID: "res-1", ProdutoCatalogoID: 1, OrdemServicoID: 10, QuantidadeReservada: 3, Ativa: true}); err != nil {
			return err
		}
		// a soma dentro da transação enxerga a reserva recém criada
		total, err := reservaRepo.SumAtivasPorProduto(1)
		if err != nil {
			return err
		}
		assert.Equal(t, 3, total)

		saldo, err := saldoRepo.GetForUpdate(1)
		if err != nil {
			return err
		}
		saldo.QuantidadeReservada = total
		return saldoRepo.Save(saldo)
	})
	require.NoError(t, err)

	saldo, err := NewSaldoEstoqueRepository(store).GetOrCreate(1)
	require.NoError(t, err)
	assert.Equal(t, 3, saldo.QuantidadeReservada)
}

func TestTxRunner_LockLiberadoAposCommit(t *testing.T) {
	store := NewStore(50 * time.Millisecond)
	runner := NewTxRunner(store)

	for i := 0; i < 3; i++ {
		err := runner.Run(context.Background(), func(
			_ repository.MovimentacaoEstoqueRepository,
			saldoRepo repository.SaldoEstoqueRepository,
			_ repository.ReservaEstoqueRepository,
		) error {
			_, err := saldoRepo.GetForUpdate(1)
			return err
		})
		require.NoError(t, err, "iteração %d", i)
	}
}
