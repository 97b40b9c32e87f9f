package estoque_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/application/dto"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/application/estoque"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/infrastructure/memory"
	"github.com/fiap-soat-grupo36/oficina-microservices/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de teste: motor completo sobre o driver em memória
// ──────────────────────────────────────────────────────────────────────────────

type engine struct {
	store         *memory.Store
	movimentacoes *estoque.MovimentacaoEstoqueUseCase
	saldos        *estoque.SaldoEstoqueUseCase
	reservas      *estoque.ReservaEstoqueUseCase
	lote          *estoque.ReservaEstoqueLoteUseCase
}

func newEngine(t *testing.T) *engine {
	t.Helper()
	log := logger.New(logger.Config{Env: "test", Level: "error"})
	store := memory.NewStore(2 * time.Second)
	txRunner := memory.NewTxRunner(store)
	reservaUC := estoque.NewReservaEstoqueUseCase(txRunner, memory.NewReservaEstoqueRepository(store), log)
	return &engine{
		store:         store,
		movimentacoes: estoque.NewMovimentacaoEstoqueUseCase(txRunner, memory.NewMovimentacaoEstoqueRepository(store), log),
		saldos:        estoque.NewSaldoEstoqueUseCase(txRunner, memory.NewSaldoEstoqueRepository(store)),
		reservas:      reservaUC,
		lote:          estoque.NewReservaEstoqueLoteUseCase(txRunner, reservaUC, log),
	}
}

func (e *engine) entrada(t *testing.T, produtoID int64, qtd int, custo string) *entity.MovimentacaoEstoque {
	t.Helper()
	c := decimal.RequireFromString(custo)
	mov, err := e.movimentacoes.RegistrarMovimentacao(context.Background(), estoque.MovimentacaoInput{
		ProdutoCatalogoID: produtoID,
		Tipo:              entity.TipoMovimentacaoEntrada,
		Quantidade:        qtd,
		CustoUnitario:     &c,
	})
	require.NoError(t, err)
	return mov
}

func (e *engine) saldo(t *testing.T, produtoID int64) *entity.SaldoEstoque {
	t.Helper()
	saldo, err := e.saldos.ObterSaldo(context.Background(), produtoID)
	require.NoError(t, err)
	return saldo
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimentações: custo médio ponderado e disponibilidade
// ──────────────────────────────────────────────────────────────────────────────

func TestRegistrarMovimentacao_EntradaRecalculaCustoMedio(t *testing.T) {
	e := newEngine(t)

	e.entrada(t, 1, 10, "10.00")
	e.entrada(t, 1, 10, "20.00")

	saldo := e.saldo(t, 1)
	assert.Equal(t, 20, saldo.QuantidadeTotal)
	assert.True(t, saldo.PrecoCustoMedio.Equal(decimal.RequireFromString("15.00")),
		"custo médio = %s", saldo.PrecoCustoMedio)
}

func TestRegistrarMovimentacao_SaidaNaoAlteraCustoMedio(t *testing.T) {
	e := newEngine(t)
	e.entrada(t, 1, 10, "10.00")
	e.entrada(t, 1, 10, "20.00")

	mov, err := e.movimentacoes.RegistrarMovimentacao(context.Background(), estoque.MovimentacaoInput{
		ProdutoCatalogoID: 1,
		Tipo:              entity.TipoMovimentacaoSaida,
		Quantidade:        5,
	})
	require.NoError(t, err)

	// a saída sai valorizada pelo custo médio vigente, que permanece intacto
	assert.True(t, mov.CustoUnitario.Equal(decimal.RequireFromString("15.00")))
	saldo := e.saldo(t, 1)
	assert.Equal(t, 15, saldo.QuantidadeTotal)
	assert.True(t, saldo.PrecoCustoMedio.Equal(decimal.RequireFromString("15.00")))
}

func TestRegistrarMovimentacao_SaidaNaoConsomeReservado(t *testing.T) {
	e := newEngine(t)
	e.entrada(t, 1, 10, "10.00")

	_, err := e.reservas.Reservar(context.Background(), 1, 100, 6)
	require.NoError(t, err)

	// total 10, reservado 6: uma saída de 5 deixaria o total abaixo do reservado
	_, err = e.movimentacoes.RegistrarMovimentacao(context.Background(), estoque.MovimentacaoInput{
		ProdutoCatalogoID: 1,
		Tipo:              entity.TipoMovimentacaoSaida,
		Quantidade:        5,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEstoqueInsuficiente)

	var insuficiente *domain.EstoqueInsuficienteError
	require.ErrorAs(t, err, &insuficiente)
	assert.Equal(t, 5, insuficiente.Solicitada)
	assert.Equal(t, 4, insuficiente.Disponivel)

	// a falha não deixa rastro no saldo nem no razão
	saldo := e.saldo(t, 1)
	assert.Equal(t, 10, saldo.QuantidadeTotal)
	assert.Equal(t, 6, saldo.QuantidadeReservada)
}

func TestRegistrarMovimentacao_ValidaEntrada(t *testing.T) {
	e := newEngine(t)

	_, err := e.movimentacoes.RegistrarMovimentacao(context.Background(), estoque.MovimentacaoInput{
		ProdutoCatalogoID: 1, Tipo: entity.TipoMovimentacaoEntrada, Quantidade: 0,
	})
	assert.ErrorIs(t, err, domain.ErrQuantidadeInvalida, "quantidade zero")

	_, err = e.movimentacoes.RegistrarMovimentacao(context.Background(), estoque.MovimentacaoInput{
		ProdutoCatalogoID: 1, Tipo: entity.TipoMovimentacaoEntrada, Quantidade: 5,
	})
	assert.ErrorIs(t, err, domain.ErrQuantidadeInvalida, "entrada sem custo unitário")

	negativo := decimal.RequireFromString("-1.00")
	_, err = e.movimentacoes.RegistrarMovimentacao(context.Background(), estoque.MovimentacaoInput{
		ProdutoCatalogoID: 1, Tipo: entity.TipoMovimentacaoEntrada, Quantidade: 5, CustoUnitario: &negativo,
	})
	assert.ErrorIs(t, err, domain.ErrQuantidadeInvalida, "custo negativo")

	_, err = e.movimentacoes.RegistrarMovimentacao(context.Background(), estoque.MovimentacaoInput{
		ProdutoCatalogoID: 1, Tipo: "AJUSTE", Quantidade: 5,
	})
	assert.ErrorIs(t, err, domain.ErrQuantidadeInvalida, "tipo desconhecido")
}

func TestListarMovimentacoes_Filtros(t *testing.T) {
	e := newEngine(t)
	e.entrada(t, 1, 10, "10.00")
	e.entrada(t, 2, 5, "4.00")
	_, err := e.movimentacoes.RegistrarMovimentacao(context.Background(), estoque.MovimentacaoInput{
		ProdutoCatalogoID: 1, Tipo: entity.TipoMovimentacaoSaida, Quantidade: 3,
	})
	require.NoError(t, err)

	produtoID := int64(1)
	movs, err := e.movimentacoes.ListarMovimentacoes(context.Background(), filtroProduto(produtoID))
	require.NoError(t, err)
	assert.Len(t, movs, 2)
	for _, m := range movs {
		assert.Equal(t, produtoID, m.ProdutoCatalogoID)
	}

	tipo := entity.TipoMovimentacaoSaida
	f := filtroProduto(produtoID)
	f.Tipo = &tipo
	movs, err = e.movimentacoes.ListarMovimentacoes(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, 3, movs[0].Quantidade)
}

func TestBuscarPorID_NaoEncontrado(t *testing.T) {
	e := newEngine(t)
	_, err := e.movimentacoes.BuscarPorID(context.Background(), "inexistente")
	assert.ErrorIs(t, err, domain.ErrNaoEncontrado)
}

// ──────────────────────────────────────────────────────────────────────────────
// Saldo: estoque mínimo e baixo estoque
// ──────────────────────────────────────────────────────────────────────────────

func TestAtualizarEstoqueMinimo_EListarBaixoEstoque(t *testing.T) {
	e := newEngine(t)
	e.entrada(t, 1, 10, "10.00")
	e.entrada(t, 2, 2, "5.00")

	_, err := e.saldos.AtualizarEstoqueMinimo(context.Background(), 2, 5)
	require.NoError(t, err)

	baixos, err := e.saldos.ListarBaixoEstoque(context.Background())
	require.NoError(t, err)
	require.Len(t, baixos, 1)
	assert.Equal(t, int64(2), baixos[0].ProdutoCatalogoID)
	assert.True(t, baixos[0].BaixoEstoque())
}

func TestObterSaldo_CriaLinhaZerada(t *testing.T) {
	e := newEngine(t)
	saldo := e.saldo(t, 99)
	assert.Equal(t, int64(99), saldo.ProdutoCatalogoID)
	assert.Equal(t, 0, saldo.QuantidadeTotal)
	assert.Equal(t, 0, saldo.QuantidadeDisponivel())
	assert.True(t, saldo.PrecoCustoMedio.IsZero())
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservas
// ──────────────────────────────────────────────────────────────────────────────

func TestReservar_AtualizaReservado(t *testing.T) {
	e := newEngine(t)
	e.entrada(t, 1, 10, "10.00")

	reserva, err := e.reservas.Reservar(context.Background(), 1, 100, 4)
	require.NoError(t, err)
	assert.True(t, reserva.Ativa)
	assert.Equal(t, 4, reserva.QuantidadeReservada)

	saldo := e.saldo(t, 1)
	assert.Equal(t, 4, saldo.QuantidadeReservada)
	assert.Equal(t, 6, saldo.QuantidadeDisponivel())
}

func TestReservar_InsuficienteNaoDeixaRastro(t *testing.T) {
	e := newEngine(t)
	e.entrada(t, 1, 3, "10.00")

	_, err := e.reservas.Reservar(context.Background(), 1, 100, 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEstoqueInsuficiente)

	saldo := e.saldo(t, 1)
	assert.Equal(t, 0, saldo.QuantidadeReservada)

	reservas, err := e.reservas.ListarPorOrdemServico(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, reservas)
}

func TestReservar_QuantidadeInvalida(t *testing.T) {
	e := newEngine(t)
	_, err := e.reservas.Reservar(context.Background(), 1, 100, 0)
	assert.ErrorIs(t, err, domain.ErrQuantidadeInvalida)
}

func TestCancelarPorOrdemServico_LiberaEReprocessaSaldo(t *testing.T) {
	e := newEngine(t)
	e.entrada(t, 1, 10, "10.00")
	e.entrada(t, 2, 10, "20.00")
	_, err := e.reservas.Reservar(context.Background(), 1, 100, 4)
	require.NoError(t, err)
	_, err = e.reservas.Reservar(context.Background(), 2, 100, 2)
	require.NoError(t, err)

	require.NoError(t, e.reservas.CancelarPorOrdemServico(context.Background(), 100))

	assert.Equal(t, 0, e.saldo(t, 1).QuantidadeReservada)
	assert.Equal(t, 0, e.saldo(t, 2).QuantidadeReservada)

	// histórico preservado, reservas inativas com cancelada_em preenchido
	reservas, err := e.reservas.ListarPorOrdemServico(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, reservas, 2)
	for _, r := range reservas {
		assert.False(t, r.Ativa)
		assert.NotNil(t, r.CanceladaEm)
	}
}

func TestCancelarPorOrdemServico_Idempotente(t *testing.T) {
	e := newEngine(t)
	e.entrada(t, 1, 10, "10.00")
	_, err := e.reservas.Reservar(context.Background(), 1, 100, 4)
	require.NoError(t, err)

	require.NoError(t, e.reservas.CancelarPorOrdemServico(context.Background(), 100))
	require.NoError(t, e.reservas.CancelarPorOrdemServico(context.Background(), 100))
	require.NoError(t, e.reservas.CancelarPorOrdemServico(context.Background(), 999))

	assert.Equal(t, 0, e.saldo(t, 1).QuantidadeReservada)
}

// ──────────────────────────────────────────────────────────────────────────────
// Lote de reservas: all-or-nothing e best-effort
// ──────────────────────────────────────────────────────────────────────────────

func TestReservarEmLote_AtomicoRevertTudoNaPrimeiraFalha(t *testing.T) {
	e := newEngine(t)
	e.entrada(t, 1, 10, "10.00")
	e.entrada(t, 2, 1, "5.00")

	resp, err := e.lote.ReservarEmLote(context.Background(), dto.ReservaLoteRequest{
		OrdemServicoID: 100,
		AllOrNothing:   true,
		Itens: []dto.ItemReservaLote{
			{ProdutoCatalogoID: 1, Quantidade: 4},
			{ProdutoCatalogoID: 2, Quantidade: 5}, // insuficiente
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEstoqueInsuficiente)

	require.NotNil(t, resp)
	assert.False(t, resp.SucessoGeral)
	require.Len(t, resp.Itens, 2)
	// o primeiro item chegou a ser reservado, mas a transação foi revertida:
	// o relatório precisa refletir o estado final, não o intermediário
	assert.Equal(t, dto.StatusItemReservaErro, resp.Itens[0].Status)
	assert.Equal(t, 0, resp.Itens[0].Reservada)
	assert.Empty(t, resp.Itens[0].ReservaItemID)
	assert.Equal(t, dto.StatusItemReservaErro, resp.Itens[1].Status)
	assert.Contains(t, resp.Itens[1].Detalhe, "estoque insuficiente")

	// nada ficou reservado
	assert.Equal(t, 0, e.saldo(t, 1).QuantidadeReservada)
	assert.Equal(t, 0, e.saldo(t, 2).QuantidadeReservada)
	reservas, err := e.reservas.ListarPorOrdemServico(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, reservas)
}

func TestReservarEmLote_AtomicoSucesso(t *testing.T) {
	e := newEngine(t)
	e.entrada(t, 1, 10, "10.00")
	e.entrada(t, 2, 10, "5.00")

	resp, err := e.lote.ReservarEmLote(context.Background(), dto.ReservaLoteRequest{
		OrdemServicoID: 100,
		AllOrNothing:   true,
		Itens: []dto.ItemReservaLote{
			{ProdutoCatalogoID: 1, Quantidade: 4},
			{ProdutoCatalogoID: 2, Quantidade: 2},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.SucessoGeral)
	require.Len(t, resp.Itens, 2)
	for _, item := range resp.Itens {
		assert.Equal(t, dto.StatusItemReservaOK, item.Status)
		assert.NotEmpty(t, item.ReservaItemID)
	}
	assert.Equal(t, 4, e.saldo(t, 1).QuantidadeReservada)
	assert.Equal(t, 2, e.saldo(t, 2).QuantidadeReservada)
}

func TestReservarEmLote_BestEffortMantemSucessosParciais(t *testing.T) {
	e := newEngine(t)
	e.entrada(t, 1, 10, "10.00")
	e.entrada(t, 2, 1, "5.00")

	resp, err := e.lote.ReservarEmLote(context.Background(), dto.ReservaLoteRequest{
		OrdemServicoID: 100,
		AllOrNothing:   false,
		Itens: []dto.ItemReservaLote{
			{ProdutoCatalogoID: 1, Quantidade: 4},
			{ProdutoCatalogoID: 2, Quantidade: 5}, // insuficiente
		},
	})
	require.NoError(t, err)
	assert.False(t, resp.SucessoGeral)
	require.Len(t, resp.Itens, 2)

	assert.Equal(t, dto.StatusItemReservaOK, resp.Itens[0].Status)
	assert.Equal(t, 4, resp.Itens[0].Reservada)
	assert.Equal(t, dto.StatusItemReservaErro, resp.Itens[1].Status)
	assert.Equal(t, 0, resp.Itens[1].Reservada)

	// o sucesso do item 1 permanece
	assert.Equal(t, 4, e.saldo(t, 1).QuantidadeReservada)
	assert.Equal(t, 0, e.saldo(t, 2).QuantidadeReservada)
}

func TestReservarEmLote_OrdemDosItensPreservada(t *testing.T) {
	e := newEngine(t)
	e.entrada(t, 3, 10, "1.00")
	e.entrada(t, 1, 10, "1.00")
	e.entrada(t, 2, 10, "1.00")

	resp, err := e.lote.ReservarEmLote(context.Background(), dto.ReservaLoteRequest{
		OrdemServicoID: 100,
		Itens: []dto.ItemReservaLote{
			{ProdutoCatalogoID: 3, Quantidade: 1},
			{ProdutoCatalogoID: 1, Quantidade: 1},
			{ProdutoCatalogoID: 2, Quantidade: 1},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.Itens, 3)
	assert.Equal(t, int64(3), resp.Itens[0].ProdutoCatalogoID)
	assert.Equal(t, int64(1), resp.Itens[1].ProdutoCatalogoID)
	assert.Equal(t, int64(2), resp.Itens[2].ProdutoCatalogoID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Concorrência: o bloqueio por produto impede reservar além do disponível
// ──────────────────────────────────────────────────────────────────────────────

func TestReservar_ConcorrenciaNaoUltrapassaDisponivel(t *testing.T) {
	e := newEngine(t)
	e.entrada(t, 1, 50, "10.00")

	const tentativas = 100
	var wg sync.WaitGroup
	var mu sync.Mutex
	sucessos := 0

	for i := 0; i < tentativas; i++ {
		wg.Add(1)
		go func(os int64) {
			defer wg.Done()
			_, err := e.reservas.Reservar(context.Background(), 1, os, 1)
			if err == nil {
				mu.Lock()
				sucessos++
				mu.Unlock()
				return
			}
			if !errors.Is(err, domain.ErrEstoqueInsuficiente) {
				t.Errorf("erro inesperado: %v", err)
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 50, sucessos, "só o disponível pode ser reservado")
	saldo := e.saldo(t, 1)
	assert.Equal(t, 50, saldo.QuantidadeReservada)
	assert.Equal(t, 0, saldo.QuantidadeDisponivel())
}

func filtroProduto(produtoID int64) (f repository.MovimentacaoFiltro) {
	f.ProdutoCatalogoID = &produtoID
	return f
}
