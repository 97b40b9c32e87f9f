package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaldoEstoque é o saldo materializado de um produto do catálogo: uma linha por
// produto, mutada apenas sob o bloqueio exclusivo da linha. O saldo é um cache
// contínuo da história de movimentações, não recalculado do zero a cada leitura.
type SaldoEstoque struct {
	ProdutoCatalogoID   int64
	QuantidadeTotal     int // unidades físicas em estoque
	QuantidadeReservada int // unidades retidas por reservas ativas
	EstoqueMinimo       int
	PrecoCustoMedio     decimal.Decimal // custo médio ponderado das entradas
	UltimaAtualizacao   time.Time
}

// QuantidadeDisponivel é derivada, nunca armazenada: total - reservada.
func (s *SaldoEstoque) QuantidadeDisponivel() int {
	return s.QuantidadeTotal - s.QuantidadeReservada
}

// BaixoEstoque indica se o disponível caiu abaixo do estoque mínimo.
func (s *SaldoEstoque) BaixoEstoque() bool {
	return s.QuantidadeDisponivel() < s.EstoqueMinimo
}
