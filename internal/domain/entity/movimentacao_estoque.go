package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimentação de estoque.
const (
	TipoMovimentacaoEntrada = "ENTRADA"
	TipoMovimentacaoSaida   = "SAIDA"
)

// MovimentacaoEstoque é um registro imutável de entrada ou saída física de
// estoque. Uma vez persistido nunca é alterado nem removido; o saldo é derivado
// deste razão (ledger).
type MovimentacaoEstoque struct {
	ID                  string
	ProdutoCatalogoID   int64
	Tipo                string
	Quantidade          int
	CustoUnitario       decimal.Decimal // informado na ENTRADA; na SAIDA, custo médio vigente
	DocumentoReferencia *string         // ex.: número de nota fiscal
	Observacao          *string
	DataMovimentacao    time.Time
	CriadoEm            time.Time
}
