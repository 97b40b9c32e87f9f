package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
)

// MovimentacaoRequest body do POST /api/estoque/movimentacoes.
type MovimentacaoRequest struct {
	ProdutoCatalogoID   int64            `json:"produto_catalogo_id" validate:"required,gt=0"`
	Tipo                string           `json:"tipo" validate:"required,oneof=ENTRADA SAIDA"`
	Quantidade          int              `json:"quantidade" validate:"required,gt=0"`
	CustoUnitario       *decimal.Decimal `json:"custo_unitario,omitempty"` // obrigatório na ENTRADA
	DocumentoReferencia *string          `json:"documento_referencia,omitempty"`
	Observacao          *string          `json:"observacao,omitempty"`
}

// MovimentacaoResponse representação de uma movimentação do razão.
type MovimentacaoResponse struct {
	ID                  string          `json:"id"`
	ProdutoCatalogoID   int64           `json:"produto_catalogo_id"`
	Tipo                string          `json:"tipo"`
	Quantidade          int             `json:"quantidade"`
	CustoUnitario       decimal.Decimal `json:"custo_unitario"`
	DocumentoReferencia *string         `json:"documento_referencia,omitempty"`
	Observacao          *string         `json:"observacao,omitempty"`
	DataMovimentacao    time.Time       `json:"data_movimentacao"`
}

// NewMovimentacaoResponse mapeia a entidade para a resposta HTTP.
func NewMovimentacaoResponse(m *entity.MovimentacaoEstoque) MovimentacaoResponse {
	return MovimentacaoResponse{
		ID:                  m.ID,
		ProdutoCatalogoID:   m.ProdutoCatalogoID,
		Tipo:                m.Tipo,
		Quantidade:          m.Quantidade,
		CustoUnitario:       m.CustoUnitario,
		DocumentoReferencia: m.DocumentoReferencia,
		Observacao:          m.Observacao,
		DataMovimentacao:    m.DataMovimentacao,
	}
}

// SaldoEstoqueResponse saldo consolidado de um produto.
type SaldoEstoqueResponse struct {
	ProdutoCatalogoID    int64           `json:"produto_catalogo_id"`
	QuantidadeTotal      int             `json:"quantidade_total"`
	QuantidadeReservada  int             `json:"quantidade_reservada"`
	QuantidadeDisponivel int             `json:"quantidade_disponivel"`
	EstoqueMinimo        int             `json:"estoque_minimo"`
	BaixoEstoque         bool            `json:"baixo_estoque"`
	PrecoCustoMedio      decimal.Decimal `json:"preco_custo_medio"`
	UltimaAtualizacao    time.Time       `json:"ultima_atualizacao"`
}

// NewSaldoEstoqueResponse mapeia a entidade para a resposta HTTP.
func NewSaldoEstoqueResponse(s *entity.SaldoEstoque) SaldoEstoqueResponse {
	return SaldoEstoqueResponse{
		ProdutoCatalogoID:    s.ProdutoCatalogoID,
		QuantidadeTotal:      s.QuantidadeTotal,
		QuantidadeReservada:  s.QuantidadeReservada,
		QuantidadeDisponivel: s.QuantidadeDisponivel(),
		EstoqueMinimo:        s.EstoqueMinimo,
		BaixoEstoque:         s.BaixoEstoque(),
		PrecoCustoMedio:      s.PrecoCustoMedio,
		UltimaAtualizacao:    s.UltimaAtualizacao,
	}
}

// EstoqueMinimoRequest body do PATCH de estoque mínimo.
type EstoqueMinimoRequest struct {
	EstoqueMinimo int `json:"estoque_minimo" validate:"gte=0"`
}
