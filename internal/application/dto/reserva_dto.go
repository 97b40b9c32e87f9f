package dto

import (
	"time"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
)

// Status de cada item do relatório de reserva em lote.
const (
	StatusItemReservaOK   = "OK"
	StatusItemReservaErro = "ERRO"
)

// ReservaRequest body do POST /api/reservas.
type ReservaRequest struct {
	ProdutoCatalogoID int64 `json:"produto_catalogo_id" validate:"required,gt=0"`
	OrdemServicoID    int64 `json:"ordem_servico_id" validate:"required,gt=0"`
	Quantidade        int   `json:"quantidade" validate:"required,gt=0"`
}

// ReservaResponse representação de uma reserva.
type ReservaResponse struct {
	ID                  string     `json:"id"`
	ProdutoCatalogoID   int64      `json:"produto_catalogo_id"`
	OrdemServicoID      int64      `json:"ordem_servico_id"`
	QuantidadeReservada int        `json:"quantidade_reservada"`
	Ativa               bool       `json:"ativa"`
	CriadaEm            time.Time  `json:"criada_em"`
	CanceladaEm         *time.Time `json:"cancelada_em,omitempty"`
}

// NewReservaResponse mapeia a entidade para a resposta HTTP.
func NewReservaResponse(r *entity.ReservaEstoque) ReservaResponse {
	return ReservaResponse{
		ID:                  r.ID,
		ProdutoCatalogoID:   r.ProdutoCatalogoID,
		OrdemServicoID:      r.OrdemServicoID,
		QuantidadeReservada: r.QuantidadeReservada,
		Ativa:               r.Ativa,
		CriadaEm:            r.CriadaEm,
		CanceladaEm:         r.CanceladaEm,
	}
}

// ItemReservaLote um item (produto, quantidade) do pedido de lote.
type ItemReservaLote struct {
	ProdutoCatalogoID int64 `json:"produto_catalogo_id" validate:"required,gt=0"`
	Quantidade        int   `json:"quantidade" validate:"required,gt=0"`
}

// ReservaLoteRequest body do POST /api/reservas/lote. Os itens são processados
// na ordem enviada.
type ReservaLoteRequest struct {
	OrdemServicoID int64             `json:"ordem_servico_id" validate:"required,gt=0"`
	Itens          []ItemReservaLote `json:"itens" validate:"required,min=1,dive"`
	AllOrNothing   bool              `json:"all_or_nothing"`
}

// ItemReservaResult resultado por item do lote.
type ItemReservaResult struct {
	ProdutoCatalogoID int64  `json:"produto_catalogo_id"`
	Solicitada        int    `json:"solicitada"`
	Reservada         int    `json:"reservada"`
	Status            string `json:"status"` // OK | ERRO
	Detalhe           string `json:"detalhe,omitempty"`
	ReservaItemID     string `json:"reserva_item_id,omitempty"`
}

// ReservaLoteResponse relatório do lote. SucessoGeral só é true quando nenhum
// item terminou em ERRO.
type ReservaLoteResponse struct {
	OrdemServicoID int64               `json:"ordem_servico_id"`
	SucessoGeral   bool                `json:"sucesso_geral"`
	Itens          []ItemReservaResult `json:"itens"`
}
