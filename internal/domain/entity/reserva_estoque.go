package entity

import "time"

// ReservaEstoque é uma retenção temporária de estoque disponível para uma ordem
// de serviço. O cancelamento é soft-delete (Ativa=false) para preservar a
// trilha de auditoria; várias reservas podem apontar para a mesma OS (uma por
// linha de produto).
type ReservaEstoque struct {
	ID                  string
	ProdutoCatalogoID   int64
	OrdemServicoID      int64
	QuantidadeReservada int
	Ativa               bool
	CriadaEm            time.Time
	CanceladaEm         *time.Time
}
