package repository

import (
	"time"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
)

// MovimentacaoFiltro filtros opcionais da listagem de movimentações.
// Campo nil = sem restrição naquela dimensão; datas são inclusivas.
type MovimentacaoFiltro struct {
	ProdutoCatalogoID *int64
	Tipo              *string
	DataInicio        *time.Time
	DataFim           *time.Time
}

// MovimentacaoEstoqueRepository define a porta de persistência do razão de
// movimentações. Registros são append-only: nunca atualizados nem removidos.
type MovimentacaoEstoqueRepository interface {
	Create(movimentacao *entity.MovimentacaoEstoque) error
	GetByID(id string) (*entity.MovimentacaoEstoque, error)
	ListWithFilters(filtro MovimentacaoFiltro) ([]*entity.MovimentacaoEstoque, error)
}
