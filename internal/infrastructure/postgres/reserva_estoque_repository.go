package postgres

import (
	"context"
	"fmt"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
)

var _ repository.ReservaEstoqueRepository = (*ReservaEstoqueRepo)(nil)

// ReservaEstoqueRepo implementação de ReservaEstoqueRepository sobre PostgreSQL
// (usável com pool ou tx).
type ReservaEstoqueRepo struct {
	q Querier
}

// NewReservaEstoqueRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewReservaEstoqueRepository(q Querier) *ReservaEstoqueRepo {
	return &ReservaEstoqueRepo{q: q}
}

const reservaColunas = `id, produto_catalogo_id, ordem_servico_id, quantidade_reservada, ativa, criada_em, cancelada_em`

// Create persiste uma nova reserva.
func (r *ReservaEstoqueRepo) Create(reserva *entity.ReservaEstoque) error {
	query := `
		INSERT INTO reserva_estoque (` + reservaColunas + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		reserva.ID, reserva.ProdutoCatalogoID, reserva.OrdemServicoID,
		reserva.QuantidadeReservada, reserva.Ativa, reserva.CriadaEm, reserva.CanceladaEm,
	)
	if err != nil {
		return fmt.Errorf("create reserva: %w", err)
	}
	return nil
}

// Save persiste alterações de uma reserva existente (cancelamento).
func (r *ReservaEstoqueRepo) Save(reserva *entity.ReservaEstoque) error {
	query := `
		UPDATE reserva_estoque
		SET ativa = $2, cancelada_em = $3
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, reserva.ID, reserva.Ativa, reserva.CanceladaEm)
	if err != nil {
		return fmt.Errorf("save reserva: %w", err)
	}
	return nil
}

// ListAtivasPorOrdemServico devolve as reservas ativas da OS.
func (r *ReservaEstoqueRepo) ListAtivasPorOrdemServico(ordemServicoID int64) ([]*entity.ReservaEstoque, error) {
	query := `SELECT ` + reservaColunas + ` FROM reserva_estoque
		WHERE ordem_servico_id = $1 AND ativa ORDER BY criada_em`
	return r.list(query, ordemServicoID)
}

// ListPorOrdemServico devolve todas as reservas da OS, ativas e históricas.
func (r *ReservaEstoqueRepo) ListPorOrdemServico(ordemServicoID int64) ([]*entity.ReservaEstoque, error) {
	query := `SELECT ` + reservaColunas + ` FROM reserva_estoque
		WHERE ordem_servico_id = $1 ORDER BY criada_em`
	return r.list(query, ordemServicoID)
}

// SumAtivasPorProduto soma as quantidades das reservas ativas do produto.
func (r *ReservaEstoqueRepo) SumAtivasPorProduto(produtoCatalogoID int64) (int, error) {
	query := `SELECT COALESCE(SUM(quantidade_reservada), 0) FROM reserva_estoque
		WHERE produto_catalogo_id = $1 AND ativa`
	var total int
	if err := r.q.QueryRow(context.Background(), query, produtoCatalogoID).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum reservas ativas: %w", err)
	}
	return total, nil
}

func (r *ReservaEstoqueRepo) list(query string, args ...any) ([]*entity.ReservaEstoque, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reservas: %w", err)
	}
	defer rows.Close()
	var list []*entity.ReservaEstoque
	for rows.Next() {
		var re entity.ReservaEstoque
		if err := rows.Scan(&re.ID, &re.ProdutoCatalogoID, &re.OrdemServicoID,
			&re.QuantidadeReservada, &re.Ativa, &re.CriadaEm, &re.CanceladaEm); err != nil {
			return nil, fmt.Errorf("scan reserva: %w", err)
		}
		list = append(list, &re)
	}
	return list, rows.Err()
}
