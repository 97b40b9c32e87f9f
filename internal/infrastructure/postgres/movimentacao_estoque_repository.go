package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
)

var _ repository.MovimentacaoEstoqueRepository = (*MovimentacaoEstoqueRepo)(nil)

// MovimentacaoEstoqueRepo implementação do razão de movimentações sobre
// PostgreSQL (usável com pool ou tx). Só há INSERT e SELECT: o razão é
// append-only.
type MovimentacaoEstoqueRepo struct {
	q Querier
}

// NewMovimentacaoEstoqueRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewMovimentacaoEstoqueRepository(q Querier) *MovimentacaoEstoqueRepo {
	return &MovimentacaoEstoqueRepo{q: q}
}

const movimentacaoColunas = `id, produto_catalogo_id, tipo, quantidade, custo_unitario, documento_referencia, observacao, data_movimentacao, criado_em`

// Create persiste uma movimentação no razão.
func (r *MovimentacaoEstoqueRepo) Create(m *entity.MovimentacaoEstoque) error {
	query := `
		INSERT INTO movimentacao_estoque (` + movimentacaoColunas + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.ProdutoCatalogoID, m.Tipo, m.Quantidade, m.CustoUnitario,
		m.DocumentoReferencia, m.Observacao, m.DataMovimentacao, m.CriadoEm,
	)
	if err != nil {
		return fmt.Errorf("create movimentacao: %w", err)
	}
	return nil
}

// GetByID obtém uma movimentação por ID. Devolve nil sem erro quando não existe.
func (r *MovimentacaoEstoqueRepo) GetByID(id string) (*entity.MovimentacaoEstoque, error) {
	query := `SELECT ` + movimentacaoColunas + ` FROM movimentacao_estoque WHERE id = $1`
	var m entity.MovimentacaoEstoque
	err := r.q.QueryRow(context.Background(), query, id).Scan(
		&m.ID, &m.ProdutoCatalogoID, &m.Tipo, &m.Quantidade, &m.CustoUnitario,
		&m.DocumentoReferencia, &m.Observacao, &m.DataMovimentacao, &m.CriadoEm,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movimentacao: %w", err)
	}
	return &m, nil
}

// ListWithFilters lista o razão com filtros opcionais de produto, tipo e
// período (datas inclusivas). Filtro ausente = sem restrição.
func (r *MovimentacaoEstoqueRepo) ListWithFilters(filtro repository.MovimentacaoFiltro) ([]*entity.MovimentacaoEstoque, error) {
	query := `SELECT ` + movimentacaoColunas + ` FROM movimentacao_estoque WHERE 1=1`
	var args []any
	pos := 1
	if filtro.ProdutoCatalogoID != nil {
		query += fmt.Sprintf(" AND produto_catalogo_id = $%d", pos)
		args = append(args, *filtro.ProdutoCatalogoID)
		pos++
	}
	if filtro.Tipo != nil {
		query += fmt.Sprintf(" AND tipo = $%d", pos)
		args = append(args, *filtro.Tipo)
		pos++
	}
	if filtro.DataInicio != nil {
		query += fmt.Sprintf(" AND data_movimentacao >= $%d", pos)
		args = append(args, *filtro.DataInicio)
		pos++
	}
	if filtro.DataFim != nil {
		query += fmt.Sprintf(" AND data_movimentacao <= $%d", pos)
		args = append(args, *filtro.DataFim)
		pos++
	}
	query += " ORDER BY data_movimentacao DESC"

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movimentacoes: %w", err)
	}
	defer rows.Close()
	var list []*entity.MovimentacaoEstoque
	for rows.Next() {
		var m entity.MovimentacaoEstoque
		if err := rows.Scan(&m.ID, &m.ProdutoCatalogoID, &m.Tipo, &m.Quantidade, &m.CustoUnitario,
			&m.DocumentoReferencia, &m.Observacao, &m.DataMovimentacao, &m.CriadoEm); err != nil {
			return nil, fmt.Errorf("scan movimentacao: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
