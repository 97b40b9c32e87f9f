package postgres

import (
	"context"
	"fmt"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
)

var _ repository.SaldoEstoqueRepository = (*SaldoEstoqueRepo)(nil)

// SaldoEstoqueRepo implementação de SaldoEstoqueRepository sobre PostgreSQL
// (usável com pool ou tx).
type SaldoEstoqueRepo struct {
	q Querier
}

// NewSaldoEstoqueRepository constrói o adaptador de saldo. Passar pool ou tx (Querier).
func NewSaldoEstoqueRepository(q Querier) *SaldoEstoqueRepo {
	return &SaldoEstoqueRepo{q: q}
}

const saldoColunas = `produto_catalogo_id, quantidade_total, quantidade_reservada, estoque_minimo, preco_custo_medio, ultima_atualizacao`

// GetOrCreate devolve o saldo do produto, inserindo a linha zerada no primeiro acesso.
func (r *SaldoEstoqueRepo) GetOrCreate(produtoCatalogoID int64) (*entity.SaldoEstoque, error) {
	if err := r.ensureRow(produtoCatalogoID); err != nil {
		return nil, err
	}
	query := `SELECT ` + saldoColunas + ` FROM saldo_estoque WHERE produto_catalogo_id = $1`
	var s entity.SaldoEstoque
	err := r.q.QueryRow(context.Background(), query, produtoCatalogoID).Scan(
		&s.ProdutoCatalogoID, &s.QuantidadeTotal, &s.QuantidadeReservada,
		&s.EstoqueMinimo, &s.PrecoCustoMedio, &s.UltimaAtualizacao,
	)
	if err != nil {
		return nil, fmt.Errorf("get saldo: %w", err)
	}
	return &s, nil
}

// GetForUpdate garante a existência da linha e a bloqueia para escrita
// (SELECT FOR UPDATE). Espera limitada pelo lock_timeout da transação; ao
// expirar devolve domain.ErrLockTimeout.
func (r *SaldoEstoqueRepo) GetForUpdate(produtoCatalogoID int64) (*entity.SaldoEstoque, error) {
	if err := r.ensureRow(produtoCatalogoID); err != nil {
		return nil, err
	}
	query := `SELECT ` + saldoColunas + ` FROM saldo_estoque WHERE produto_catalogo_id = $1 FOR UPDATE`
	var s entity.SaldoEstoque
	err := r.q.QueryRow(context.Background(), query, produtoCatalogoID).Scan(
		&s.ProdutoCatalogoID, &s.QuantidadeTotal, &s.QuantidadeReservada,
		&s.EstoqueMinimo, &s.PrecoCustoMedio, &s.UltimaAtualizacao,
	)
	if err != nil {
		if isLockNotAvailable(err) {
			return nil, domain.ErrLockTimeout
		}
		return nil, fmt.Errorf("get saldo for update: %w", err)
	}
	return &s, nil
}

// ensureRow insere a linha zerada se ainda não existir (criação preguiçosa do saldo).
func (r *SaldoEstoqueRepo) ensureRow(produtoCatalogoID int64) error {
	query := `
		INSERT INTO saldo_estoque (produto_catalogo_id, quantidade_total, quantidade_reservada, estoque_minimo, preco_custo_medio, ultima_atualizacao)
		VALUES ($1, 0, 0, 0, 0, now())
		ON CONFLICT (produto_catalogo_id) DO NOTHING`
	if _, err := r.q.Exec(context.Background(), query, produtoCatalogoID); err != nil {
		if isLockNotAvailable(err) {
			return domain.ErrLockTimeout
		}
		return fmt.Errorf("ensure saldo: %w", err)
	}
	return nil
}

// Save persiste a linha de saldo (a linha já existe e está bloqueada pela tx).
func (r *SaldoEstoqueRepo) Save(saldo *entity.SaldoEstoque) error {
	query := `
		UPDATE saldo_estoque
		SET quantidade_total = $2, quantidade_reservada = $3, estoque_minimo = $4,
		    preco_custo_medio = $5, ultima_atualizacao = $6
		WHERE produto_catalogo_id = $1`
	_, err := r.q.Exec(context.Background(), query,
		saldo.ProdutoCatalogoID, saldo.QuantidadeTotal, saldo.QuantidadeReservada,
		saldo.EstoqueMinimo, saldo.PrecoCustoMedio, saldo.UltimaAtualizacao,
	)
	if err != nil {
		return fmt.Errorf("save saldo: %w", err)
	}
	return nil
}

// List devolve todos os saldos, ordenados por produto.
func (r *SaldoEstoqueRepo) List() ([]*entity.SaldoEstoque, error) {
	query := `SELECT ` + saldoColunas + ` FROM saldo_estoque ORDER BY produto_catalogo_id`
	return r.list(query)
}

// ListBaixoEstoque devolve os saldos com disponível abaixo do estoque mínimo.
func (r *SaldoEstoqueRepo) ListBaixoEstoque() ([]*entity.SaldoEstoque, error) {
	query := `SELECT ` + saldoColunas + ` FROM saldo_estoque
		WHERE quantidade_total - quantidade_reservada < estoque_minimo
		ORDER BY produto_catalogo_id`
	return r.list(query)
}

func (r *SaldoEstoqueRepo) list(query string, args ...any) ([]*entity.SaldoEstoque, error) {
	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list saldos: %w", err)
	}
	defer rows.Close()
	var list []*entity.SaldoEstoque
	for rows.Next() {
		var s entity.SaldoEstoque
		if err := rows.Scan(&s.ProdutoCatalogoID, &s.QuantidadeTotal, &s.QuantidadeReservada,
			&s.EstoqueMinimo, &s.PrecoCustoMedio, &s.UltimaAtualizacao); err != nil {
			return nil, fmt.Errorf("scan saldo: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}
