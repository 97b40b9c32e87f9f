package memory

import (
	"sort"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
)

// Adaptadores de leitura sobre o estado confirmado do Store, espelhando os
// construtores do driver postgres. Mutações do motor passam sempre pelo
// TxRunner; as escritas diretas daqui aplicam imediatamente (seed de testes).

var _ repository.SaldoEstoqueRepository = (*SaldoEstoqueRepo)(nil)
var _ repository.MovimentacaoEstoqueRepository = (*MovimentacaoEstoqueRepo)(nil)
var _ repository.ReservaEstoqueRepository = (*ReservaEstoqueRepo)(nil)

// SaldoEstoqueRepo adaptador de saldo sobre o Store.
type SaldoEstoqueRepo struct {
	s *Store
}

// NewSaldoEstoqueRepository constrói o adaptador de saldo.
func NewSaldoEstoqueRepository(s *Store) *SaldoEstoqueRepo {
	return &SaldoEstoqueRepo{s: s}
}

// GetOrCreate devolve o saldo, criando a linha zerada no primeiro acesso.
func (r *SaldoEstoqueRepo) GetOrCreate(produtoCatalogoID int64) (*entity.SaldoEstoque, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	saldo, ok := r.s.saldos[produtoCatalogoID]
	if !ok {
		saldo = saldoZerado(produtoCatalogoID)
		r.s.saldos[produtoCatalogoID] = saldo
	}
	c := saldo
	return &c, nil
}

// GetForUpdate fora de transação não bloqueia: devolve o saldo confirmado.
// Mutações reais acontecem pelos repositórios do TxRunner.
func (r *SaldoEstoqueRepo) GetForUpdate(produtoCatalogoID int64) (*entity.SaldoEstoque, error) {
	return r.GetOrCreate(produtoCatalogoID)
}

// Save aplica o saldo diretamente ao estado confirmado.
func (r *SaldoEstoqueRepo) Save(saldo *entity.SaldoEstoque) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.saldos[saldo.ProdutoCatalogoID] = *saldo
	return nil
}

// List devolve todos os saldos ordenados por produto.
func (r *SaldoEstoqueRepo) List() ([]*entity.SaldoEstoque, error) {
	return r.listar(func(*entity.SaldoEstoque) bool { return true }), nil
}

// ListBaixoEstoque devolve os saldos com disponível abaixo do mínimo.
func (r *SaldoEstoqueRepo) ListBaixoEstoque() ([]*entity.SaldoEstoque, error) {
	return r.listar(func(s *entity.SaldoEstoque) bool { return s.BaixoEstoque() }), nil
}

func (r *SaldoEstoqueRepo) listar(keep func(*entity.SaldoEstoque) bool) []*entity.SaldoEstoque {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.SaldoEstoque
	for _, saldo := range r.s.saldos {
		c := saldo
		if keep(&c) {
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].ProdutoCatalogoID < list[j].ProdutoCatalogoID
	})
	return list
}

// MovimentacaoEstoqueRepo adaptador do razão sobre o Store.
type MovimentacaoEstoqueRepo struct {
	s *Store
}

// NewMovimentacaoEstoqueRepository constrói o adaptador do razão.
func NewMovimentacaoEstoqueRepository(s *Store) *MovimentacaoEstoqueRepo {
	return &MovimentacaoEstoqueRepo{s: s}
}

// Create anexa a movimentação ao razão confirmado.
func (r *MovimentacaoEstoqueRepo) Create(m *entity.MovimentacaoEstoque) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.movIdx[m.ID] = len(r.s.movs)
	r.s.movs = append(r.s.movs, *m)
	return nil
}

// GetByID devolve nil sem erro quando a movimentação não existe.
func (r *MovimentacaoEstoqueRepo) GetByID(id string) (*entity.MovimentacaoEstoque, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	idx, ok := r.s.movIdx[id]
	if !ok {
		return nil, nil
	}
	c := r.s.movs[idx]
	return &c, nil
}

// ListWithFilters lista o razão com os filtros opcionais.
func (r *MovimentacaoEstoqueRepo) ListWithFilters(filtro repository.MovimentacaoFiltro) ([]*entity.MovimentacaoEstoque, error) {
	return filtraMovimentacoes(r.snapshot(), filtro), nil
}

func (r *MovimentacaoEstoqueRepo) snapshot() []entity.MovimentacaoEstoque {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]entity.MovimentacaoEstoque(nil), r.s.movs...)
}

// ReservaEstoqueRepo adaptador de reservas sobre o Store.
type ReservaEstoqueRepo struct {
	s *Store
}

// NewReservaEstoqueRepository constrói o adaptador de reservas.
func NewReservaEstoqueRepository(s *Store) *ReservaEstoqueRepo {
	return &ReservaEstoqueRepo{s: s}
}

// Create persiste a reserva no estado confirmado.
func (r *ReservaEstoqueRepo) Create(reserva *entity.ReservaEstoque) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.reservaIdx[reserva.ID] = len(r.s.reservas)
	r.s.reservas = append(r.s.reservas, *reserva)
	return nil
}

// Save substitui a reserva existente.
func (r *ReservaEstoqueRepo) Save(reserva *entity.ReservaEstoque) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if idx, ok := r.s.reservaIdx[reserva.ID]; ok {
		r.s.reservas[idx] = *reserva
	}
	return nil
}

// ListAtivasPorOrdemServico devolve as reservas ativas da OS.
func (r *ReservaEstoqueRepo) ListAtivasPorOrdemServico(ordemServicoID int64) ([]*entity.ReservaEstoque, error) {
	return r.listar(func(re *entity.ReservaEstoque) bool {
		return re.OrdemServicoID == ordemServicoID && re.Ativa
	}), nil
}

// ListPorOrdemServico devolve todas as reservas da OS, ativas e históricas.
func (r *ReservaEstoqueRepo) ListPorOrdemServico(ordemServicoID int64) ([]*entity.ReservaEstoque, error) {
	return r.listar(func(re *entity.ReservaEstoque) bool {
		return re.OrdemServicoID == ordemServicoID
	}), nil
}

// SumAtivasPorProduto soma as quantidades das reservas ativas do produto.
func (r *ReservaEstoqueRepo) SumAtivasPorProduto(produtoCatalogoID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := 0
	for _, re := range r.s.reservas {
		if re.ProdutoCatalogoID == produtoCatalogoID && re.Ativa {
			total += re.QuantidadeReservada
		}
	}
	return total, nil
}

func (r *ReservaEstoqueRepo) listar(keep func(*entity.ReservaEstoque) bool) []*entity.ReservaEstoque {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var list []*entity.ReservaEstoque
	for i := range r.s.reservas {
		c := r.s.reservas[i]
		if keep(&c) {
			list = append(list, &c)
		}
	}
	return list
}
