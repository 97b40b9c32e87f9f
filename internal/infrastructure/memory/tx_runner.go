package memory

import (
	"context"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/application/estoque"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
)

var _ estoque.TxRunner = (*TxRunner)(nil)

// TxRunner executa callbacks como uma unidade de trabalho em memória: escritas
// ficam em staging e só são aplicadas ao Store no commit; qualquer erro
// descarta tudo. Os bloqueios por produto obtidos via GetForUpdate são mantidos
// até o fim da unidade de trabalho, de modo que os efeitos sobre vários
// produtos ficam visíveis atomicamente.
type TxRunner struct {
	store *Store
}

// NewTxRunner constrói o runner sobre o Store.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run executa fn com repositórios atados à transação; commit se fn devolve nil.
func (r *TxRunner) Run(ctx context.Context, fn func(
	movRepo repository.MovimentacaoEstoqueRepository,
	saldoRepo repository.SaldoEstoqueRepository,
	reservaRepo repository.ReservaEstoqueRepository,
) error) error {
	tx := &memTx{
		ctx:               ctx,
		store:             r.store,
		locked:            make(map[int64]struct{}),
		saldos:            make(map[int64]entity.SaldoEstoque),
		reservasAlteradas: make(map[string]entity.ReservaEstoque),
	}
	defer tx.releaseLocks()

	if err := fn(movimentacaoRepoTx{tx}, saldoRepoTx{tx}, reservaRepoTx{tx}); err != nil {
		return err
	}
	tx.commit()
	return nil
}

// memTx transação em memória: staging de escritas + bloqueios por produto.
type memTx struct {
	ctx               context.Context
	store             *Store
	locked            map[int64]struct{}
	saldos            map[int64]entity.SaldoEstoque // staged
	movs              []entity.MovimentacaoEstoque  // staged appends
	novasReservas     []entity.ReservaEstoque       // staged creates, em ordem
	reservasAlteradas map[string]entity.ReservaEstoque
}

func (t *memTx) releaseLocks() {
	for id := range t.locked {
		t.store.release(id)
	}
	t.locked = make(map[int64]struct{})
}

// commit aplica o staging ao Store de uma vez, sob o mutex global do estado.
func (t *memTx) commit() {
	s := t.store
	s.mu.Lock()
	for id, saldo := range t.saldos {
		s.saldos[id] = saldo
	}
	for _, m := range t.movs {
		s.movIdx[m.ID] = len(s.movs)
		s.movs = append(s.movs, m)
	}
	for id, re := range t.reservasAlteradas {
		if idx, ok := s.reservaIdx[id]; ok {
			s.reservas[idx] = re
		}
	}
	for _, re := range t.novasReservas {
		s.reservaIdx[re.ID] = len(s.reservas)
		s.reservas = append(s.reservas, re)
	}
	s.mu.Unlock()
	t.releaseLocks()
}

// getForUpdate bloqueia o produto (uma vez por transação) e devolve uma cópia
// do saldo, criando a linha zerada se for o primeiro acesso.
func (t *memTx) getForUpdate(produtoCatalogoID int64) (*entity.SaldoEstoque, error) {
	if _, ok := t.locked[produtoCatalogoID]; !ok {
		if err := t.store.acquire(t.ctx, produtoCatalogoID); err != nil {
			return nil, err
		}
		t.locked[produtoCatalogoID] = struct{}{}
	}
	if s, ok := t.saldos[produtoCatalogoID]; ok {
		c := s
		return &c, nil
	}
	t.store.mu.Lock()
	s, ok := t.store.saldos[produtoCatalogoID]
	t.store.mu.Unlock()
	if !ok {
		s = saldoZerado(produtoCatalogoID)
		t.saldos[produtoCatalogoID] = s
	}
	c := s
	return &c, nil
}

// reservasVisiveis devolve as reservas visíveis na transação: as confirmadas
// (com as alterações staged sobrepostas) mais as criadas nesta transação.
func (t *memTx) reservasVisiveis() []entity.ReservaEstoque {
	t.store.mu.Lock()
	list := make([]entity.ReservaEstoque, 0, len(t.store.reservas)+len(t.novasReservas))
	for _, re := range t.store.reservas {
		if alterada, ok := t.reservasAlteradas[re.ID]; ok {
			re = alterada
		}
		list = append(list, re)
	}
	t.store.mu.Unlock()
	return append(list, t.novasReservas...)
}

// ── repositórios atados à transação ──────────────────────────────────────────

type saldoRepoTx struct{ tx *memTx }

func (r saldoRepoTx) GetOrCreate(produtoCatalogoID int64) (*entity.SaldoEstoque, error) {
	// dentro da transação a criação preguiçosa também bloqueia a linha
	return r.tx.getForUpdate(produtoCatalogoID)
}

func (r saldoRepoTx) GetForUpdate(produtoCatalogoID int64) (*entity.SaldoEstoque, error) {
	return r.tx.getForUpdate(produtoCatalogoID)
}

func (r saldoRepoTx) Save(saldo *entity.SaldoEstoque) error {
	r.tx.saldos[saldo.ProdutoCatalogoID] = *saldo
	return nil
}

func (r saldoRepoTx) List() ([]*entity.SaldoEstoque, error) {
	return NewSaldoEstoqueRepository(r.tx.store).List()
}

func (r saldoRepoTx) ListBaixoEstoque() ([]*entity.SaldoEstoque, error) {
	return NewSaldoEstoqueRepository(r.tx.store).ListBaixoEstoque()
}

type movimentacaoRepoTx struct{ tx *memTx }

func (r movimentacaoRepoTx) Create(m *entity.MovimentacaoEstoque) error {
	r.tx.movs = append(r.tx.movs, *m)
	return nil
}

func (r movimentacaoRepoTx) GetByID(id string) (*entity.MovimentacaoEstoque, error) {
	for i := range r.tx.movs {
		if r.tx.movs[i].ID == id {
			c := r.tx.movs[i]
			return &c, nil
		}
	}
	return NewMovimentacaoEstoqueRepository(r.tx.store).GetByID(id)
}

func (r movimentacaoRepoTx) ListWithFilters(filtro repository.MovimentacaoFiltro) ([]*entity.MovimentacaoEstoque, error) {
	visiveis := NewMovimentacaoEstoqueRepository(r.tx.store).snapshot()
	visiveis = append(visiveis, r.tx.movs...)
	return filtraMovimentacoes(visiveis, filtro), nil
}

type reservaRepoTx struct{ tx *memTx }

func (r reservaRepoTx) Create(reserva *entity.ReservaEstoque) error {
	r.tx.novasReservas = append(r.tx.novasReservas, *reserva)
	return nil
}

func (r reservaRepoTx) Save(reserva *entity.ReservaEstoque) error {
	for i := range r.tx.novasReservas {
		if r.tx.novasReservas[i].ID == reserva.ID {
			r.tx.novasReservas[i] = *reserva
			return nil
		}
	}
	r.tx.reservasAlteradas[reserva.ID] = *reserva
	return nil
}

func (r reservaRepoTx) ListAtivasPorOrdemServico(ordemServicoID int64) ([]*entity.ReservaEstoque, error) {
	var list []*entity.ReservaEstoque
	for _, re := range r.tx.reservasVisiveis() {
		if re.OrdemServicoID == ordemServicoID && re.Ativa {
			c := re
			list = append(list, &c)
		}
	}
	return list, nil
}

func (r reservaRepoTx) ListPorOrdemServico(ordemServicoID int64) ([]*entity.ReservaEstoque, error) {
	var list []*entity.ReservaEstoque
	for _, re := range r.tx.reservasVisiveis() {
		if re.OrdemServicoID == ordemServicoID {
			c := re
			list = append(list, &c)
		}
	}
	return list, nil
}

func (r reservaRepoTx) SumAtivasPorProduto(produtoCatalogoID int64) (int, error) {
	total := 0
	for _, re := range r.tx.reservasVisiveis() {
		if re.ProdutoCatalogoID == produtoCatalogoID && re.Ativa {
			total += re.QuantidadeReservada
		}
	}
	return total, nil
}
