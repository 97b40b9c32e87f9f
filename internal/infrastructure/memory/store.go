package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
)

// Store guarda o estado do estoque em memória com um mutex temporizado por
// produto: operações sobre o mesmo produto são serializadas na ordem de
// chegada; produtos diferentes nunca se bloqueiam. Serve o driver "memory"
// (dev local e testes) com a mesma semântica do bloqueio de linha do PostgreSQL.
type Store struct {
	mu          sync.Mutex // protege os mapas e slices abaixo
	saldos      map[int64]entity.SaldoEstoque
	movs        []entity.MovimentacaoEstoque // razão em ordem de inserção
	movIdx      map[string]int
	reservas    []entity.ReservaEstoque // em ordem de criação
	reservaIdx  map[string]int
	locks       map[int64]chan struct{} // mutex por produto (canal com capacidade 1)
	lockTimeout time.Duration
}

// NewStore cria o armazenamento em memória com o tempo máximo de espera por
// bloqueio de produto.
func NewStore(lockTimeout time.Duration) *Store {
	return &Store{
		saldos:      make(map[int64]entity.SaldoEstoque),
		movIdx:      make(map[string]int),
		reservaIdx:  make(map[string]int),
		locks:       make(map[int64]chan struct{}),
		lockTimeout: lockTimeout,
	}
}

func (s *Store) lockChan(produtoCatalogoID int64) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.locks[produtoCatalogoID]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[produtoCatalogoID] = ch
	}
	return ch
}

// acquire obtém o bloqueio exclusivo do produto, esperando no máximo
// lockTimeout; ao expirar devolve domain.ErrLockTimeout.
func (s *Store) acquire(ctx context.Context, produtoCatalogoID int64) error {
	ch := s.lockChan(produtoCatalogoID)
	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return domain.ErrLockTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) release(produtoCatalogoID int64) {
	<-s.lockChan(produtoCatalogoID)
}

// saldoZerado devolve a linha zerada criada preguiçosamente no primeiro acesso.
func saldoZerado(produtoCatalogoID int64) entity.SaldoEstoque {
	return entity.SaldoEstoque{
		ProdutoCatalogoID: produtoCatalogoID,
		PrecoCustoMedio:   decimal.Zero,
		UltimaAtualizacao: time.Now(),
	}
}

// filtraMovimentacoes aplica os filtros opcionais e ordena por data decrescente.
func filtraMovimentacoes(movs []entity.MovimentacaoEstoque, filtro repository.MovimentacaoFiltro) []*entity.MovimentacaoEstoque {
	var list []*entity.MovimentacaoEstoque
	for i := range movs {
		m := movs[i]
		if filtro.ProdutoCatalogoID != nil && m.ProdutoCatalogoID != *filtro.ProdutoCatalogoID {
			continue
		}
		if filtro.Tipo != nil && m.Tipo != *filtro.Tipo {
			continue
		}
		if filtro.DataInicio != nil && m.DataMovimentacao.Before(*filtro.DataInicio) {
			continue
		}
		if filtro.DataFim != nil && m.DataMovimentacao.After(*filtro.DataFim) {
			continue
		}
		c := m
		list = append(list, &c)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].DataMovimentacao.After(list[j].DataMovimentacao)
	})
	return list
}
