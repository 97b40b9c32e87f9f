package domain

import (
	"errors"
	"fmt"
)

// Erros de domínio (sem dependências externas).
var (
	ErrNaoEncontrado       = errors.New("recurso não encontrado")
	ErrQuantidadeInvalida  = errors.New("quantidade inválida")
	ErrEstoqueInsuficiente = errors.New("estoque insuficiente")
	// ErrLockTimeout: o bloqueio exclusivo do saldo não foi obtido dentro do
	// tempo configurado. O chamador pode repetir a operação.
	ErrLockTimeout = errors.New("tempo de espera pelo bloqueio do saldo excedido")
)

// EstoqueInsuficienteError carrega solicitado x disponível para diagnóstico.
// errors.Is(err, ErrEstoqueInsuficiente) funciona para o tratamento genérico.
type EstoqueInsuficienteError struct {
	ProdutoCatalogoID int64
	Solicitada        int
	Disponivel        int
}

func (e *EstoqueInsuficienteError) Error() string {
	return fmt.Sprintf("estoque insuficiente para o produto %d: solicitado %d, disponível %d",
		e.ProdutoCatalogoID, e.Solicitada, e.Disponivel)
}

func (e *EstoqueInsuficienteError) Is(target error) bool {
	return target == ErrEstoqueInsuficiente
}
