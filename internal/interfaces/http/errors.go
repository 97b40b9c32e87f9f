package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/application/dto"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain"
)

// respondStatus devolve apenas o status HTTP correspondente ao erro de domínio.
func respondStatus(err error) int {
	var insuficiente *domain.EstoqueInsuficienteError
	switch {
	case errors.As(err, &insuficiente):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrQuantidadeInvalida):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNaoEncontrado):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrLockTimeout):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondDomainError traduz erros de domínio para status HTTP.
// Estoque insuficiente é condição de negócio reportável (409), não defeito.
func respondDomainError(c *fiber.Ctx, err error) error {
	var insuficiente *domain.EstoqueInsuficienteError
	switch {
	case errors.As(err, &insuficiente):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"code":                "ESTOQUE_INSUFICIENTE",
			"message":             insuficiente.Error(),
			"solicitada":          insuficiente.Solicitada,
			"disponivel":          insuficiente.Disponivel,
			"produto_catalogo_id": insuficiente.ProdutoCatalogoID,
		})
	case errors.Is(err, domain.ErrQuantidadeInvalida):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "QUANTIDADE_INVALIDA", Message: err.Error()})
	case errors.Is(err, domain.ErrNaoEncontrado):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NAO_ENCONTRADO", Message: err.Error()})
	case errors.Is(err, domain.ErrLockTimeout):
		// o chamador pode repetir a operação
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "LOCK_TIMEOUT", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
