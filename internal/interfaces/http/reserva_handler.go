package http

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/application/dto"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/application/estoque"
)

// ReservaHandler trata as rotas de reserva de peças para ordens de serviço.
type ReservaHandler struct {
	reservas *estoque.ReservaEstoqueUseCase
	lote     *estoque.ReservaEstoqueLoteUseCase
	validate *validator.Validate
}

// NewReservaHandler constrói o handler.
func NewReservaHandler(reservas *estoque.ReservaEstoqueUseCase, lote *estoque.ReservaEstoqueLoteUseCase) *ReservaHandler {
	return &ReservaHandler{
		reservas: reservas,
		lote:     lote,
		validate: validator.New(),
	}
}

// Reservar godoc
// @Summary      Reservar quantidade de um produto para uma ordem de serviço
// @Tags         reservas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservaRequest  true  "produto_catalogo_id, ordem_servico_id, quantidade"
// @Success      201   {object}  dto.ReservaResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/reservas [post]
func (h *ReservaHandler) Reservar(c *fiber.Ctx) error {
	var in dto.ReservaRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if err := h.validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	reserva, err := h.reservas.Reservar(c.Context(), in.ProdutoCatalogoID, in.OrdemServicoID, in.Quantidade)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewReservaResponse(reserva))
}

// ReservarEmLote godoc
// @Summary      Reservar vários produtos para uma ordem de serviço
// @Description  Com all_or_nothing a primeira falha aborta e desfaz o lote;
// @Description  sem all_or_nothing cada item é tentado de forma independente.
// @Tags         reservas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReservaLoteRequest  true  "itens do lote"
// @Success      201   {object}  dto.ReservaLoteResponse
// @Failure      409   {object}  dto.ReservaLoteResponse  "lote atômico abortado, relatório por item"
// @Router       /api/reservas/lote [post]
func (h *ReservaHandler) ReservarEmLote(c *fiber.Ctx) error {
	var in dto.ReservaLoteRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if err := h.validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	resp, err := h.lote.ReservarEmLote(c.Context(), in)
	if err != nil {
		// modo atômico abortado: devolve o relatório por item junto do status
		return c.Status(statusLoteAbortado(err)).JSON(resp)
	}
	status := fiber.StatusCreated
	if !resp.SucessoGeral {
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(resp)
}

// ListarPorOrdemServico devolve as reservas da OS, ativas e canceladas.
func (h *ReservaHandler) ListarPorOrdemServico(c *fiber.Ctx) error {
	ordemID, err := strconv.ParseInt(c.Params("ordemServicoId"), 10, 64)
	if err != nil || ordemID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ordemServicoId inválido"})
	}
	reservas, err := h.reservas.ListarPorOrdemServico(c.Context(), ordemID)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.ReservaResponse, 0, len(reservas))
	for _, r := range reservas {
		out = append(out, dto.NewReservaResponse(r))
	}
	return c.JSON(out)
}

// CancelarPorOrdemServico cancela todas as reservas ativas da OS (idempotente).
func (h *ReservaHandler) CancelarPorOrdemServico(c *fiber.Ctx) error {
	ordemID, err := strconv.ParseInt(c.Params("ordemServicoId"), 10, 64)
	if err != nil || ordemID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "ordemServicoId inválido"})
	}
	if err := h.reservas.CancelarPorOrdemServico(c.Context(), ordemID); err != nil {
		return respondDomainError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// statusLoteAbortado mapeia o erro que abortou o lote atômico para HTTP.
func statusLoteAbortado(err error) int {
	resp := respondStatus(err)
	if resp == fiber.StatusInternalServerError {
		return resp
	}
	// falhas de negócio no lote atômico reportam 409 com o relatório
	return fiber.StatusConflict
}
