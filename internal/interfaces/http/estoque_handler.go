package http

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/application/dto"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/application/estoque"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/entity"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/domain/repository"
)

// EstoqueHandler trata as rotas de movimentações e saldo (protegidas).
type EstoqueHandler struct {
	movimentacoes *estoque.MovimentacaoEstoqueUseCase
	saldos        *estoque.SaldoEstoqueUseCase
	validate      *validator.Validate
}

// NewEstoqueHandler constrói o handler.
func NewEstoqueHandler(movimentacoes *estoque.MovimentacaoEstoqueUseCase, saldos *estoque.SaldoEstoqueUseCase) *EstoqueHandler {
	return &EstoqueHandler{
		movimentacoes: movimentacoes,
		saldos:        saldos,
		validate:      validator.New(),
	}
}

// RegistrarMovimentacao godoc
// @Summary      Registrar movimentação de estoque (ENTRADA/SAIDA)
// @Tags         estoque
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.MovimentacaoRequest  true  "produto_catalogo_id, tipo, quantidade, custo_unitario (entradas)"
// @Success      201   {object}  dto.MovimentacaoResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/estoque/movimentacoes [post]
func (h *EstoqueHandler) RegistrarMovimentacao(c *fiber.Ctx) error {
	var in dto.MovimentacaoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if err := h.validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	mov, err := h.movimentacoes.RegistrarMovimentacao(c.Context(), estoque.MovimentacaoInput{
		ProdutoCatalogoID:   in.ProdutoCatalogoID,
		Tipo:                in.Tipo,
		Quantidade:          in.Quantidade,
		CustoUnitario:       in.CustoUnitario,
		DocumentoReferencia: in.DocumentoReferencia,
		Observacao:          in.Observacao,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovimentacaoResponse(mov))
}

// ListarMovimentacoes godoc
// @Summary      Listar movimentações com filtros opcionais
// @Tags         estoque
// @Security     Bearer
// @Produce      json
// @Param        produto_catalogo_id  query  int     false  "Filtrar por produto"
// @Param        tipo                 query  string  false  "ENTRADA ou SAIDA"
// @Param        data_inicio          query  string  false  "RFC3339, inclusivo"
// @Param        data_fim             query  string  false  "RFC3339, inclusivo"
// @Success      200  {array}  dto.MovimentacaoResponse
// @Router       /api/estoque/movimentacoes [get]
func (h *EstoqueHandler) ListarMovimentacoes(c *fiber.Ctx) error {
	filtro, err := parseMovimentacaoFiltro(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	movs, err := h.movimentacoes.ListarMovimentacoes(c.Context(), filtro)
	if err != nil {
		return respondDomainError(c, err)
	}
	out := make([]dto.MovimentacaoResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, dto.NewMovimentacaoResponse(m))
	}
	return c.JSON(out)
}

// BuscarMovimentacao devolve uma movimentação por ID.
func (h *EstoqueHandler) BuscarMovimentacao(c *fiber.Ctx) error {
	mov, err := h.movimentacoes.BuscarPorID(c.Context(), c.Params("id"))
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewMovimentacaoResponse(mov))
}

// ObterSaldo godoc
// @Summary      Saldo consolidado de um produto
// @Tags         estoque
// @Security     Bearer
// @Produce      json
// @Param        produtoId  path  int  true  "ID do produto no catálogo"
// @Success      200  {object}  dto.SaldoEstoqueResponse
// @Router       /api/estoque/saldo/{produtoId} [get]
func (h *EstoqueHandler) ObterSaldo(c *fiber.Ctx) error {
	produtoID, err := strconv.ParseInt(c.Params("produtoId"), 10, 64)
	if err != nil || produtoID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "produtoId inválido"})
	}
	saldo, err := h.saldos.ObterSaldo(c.Context(), produtoID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewSaldoEstoqueResponse(saldo))
}

// ListarSaldos lista todos os saldos de estoque.
func (h *EstoqueHandler) ListarSaldos(c *fiber.Ctx) error {
	saldos, err := h.saldos.ListarSaldos(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(mapSaldos(saldos))
}

// ListarBaixoEstoque lista os saldos com disponível abaixo do estoque mínimo.
func (h *EstoqueHandler) ListarBaixoEstoque(c *fiber.Ctx) error {
	saldos, err := h.saldos.ListarBaixoEstoque(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(mapSaldos(saldos))
}

// AtualizarEstoqueMinimo altera o limiar de baixo estoque do produto.
func (h *EstoqueHandler) AtualizarEstoqueMinimo(c *fiber.Ctx) error {
	produtoID, err := strconv.ParseInt(c.Params("produtoId"), 10, 64)
	if err != nil || produtoID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "produtoId inválido"})
	}
	var in dto.EstoqueMinimoRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "corpo inválido"})
	}
	if err := h.validate.Struct(in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	}
	saldo, err := h.saldos.AtualizarEstoqueMinimo(c.Context(), produtoID, in.EstoqueMinimo)
	if err != nil {
		return respondDomainError(c, err)
	}
	return c.JSON(dto.NewSaldoEstoqueResponse(saldo))
}

func mapSaldos(saldos []*entity.SaldoEstoque) []dto.SaldoEstoqueResponse {
	out := make([]dto.SaldoEstoqueResponse, 0, len(saldos))
	for _, s := range saldos {
		out = append(out, dto.NewSaldoEstoqueResponse(s))
	}
	return out
}

func parseMovimentacaoFiltro(c *fiber.Ctx) (repository.MovimentacaoFiltro, error) {
	var filtro repository.MovimentacaoFiltro
	if v := c.Query("produto_catalogo_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filtro, err
		}
		filtro.ProdutoCatalogoID = &id
	}
	if v := c.Query("tipo"); v != "" {
		filtro.Tipo = &v
	}
	if v := c.Query("data_inicio"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filtro, err
		}
		filtro.DataInicio = &t
	}
	if v := c.Query("data_fim"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filtro, err
		}
		filtro.DataFim = &t
	}
	return filtro, nil
}
