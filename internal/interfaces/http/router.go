package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/application/estoque"
)

// RouterDeps dependências para o router.
type RouterDeps struct {
	MovimentacaoUC *estoque.MovimentacaoEstoqueUseCase
	SaldoUC        *estoque.SaldoEstoqueUseCase
	ReservaUC      *estoque.ReservaEstoqueUseCase
	ReservaLoteUC  *estoque.ReservaEstoqueLoteUseCase
	JWTSecret      string
}

// Router registra as rotas da API de estoque.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	escreveEstoque := RequireRole(RoleAdmin, RoleEstoquista)
	leEstoque := RequireRole(RoleAdmin, RoleEstoquista, RoleAtendente)
	reserva := RequireRole(RoleAdmin, RoleAtendente)

	// Estoque: razão de movimentações e saldo consolidado
	estoqueGroup := api.Group("/estoque")
	estoqueHandler := NewEstoqueHandler(deps.MovimentacaoUC, deps.SaldoUC)
	estoqueGroup.Post("/movimentacoes", escreveEstoque, estoqueHandler.RegistrarMovimentacao)
	estoqueGroup.Get("/movimentacoes", leEstoque, estoqueHandler.ListarMovimentacoes)
	estoqueGroup.Get("/movimentacoes/:id", leEstoque, estoqueHandler.BuscarMovimentacao)
	estoqueGroup.Get("/saldo", leEstoque, estoqueHandler.ListarSaldos)
	// registrado antes de /saldo/:produtoId para não capturar "baixo-estoque"
	estoqueGroup.Get("/saldo/baixo-estoque", leEstoque, estoqueHandler.ListarBaixoEstoque)
	estoqueGroup.Get("/saldo/:produtoId", leEstoque, estoqueHandler.ObterSaldo)
	estoqueGroup.Patch("/saldo/:produtoId/estoque-minimo", escreveEstoque, estoqueHandler.AtualizarEstoqueMinimo)

	// Reservas para ordens de serviço
	reservasGroup := api.Group("/reservas")
	reservaHandler := NewReservaHandler(deps.ReservaUC, deps.ReservaLoteUC)
	reservasGroup.Post("/", reserva, reservaHandler.Reservar)
	reservasGroup.Post("/lote", reserva, reservaHandler.ReservarEmLote)
	reservasGroup.Get("/os/:ordemServicoId", RequireRole(RoleAdmin, RoleEstoquista, RoleAtendente), reservaHandler.ListarPorOrdemServico)
	reservasGroup.Delete("/os/:ordemServicoId", reserva, reservaHandler.CancelarPorOrdemServico)
}
