package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/fiap-soat-grupo36/oficina-microservices/internal/application/estoque"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/infrastructure/memory"
	"github.com/fiap-soat-grupo36/oficina-microservices/internal/infrastructure/postgres"
	httpRouter "github.com/fiap-soat-grupo36/oficina-microservices/internal/interfaces/http"
	"github.com/fiap-soat-grupo36/oficina-microservices/pkg/config"
	"github.com/fiap-soat-grupo36/oficina-microservices/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("carregar configuração: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("driver", cfg.Estoque.Driver).
		Msg("iniciando serviço de estoque")

	ctx := context.Background()

	var (
		txRunner       estoque.TxRunner
		movimentacaoUC *estoque.MovimentacaoEstoqueUseCase
		saldoUC        *estoque.SaldoEstoqueUseCase
		reservaUC      *estoque.ReservaEstoqueUseCase
	)

	switch cfg.Estoque.Driver {
	case "memory":
		// dev local e testes: mesma semântica de bloqueio, sem PostgreSQL
		store := memory.NewStore(cfg.Estoque.LockTimeout)
		txRunner = memory.NewTxRunner(store)
		movimentacaoUC = estoque.NewMovimentacaoEstoqueUseCase(txRunner, memory.NewMovimentacaoEstoqueRepository(store), log)
		saldoUC = estoque.NewSaldoEstoqueUseCase(txRunner, memory.NewSaldoEstoqueRepository(store))
		reservaUC = estoque.NewReservaEstoqueUseCase(txRunner, memory.NewReservaEstoqueRepository(store), log)
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexão com o PostgreSQL")
		}
		defer pool.Close()

		txRunner = postgres.NewTxRunner(pool, cfg.Estoque.LockTimeout)
		movimentacaoUC = estoque.NewMovimentacaoEstoqueUseCase(txRunner, postgres.NewMovimentacaoEstoqueRepository(pool), log)
		saldoUC = estoque.NewSaldoEstoqueUseCase(txRunner, postgres.NewSaldoEstoqueRepository(pool))
		reservaUC = estoque.NewReservaEstoqueUseCase(txRunner, postgres.NewReservaEstoqueRepository(pool), log)
	}

	reservaLoteUC := estoque.NewReservaEstoqueLoteUseCase(txRunner, reservaUC, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Oficina - Estoque API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		MovimentacaoUC: movimentacaoUC,
		SaldoUC:        saldoUC,
		ReservaUC:      reservaUC,
		ReservaLoteUC:  reservaLoteUC,
		JWTSecret:      cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinal de desligamento recebido, encerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("encerramento do servidor")
	}

	log.Info().Msg("serviço encerrado")
}
