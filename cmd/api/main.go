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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/jhoicas/obras-crm/internal/application/obras"
	"github.com/jhoicas/obras-crm/internal/domain/repository"
	"github.com/jhoicas/obras-crm/internal/infrastructure/memory"
	"github.com/jhoicas/obras-crm/internal/infrastructure/metrics"
	"github.com/jhoicas/obras-crm/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/obras-crm/internal/interfaces/http"
	"github.com/jhoicas/obras-crm/pkg/config"
	"github.com/jhoicas/obras-crm/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMetrics, err := metrics.NewPrometheus(reg, cfg.Metrics.Namespace)
	if err != nil {
		log.Fatal().Err(err).Msg("registrar métricas")
	}

	var (
		obraRepo     repository.ObraRepository
		contactoRepo repository.ContactoRepository
		txRunner     obras.TxRunner
	)
	switch cfg.Store.Driver {
	case "memory":
		store := memory.NewStore()
		obraRepo, contactoRepo, txRunner = store.Obras(), store.Contactos(), store.TxRunner()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		pool, err := postgres.NewPool(ctx, cfg.DB)
		cancel()
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		obraRepo = postgres.NewObraRepository(pool)
		contactoRepo = postgres.NewContactoRepository(pool)
		txRunner = postgres.NewTxRunner(pool)
	}

	obraUC := obras.NewObraUseCase(obraRepo, promMetrics, log)
	ledgerUC := obras.NewLedgerUseCase(txRunner, promMetrics, log)
	contactoUC := obras.NewContactoUseCase(obraRepo, contactoRepo, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Obras CRM API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ObraUC:         obraUC,
		LedgerUC:       ledgerUC,
		ContactoUC:     contactoUC,
		JWTSecret:      cfg.JWT.Secret,
		JWTIssuer:      cfg.JWT.Issuer,
		RequestTimeout: cfg.App.RequestTimeout,
		Gatherer:       reg,
		Logger:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
