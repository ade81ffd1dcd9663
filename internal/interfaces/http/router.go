package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/obras-crm/internal/application/obras"
	"github.com/jhoicas/obras-crm/pkg/jwt"
	"github.com/jhoicas/obras-crm/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ObraUC         *obras.ObraUseCase
	LedgerUC       *obras.LedgerUseCase
	ContactoUC     *obras.ContactoUseCase
	JWTSecret      string
	JWTIssuer      string
	RequestTimeout time.Duration
	Gatherer       prometheus.Gatherer // nil desactiva /metrics
	Logger         *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = 5 * time.Second
	}
	if deps.Logger != nil {
		app.Use(RequestLogger(deps.Logger))
	}
	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Todas las rutas de obras requieren Bearer Token con rol admin o vendedor.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer), RequireRole(jwt.RoleAdmin, jwt.RoleVendedor))

	obrasGroup := protected.Group("/obras")
	obraHandler := NewObraHandler(deps.ObraUC, deps.RequestTimeout)
	obrasGroup.Post("/", obraHandler.Create)
	obrasGroup.Get("/", obraHandler.List)
	obrasGroup.Get("/:id", obraHandler.GetByID)
	obrasGroup.Put("/:id/etapa", obraHandler.CambiarEtapa)
	obrasGroup.Post("/:id/entrega", obraHandler.ConfirmarEntrega)
	obrasGroup.Put("/:id/estado", obraHandler.CambiarEstado)
	// El material vendido lo informa el subsistema de ventas con credencial de admin.
	obrasGroup.Put("/:id/material-vendido", RequireRole(jwt.RoleAdmin), obraHandler.ActualizarMaterialVendido)

	// Cuenta corriente
	ledgerHandler := NewLedgerHandler(deps.LedgerUC, deps.RequestTimeout)
	obrasGroup.Post("/:id/prestamos", ledgerHandler.RegistrarPrestamo)
	obrasGroup.Post("/:id/pagos", ledgerHandler.RegistrarPago)
	obrasGroup.Get("/:id/saldo", ledgerHandler.Saldo)
	obrasGroup.Get("/:id/movimientos", ledgerHandler.Movimientos)

	// Contactos
	contactoHandler := NewContactoHandler(deps.ContactoUC, deps.RequestTimeout)
	obrasGroup.Get("/:id/contactos", contactoHandler.Directorio)
	obrasGroup.Put("/:id/contactos/:cargo", contactoHandler.Upsert)
}
