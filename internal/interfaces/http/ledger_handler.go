package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/obras-crm/internal/application/dto"
	"github.com/jhoicas/obras-crm/internal/application/obras"
)

// LedgerHandler cuenta corriente de la obra.
type LedgerHandler struct {
	uc      *obras.LedgerUseCase
	timeout time.Duration
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(uc *obras.LedgerUseCase, timeout time.Duration) *LedgerHandler {
	return &LedgerHandler{uc: uc, timeout: timeout}
}

// RegistrarPrestamo godoc
// @Summary      Registrar préstamo de material
// @Tags         cuenta-corriente
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la obra"
// @Param        body  body  dto.LedgerEntryRequest  true  "Monto y descripción"
// @Success      201   {object}  dto.ObraResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/obras/{id}/prestamos [post]
func (h *LedgerHandler) RegistrarPrestamo(c *fiber.Ctx) error {
	return h.registrar(c, h.uc.RegistrarPrestamo)
}

// RegistrarPago godoc
// @Summary      Registrar pago
// @Tags         cuenta-corriente
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID de la obra"
// @Param        body  body  dto.LedgerEntryRequest  true  "Monto y descripción"
// @Success      201   {object}  dto.ObraResponse
// @Failure      409   {object}  dto.ErrorResponse  "pago mayor al pendiente"
// @Router       /api/obras/{id}/pagos [post]
func (h *LedgerHandler) RegistrarPago(c *fiber.Ctx) error {
	return h.registrar(c, h.uc.RegistrarPago)
}

func (h *LedgerHandler) registrar(c *fiber.Ctx, fn func(ctx context.Context, in obras.LedgerInput) (*dto.ObraResponse, error)) error {
	var in dto.LedgerEntryRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()
	out, err := fn(ctx, obras.LedgerInput{
		ObraID:      c.Params("id"),
		UserID:      GetUserID(c),
		Monto:       in.Monto,
		Descripcion: in.Descripcion,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Saldo godoc
// @Summary      Saldo pendiente verificado contra el historial
// @Tags         cuenta-corriente
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la obra"
// @Success      200  {object}  dto.SaldoResponse
// @Failure      500  {object}  dto.ErrorResponse  "LEDGER_MISMATCH"
// @Router       /api/obras/{id}/saldo [get]
func (h *LedgerHandler) Saldo(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()
	out, err := h.uc.CurrentBalance(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Movimientos godoc
// @Summary      Historial de la cuenta corriente
// @Tags         cuenta-corriente
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la obra"
// @Success      200  {array}  dto.LedgerEntryResponse
// @Router       /api/obras/{id}/movimientos [get]
func (h *LedgerHandler) Movimientos(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()
	out, err := h.uc.ListMovimientos(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
