package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/obras-crm/internal/application/dto"
	"github.com/jhoicas/obras-crm/internal/domain"
)

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidStage, fiber.StatusBadRequest, "INVALID_STAGE"},
	{domain.ErrInvalidEstado, fiber.StatusBadRequest, "INVALID_ESTADO"},
	{domain.ErrInvalidStageTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrInvalidStatusTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrInvalidAmount, fiber.StatusBadRequest, "INVALID_AMOUNT"},
	{domain.ErrInsufficientBalance, fiber.StatusConflict, "INSUFFICIENT_BALANCE"},
	{domain.ErrInvalidCargo, fiber.StatusBadRequest, "INVALID_CARGO"},
	{domain.ErrConcurrencyConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrLedgerMismatch, fiber.StatusInternalServerError, "LEDGER_MISMATCH"},
	{context.DeadlineExceeded, fiber.StatusGatewayTimeout, "TIMEOUT"},
}

// errorStatus traduce un error de la aplicación a status HTTP y código estable.
func errorStatus(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// respondError escribe el ErrorResponse. Los errores internos no exponen el detalle
// al cliente; quedan en c.Locals para el logger de requests.
func respondError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	if status >= fiber.StatusInternalServerError {
		c.Locals(localError, err)
	}
	if code == "INTERNAL" {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
