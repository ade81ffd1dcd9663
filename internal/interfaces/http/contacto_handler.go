package http

import (
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/obras-crm/internal/application/dto"
	"github.com/jhoicas/obras-crm/internal/application/obras"
)

// ContactoHandler directorio de contactos por cargo.
type ContactoHandler struct {
	uc      *obras.ContactoUseCase
	timeout time.Duration
}

// NewContactoHandler construye el handler.
func NewContactoHandler(uc *obras.ContactoUseCase, timeout time.Duration) *ContactoHandler {
	return &ContactoHandler{uc: uc, timeout: timeout}
}

// Directorio godoc
// @Summary      Cinco contactos normalizados de la obra
// @Tags         contactos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la obra"
// @Success      200  {array}  dto.ContactoResponse
// @Router       /api/obras/{id}/contactos [get]
func (h *ContactoHandler) Directorio(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()
	out, err := h.uc.Directorio(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Upsert godoc
// @Summary      Crear o actualizar el contacto de un cargo
// @Tags         contactos
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id     path  string                     true  "ID de la obra"
// @Param        cargo  path  string                     true  "Cargo (p. ej. Compras)"
// @Param        body   body  dto.UpsertContactoRequest  true  "Datos del contacto"
// @Success      200    {array}  dto.ContactoResponse
// @Failure      400    {object}  dto.ErrorResponse  "INVALID_CARGO"
// @Failure      409    {object}  dto.ErrorResponse  "CONFLICT: versión obsoleta"
// @Router       /api/obras/{id}/contactos/{cargo} [put]
func (h *ContactoHandler) Upsert(c *fiber.Ctx) error {
	var in dto.UpsertContactoRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	cargo, err := url.PathUnescape(c.Params("cargo"))
	if err != nil {
		return badBody(c)
	}
	id := c.Params("id")
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()
	if err := h.uc.Upsert(ctx, id, cargo, in); err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.Directorio(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
