package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/obras-crm/internal/application/dto"
	"github.com/jhoicas/obras-crm/internal/application/obras"
)

// ObraHandler maneja el ciclo de vida de la obra: alta, etapas, estado y material vendido.
type ObraHandler struct {
	uc      *obras.ObraUseCase
	timeout time.Duration
}

// NewObraHandler construye el handler. timeout acota cada llamada al repositorio.
func NewObraHandler(uc *obras.ObraUseCase, timeout time.Duration) *ObraHandler {
	return &ObraHandler{uc: uc, timeout: timeout}
}

func requestContext(c *fiber.Ctx, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), timeout)
}

// Create godoc
// @Summary      Crear obra
// @Tags         obras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateObraRequest  true  "Datos de la obra"
// @Success      201   {object}  dto.ObraResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/obras [post]
func (h *ObraHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateObraRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()
	out, err := h.uc.Create(ctx, GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener obra con contactos normalizados y progreso
// @Tags         obras
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la obra"
// @Success      200  {object}  dto.ObraResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/obras/{id} [get]
func (h *ObraHandler) GetByID(c *fiber.Ctx) error {
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()
	out, err := h.uc.Get(ctx, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      Listar obras
// @Description  Un vendedor solo ve sus obras; admin puede filtrar por vendedor.
// @Tags         obras
// @Security     Bearer
// @Produce      json
// @Param        vendedor  query  string  false  "Vendedor asignado"
// @Param        estado    query  string  false  "Estado"
// @Param        limit     query  int     false  "Límite"  default(20)
// @Param        offset    query  int     false  "Offset"  default(0)
// @Success      200       {array}  dto.ObraResponse
// @Router       /api/obras [get]
func (h *ObraHandler) List(c *fiber.Ctx) error {
	page := dto.PageRequest{Limit: c.QueryInt("limit"), Offset: c.QueryInt("offset")}
	vendedor := c.Query("vendedor")
	if !IsAdmin(c) {
		vendedor = GetUserID(c)
	}
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()
	out, err := h.uc.List(ctx, vendedor, c.Query("estado"), page)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CambiarEtapa godoc
// @Summary      Mover la obra a otra etapa
// @Tags         obras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID de la obra"
// @Param        body  body  dto.CambiarEtapaRequest  true  "Etapa destino y versión"
// @Success      200   {object}  dto.ObraResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/obras/{id}/etapa [put]
func (h *ObraHandler) CambiarEtapa(c *fiber.Ctx) error {
	var in dto.CambiarEtapaRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()
	out, err := h.uc.CambiarEtapa(ctx, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ConfirmarEntrega godoc
// @Summary      Confirmar entrega (idempotente)
// @Tags         obras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true   "ID de la obra"
// @Param        body  body  dto.ConfirmarEntregaRequest  false  "Versión esperada"
// @Success      200   {object}  dto.ObraResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/obras/{id}/entrega [post]
func (h *ObraHandler) ConfirmarEntrega(c *fiber.Ctx) error {
	var in dto.ConfirmarEntregaRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()
	out, err := h.uc.ConfirmarEntrega(ctx, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// CambiarEstado godoc
// @Summary      Cambiar estado comercial
// @Tags         obras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la obra"
// @Param        body  body  dto.CambiarEstadoRequest  true  "Estado destino y versión"
// @Success      200   {object}  dto.ObraResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/obras/{id}/estado [put]
func (h *ObraHandler) CambiarEstado(c *fiber.Ctx) error {
	var in dto.CambiarEstadoRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()
	out, err := h.uc.CambiarEstado(ctx, c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// ActualizarMaterialVendido godoc
// @Summary      Informar material vendido (subsistema de ventas)
// @Tags         obras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "ID de la obra"
// @Param        body  body  dto.MaterialVendidoRequest  true  "Monto acumulado"
// @Success      200   {object}  dto.ObraResponse
// @Router       /api/obras/{id}/material-vendido [put]
func (h *ObraHandler) ActualizarMaterialVendido(c *fiber.Ctx) error {
	var in dto.MaterialVendidoRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	ctx, cancel := requestContext(c, h.timeout)
	defer cancel()
	out, err := h.uc.ActualizarMaterialVendido(ctx, c.Params("id"), in.Monto)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
