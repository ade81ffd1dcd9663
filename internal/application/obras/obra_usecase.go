package obras

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/obras-crm/internal/application/dto"
	"github.com/jhoicas/obras-crm/internal/domain"
	"github.com/jhoicas/obras-crm/internal/domain/entity"
	"github.com/jhoicas/obras-crm/internal/domain/obra"
	"github.com/jhoicas/obras-crm/internal/domain/repository"
	"github.com/jhoicas/obras-crm/pkg/logger"
	"github.com/jhoicas/obras-crm/pkg/rut"
)

// ObraUseCase ciclo de vida de la obra: alta, consulta, etapas, estado y material vendido.
// Cada operación carga el agregado, aplica la regla del dominio y lo guarda una sola vez.
type ObraUseCase struct {
	repo    repository.ObraRepository
	metrics Metrics
	log     *logger.Logger
	now     func() time.Time
}

// NewObraUseCase construye el caso de uso. metrics y log pueden ser nil.
func NewObraUseCase(repo repository.ObraRepository, metrics Metrics, log *logger.Logger) *ObraUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ObraUseCase{repo: repo, metrics: metrics, log: log, now: time.Now}
}

// Create da de alta una obra en planificación/fundación con pendiente cero.
// Si no se indica vendedor, queda asignada al usuario que la crea.
func (uc *ObraUseCase) Create(ctx context.Context, userID string, in dto.CreateObraRequest) (*dto.ObraResponse, error) {
	if strings.TrimSpace(in.NombreEmpresa) == "" || strings.TrimSpace(in.Constructora.Nombre) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.ValorEstimado != nil && in.ValorEstimado.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	constructora := fromConstructoraDTO(in.Constructora)
	if constructora.RUT != "" {
		normalized, err := rut.Normalize(constructora.RUT)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
		}
		constructora.RUT = normalized
	}
	o := entity.NewObra(uuid.New().String(), strings.TrimSpace(in.NombreEmpresa), constructora, uc.now())
	o.ValorEstimado = in.ValorEstimado
	o.FechaInicio = in.FechaInicio
	o.FechaEstimadaFin = in.FechaEstimadaFin
	o.Notas = in.Notas
	switch {
	case in.VendedorAsignado != nil:
		o.VendedorAsignado = in.VendedorAsignado
	case userID != "":
		v := userID
		o.VendedorAsignado = &v
	}
	if err := uc.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	uc.log.Obra(o.ID).Info().Str("nombre_empresa", o.NombreEmpresa).Msg("obra creada")
	return ToObraResponse(o), nil
}

// Get devuelve la obra con sus contactos normalizados.
func (uc *ObraUseCase) Get(ctx context.Context, id string) (*dto.ObraResponse, error) {
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToObraResponse(o), nil
}

// List lista obras con un filtro simple por vendedor y estado. La página se completa
// con dto.PageRequest.DefaultPage.
func (uc *ObraUseCase) List(ctx context.Context, vendedorID, estado string, page dto.PageRequest) ([]*dto.ObraResponse, error) {
	page.DefaultPage()
	filter := repository.ObraFilter{VendedorID: vendedorID, Limit: page.Limit, Offset: page.Offset}
	if estado != "" {
		st, err := obra.ParseEstado(estado)
		if err != nil {
			return nil, err
		}
		filter.Estado = st
	}
	list, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ObraResponse, 0, len(list))
	for _, o := range list {
		out = append(out, ToObraResponse(o))
	}
	return out, nil
}

// CambiarEtapa fija la etapa actual de la obra (ver obra.SetCurrentStage).
func (uc *ObraUseCase) CambiarEtapa(ctx context.Context, id string, in dto.CambiarEtapaRequest) (*dto.ObraResponse, error) {
	etapa, err := obra.ParseEtapa(in.Etapa)
	if err != nil {
		return nil, err
	}
	o, err := uc.load(ctx, "cambiar_etapa", id, in.Version)
	if err != nil {
		return nil, err
	}
	next, err := obra.SetCurrentStage(*o, etapa)
	if err != nil {
		uc.log.Obra(id).Warn().Err(err).Str("etapa", string(etapa)).Msg("cambio de etapa rechazado")
		return nil, err
	}
	if err := uc.save(ctx, "cambiar_etapa", &next); err != nil {
		return nil, err
	}
	uc.metrics.StageChanged(string(etapa))
	uc.log.Obra(id).Info().Str("etapa", string(etapa)).Msg("etapa actualizada")
	return ToObraResponse(&next), nil
}

// ConfirmarEntrega finaliza la obra. Reintentar sobre una obra ya finalizada devuelve
// el estado actual sin guardar y sin validar la versión.
func (uc *ObraUseCase) ConfirmarEntrega(ctx context.Context, id string, in dto.ConfirmarEntregaRequest) (*dto.ObraResponse, error) {
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Estado == entity.EstadoFinalizada {
		return ToObraResponse(o), nil
	}
	if in.Version != 0 && in.Version != o.Version {
		uc.metrics.ConcurrencyConflict("confirmar_entrega")
		return nil, domain.ErrConcurrencyConflict
	}
	next, err := obra.ConfirmEntrega(*o)
	if err != nil {
		uc.log.Obra(id).Warn().Err(err).Str("etapa", string(o.EtapaActual)).Msg("confirmación de entrega rechazada")
		return nil, err
	}
	if err := uc.save(ctx, "confirmar_entrega", &next); err != nil {
		return nil, err
	}
	uc.log.Obra(id).Info().Msg("entrega confirmada, obra finalizada")
	return ToObraResponse(&next), nil
}

// CambiarEstado mueve el estado comercial (ver obra.ChangeEstado).
func (uc *ObraUseCase) CambiarEstado(ctx context.Context, id string, in dto.CambiarEstadoRequest) (*dto.ObraResponse, error) {
	estado, err := obra.ParseEstado(in.Estado)
	if err != nil {
		return nil, err
	}
	o, err := uc.load(ctx, "cambiar_estado", id, in.Version)
	if err != nil {
		return nil, err
	}
	next, err := obra.ChangeEstado(*o, estado)
	if err != nil {
		return nil, err
	}
	if next.Estado == o.Estado {
		return ToObraResponse(&next), nil
	}
	if estado == entity.EstadoActiva || estado == entity.EstadoSinContacto {
		now := uc.now()
		next.FechaUltimoContacto = &now
	}
	if err := uc.save(ctx, "cambiar_estado", &next); err != nil {
		return nil, err
	}
	uc.log.Obra(id).Info().Str("estado", string(estado)).Msg("estado actualizado")
	return ToObraResponse(&next), nil
}

// ActualizarMaterialVendido registra el total vendido informado por el subsistema de ventas.
func (uc *ObraUseCase) ActualizarMaterialVendido(ctx context.Context, id string, monto decimal.Decimal) (*dto.ObraResponse, error) {
	if monto.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := o.Clone()
	next.MaterialVendido = monto
	if err := uc.save(ctx, "material_vendido", &next); err != nil {
		return nil, err
	}
	return ToObraResponse(&next), nil
}

func (uc *ObraUseCase) load(ctx context.Context, op, id string, expectedVersion int64) (*entity.Obra, error) {
	o, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expectedVersion != 0 && expectedVersion != o.Version {
		uc.metrics.ConcurrencyConflict(op)
		return nil, domain.ErrConcurrencyConflict
	}
	return o, nil
}

func (uc *ObraUseCase) save(ctx context.Context, op string, o *entity.Obra) error {
	o.FechaActualizacion = uc.now()
	if err := uc.repo.Save(ctx, o); err != nil {
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			uc.metrics.ConcurrencyConflict(op)
			uc.log.Obra(o.ID).Warn().Str("op", op).Msg("conflicto de concurrencia")
		}
		return err
	}
	return nil
}
