package obra

import (
	"strings"

	"github.com/jhoicas/obras-crm/internal/domain"
	"github.com/jhoicas/obras-crm/internal/domain/entity"
)

// ParseEtapa convierte texto libre (case-insensitive) en una etapa del dominio.
func ParseEtapa(s string) (entity.Etapa, error) {
	e := entity.Etapa(strings.ToLower(strings.TrimSpace(s)))
	if !e.Valid() {
		return "", domain.ErrInvalidStage
	}
	return e, nil
}

// ParseEstado convierte texto libre (case-insensitive) en un estado del dominio.
func ParseEstado(s string) (entity.EstadoObra, error) {
	st := entity.EstadoObra(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", domain.ErrInvalidEstado
	}
	return st, nil
}

// SetCurrentStage fija la etapa actual y recalcula las completadas como las etapas
// estrictamente anteriores. La etapa actual queda "en curso", nunca completada.
// No depende del estado: etapa y estado varían por separado.
func SetCurrentStage(o entity.Obra, target entity.Etapa) (entity.Obra, error) {
	idx := target.Index()
	if idx < 0 {
		return o, domain.ErrInvalidStage
	}
	out := o.Clone()
	out.EtapaActual = target
	out.EtapasCompletadas = entity.Etapas()[:idx]
	return out, nil
}

// ConfirmEntrega finaliza la obra. Solo es válida en la etapa de entrega; si la obra
// ya está finalizada devuelve el mismo estado sin error (reintento seguro del cliente).
func ConfirmEntrega(o entity.Obra) (entity.Obra, error) {
	if o.Estado == entity.EstadoFinalizada {
		return o.Clone(), nil
	}
	if o.EtapaActual != entity.EtapaEntrega || o.Estado == entity.EstadoCancelada {
		return o, domain.ErrInvalidStageTransition
	}
	out := o.Clone()
	out.Estado = entity.EstadoFinalizada
	out.EtapasCompletadas = entity.Etapas()
	return out, nil
}

// ProgressPercentage avance 0..100 calculado solo desde la posición de la etapa actual.
// El redondeo para mostrar queda a cargo del llamador.
func ProgressPercentage(o entity.Obra) float64 {
	idx := o.EtapaActual.Index()
	if idx < 0 {
		return 0
	}
	return float64(idx) / float64(len(entity.Etapas())-1) * 100
}

// ChangeEstado mueve el estado comercial. finalizada solo se alcanza con ConfirmEntrega
// y los estados terminales no se abandonan.
func ChangeEstado(o entity.Obra, estado entity.EstadoObra) (entity.Obra, error) {
	if !estado.Valid() {
		return o, domain.ErrInvalidEstado
	}
	if o.Estado == estado {
		return o.Clone(), nil
	}
	if o.Estado.Terminal() || estado == entity.EstadoFinalizada {
		return o, domain.ErrInvalidStatusTransition
	}
	out := o.Clone()
	out.Estado = estado
	return out, nil
}
