package obras

import (
	"github.com/jhoicas/obras-crm/internal/application/dto"
	"github.com/jhoicas/obras-crm/internal/domain/entity"
	"github.com/jhoicas/obras-crm/internal/domain/obra"
)

// ToObraResponse arma la vista de la obra con el avance y los cinco contactos normalizados.
func ToObraResponse(o *entity.Obra) *dto.ObraResponse {
	completadas := make([]string, 0, len(o.EtapasCompletadas))
	for _, e := range o.EtapasCompletadas {
		completadas = append(completadas, string(e))
	}
	directorio := obra.Directorio(*o)
	return &dto.ObraResponse{
		ID:                  o.ID,
		NombreEmpresa:       o.NombreEmpresa,
		Constructora:        toConstructoraDTO(o.Constructora),
		VendedorAsignado:    o.VendedorAsignado,
		Estado:              string(o.Estado),
		EtapaActual:         string(o.EtapaActual),
		EtapasCompletadas:   completadas,
		Progreso:            obra.ProgressPercentage(*o),
		Contactos:           toContactosResponse(directorio[:]),
		ValorEstimado:       o.ValorEstimado,
		MaterialVendido:     o.MaterialVendido,
		Pendiente:           o.Pendiente,
		FechaInicio:         o.FechaInicio,
		FechaEstimadaFin:    o.FechaEstimadaFin,
		FechaUltimoContacto: o.FechaUltimoContacto,
		FechaCreacion:       o.FechaCreacion,
		FechaActualizacion:  o.FechaActualizacion,
		Notas:               o.Notas,
		Version:             o.Version,
	}
}

func toConstructoraDTO(c entity.Constructora) dto.ConstructoraDTO {
	out := dto.ConstructoraDTO{
		Nombre:    c.Nombre,
		RUT:       c.RUT,
		Telefono:  c.Telefono,
		Email:     c.Email,
		Direccion: c.Direccion,
	}
	if c.ContactoPrincipal != nil {
		out.ContactoPrincipal = &dto.ContactoPrincipalDTO{
			Nombre:   c.ContactoPrincipal.Nombre,
			Telefono: c.ContactoPrincipal.Telefono,
			Email:    c.ContactoPrincipal.Email,
		}
	}
	return out
}

func fromConstructoraDTO(c dto.ConstructoraDTO) entity.Constructora {
	out := entity.Constructora{
		Nombre:    c.Nombre,
		RUT:       c.RUT,
		Telefono:  c.Telefono,
		Email:     c.Email,
		Direccion: c.Direccion,
	}
	if c.ContactoPrincipal != nil {
		out.ContactoPrincipal = &entity.ContactoPrincipal{
			Nombre:   c.ContactoPrincipal.Nombre,
			Telefono: c.ContactoPrincipal.Telefono,
			Email:    c.ContactoPrincipal.Email,
		}
	}
	return out
}

func toContactosResponse(list []entity.ContactoObra) []dto.ContactoResponse {
	out := make([]dto.ContactoResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.ContactoResponse{
			Cargo:       c.Cargo,
			Nombre:      c.Nombre,
			Telefono:    c.Telefono,
			Email:       c.Email,
			EsPrincipal: c.EsPrincipal,
		})
	}
	return out
}

func toLedgerEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ID:          e.ID,
		ObraID:      e.ObraID,
		Kind:        e.Kind,
		Monto:       e.Monto,
		Descripcion: e.Descripcion,
		CreatedAt:   e.CreatedAt,
		CreatedBy:   e.CreatedBy,
	}
}
