package obras

import (
	"context"
	"errors"
	"strings"

	"github.com/jhoicas/obras-crm/internal/application/dto"
	"github.com/jhoicas/obras-crm/internal/domain"
	"github.com/jhoicas/obras-crm/internal/domain/entity"
	"github.com/jhoicas/obras-crm/internal/domain/obra"
	"github.com/jhoicas/obras-crm/internal/domain/repository"
	"github.com/jhoicas/obras-crm/pkg/logger"
)

// ContactoUseCase directorio de contactos de la obra (cinco cargos fijos).
type ContactoUseCase struct {
	obraRepo     repository.ObraRepository
	contactoRepo repository.ContactoRepository
	log          *logger.Logger
}

// NewContactoUseCase construye el caso de uso. log puede ser nil.
func NewContactoUseCase(obraRepo repository.ObraRepository, contactoRepo repository.ContactoRepository, log *logger.Logger) *ContactoUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ContactoUseCase{obraRepo: obraRepo, contactoRepo: contactoRepo, log: log}
}

// Upsert crea o actualiza el contacto del cargo indicado. Idempotente por (obraID, cargo).
// Cargos fuera de los cinco fijos devuelven domain.ErrInvalidCargo. Con in.Version distinto
// de cero la escritura exige esa versión de la obra; siempre sube la versión.
func (uc *ContactoUseCase) Upsert(ctx context.Context, obraID, cargo string, in dto.UpsertContactoRequest) error {
	canonical, err := obra.CanonicalCargo(cargo)
	if err != nil {
		return err
	}
	version := in.Version
	if version == 0 {
		o, err := uc.obraRepo.GetByID(ctx, obraID)
		if err != nil {
			return err
		}
		version = o.Version
	}
	c := &entity.ContactoObra{
		Cargo:       canonical,
		Nombre:      strings.TrimSpace(in.Nombre),
		Telefono:    strings.TrimSpace(in.Telefono),
		Email:       strings.TrimSpace(in.Email),
		EsPrincipal: canonical == entity.CargoJefeObra || in.EsPrincipal,
	}
	next, err := uc.contactoRepo.Upsert(ctx, obraID, version, c)
	if err != nil {
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			uc.log.Obra(obraID).Warn().Str("cargo", canonical).Int64("version", version).Msg("conflicto de concurrencia en contacto")
		}
		return err
	}
	uc.log.Obra(obraID).Info().Str("cargo", canonical).Int64("version", next).Msg("contacto actualizado")
	return nil
}

// Directorio devuelve los cinco contactos normalizados de la obra.
func (uc *ContactoUseCase) Directorio(ctx context.Context, obraID string) ([]dto.ContactoResponse, error) {
	o, err := uc.obraRepo.GetByID(ctx, obraID)
	if err != nil {
		return nil, err
	}
	contactos, err := uc.contactoRepo.ListByObra(ctx, obraID)
	if err != nil {
		return nil, err
	}
	directorio := obra.Normalize(*o, contactos)
	return toContactosResponse(directorio[:]), nil
}
