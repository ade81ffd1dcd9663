package repository

import (
	"context"

	"github.com/jhoicas/obras-crm/internal/domain/entity"
)

// ContactoRepository define el puerto de contactos por obra, con clave (obraID, cargo).
type ContactoRepository interface {
	// Upsert escribe el contacto y sube la versión de la obra en una sola operación atómica,
	// solo si la versión almacenada es expectedVersion. Devuelve la nueva versión,
	// domain.ErrConcurrencyConflict si la versión no coincide y domain.ErrNotFound si la
	// obra no existe.
	Upsert(ctx context.Context, obraID string, expectedVersion int64, contacto *entity.ContactoObra) (int64, error)
	ListByObra(ctx context.Context, obraID string) ([]entity.ContactoObra, error)
}
