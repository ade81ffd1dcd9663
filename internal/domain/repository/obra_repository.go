package repository

import (
	"context"

	"github.com/jhoicas/obras-crm/internal/domain/entity"
)

// ObraFilter predicado simple para listados (campos vacíos no filtran).
type ObraFilter struct {
	VendedorID string
	Estado     entity.EstadoObra
	Limit      int
	Offset     int
}

// ObraRepository define el puerto de persistencia del agregado Obra.
// Save aplica concurrencia optimista sobre Version y nunca escribe Pendiente
// (propiedad de la cuenta corriente) ni los contactos.
type ObraRepository interface {
	Create(ctx context.Context, obra *entity.Obra) error
	// GetByID devuelve domain.ErrNotFound si la obra no existe.
	GetByID(ctx context.Context, id string) (*entity.Obra, error)
	// Save devuelve domain.ErrConcurrencyConflict si Version no coincide con la almacenada.
	// En éxito incrementa obra.Version.
	Save(ctx context.Context, obra *entity.Obra) error
	List(ctx context.Context, filter ObraFilter) ([]*entity.Obra, error)
}
