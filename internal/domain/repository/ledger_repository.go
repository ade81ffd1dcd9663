package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/obras-crm/internal/domain/entity"
)

// LedgerRepository define el puerto de la cuenta corriente de una obra.
// Los movimientos son inmutables: no existe Update ni Delete.
type LedgerRepository interface {
	// ApplyDelta ejecuta pendiente = pendiente + delta en el almacenamiento, de forma atómica.
	// Devuelve domain.ErrInsufficientBalance si el resultado sería negativo y
	// domain.ErrNotFound si la obra no existe. Retorna el nuevo pendiente.
	ApplyDelta(ctx context.Context, obraID string, delta decimal.Decimal) (decimal.Decimal, error)
	Append(ctx context.Context, entry *entity.LedgerEntry) error
	// ListByObra devuelve los movimientos en orden cronológico.
	ListByObra(ctx context.Context, obraID string) ([]*entity.LedgerEntry, error)
}
