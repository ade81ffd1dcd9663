package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/obras-crm/internal/domain"
	"github.com/jhoicas/obras-crm/internal/domain/entity"
	"github.com/jhoicas/obras-crm/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación del puerto LedgerRepository sobre PostgreSQL (usable con pool o tx).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador de la cuenta corriente. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// ApplyDelta suma delta al pendiente en una única sentencia condicional.
// La condición pendiente + delta >= 0 se evalúa sobre la fila bloqueada, así dos
// pagos concurrentes nunca pueden dejar el saldo negativo.
func (r *LedgerRepo) ApplyDelta(ctx context.Context, obraID string, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE obras
		SET pendiente = pendiente + $2, fecha_actualizacion = now()
		WHERE id = $1 AND pendiente + $2 >= 0
		RETURNING pendiente`
	var pendiente decimal.Decimal
	err := r.q.QueryRow(ctx, query, obraID, delta).Scan(&pendiente)
	if err == nil {
		return pendiente, nil
	}
	switch {
	case isInvalidID(err):
		return decimal.Zero, domain.ErrNotFound
	case isCheckViolation(err):
		return decimal.Zero, domain.ErrInsufficientBalance
	case !errors.Is(err, pgx.ErrNoRows):
		return decimal.Zero, fmt.Errorf("apply delta: %w", err)
	}
	exists, err := obraExists(ctx, r.q, obraID)
	if err != nil {
		return decimal.Zero, err
	}
	if !exists {
		return decimal.Zero, domain.ErrNotFound
	}
	return decimal.Zero, domain.ErrInsufficientBalance
}

// Append inserta un movimiento. La tabla no admite UPDATE ni DELETE (trigger en la migración).
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	query := `
		INSERT INTO obra_ledger_entries (id, obra_id, kind, monto, descripcion, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, e.ID, e.ObraID, e.Kind, e.Monto, e.Descripcion, e.CreatedAt, e.CreatedBy)
	if err != nil {
		switch {
		case isInvalidID(err):
			return domain.ErrNotFound
		case isCheckViolation(err):
			return fmt.Errorf("%w: %v", domain.ErrInvalidAmount, err)
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByObra devuelve los movimientos en orden de registro.
func (r *LedgerRepo) ListByObra(ctx context.Context, obraID string) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT id, obra_id, kind, monto, descripcion, created_at, created_by
		FROM obra_ledger_entries
		WHERE obra_id = $1
		ORDER BY seq`
	rows, err := r.q.Query(ctx, query, obraID)
	if err != nil {
		if isInvalidID(err) {
			return []*entity.LedgerEntry{}, nil
		}
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(&e.ID, &e.ObraID, &e.Kind, &e.Monto, &e.Descripcion, &e.CreatedAt, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	if err := rows.Err(); err != nil {
		if isInvalidID(err) {
			return []*entity.LedgerEntry{}, nil
		}
		return nil, err
	}
	return list, nil
}
