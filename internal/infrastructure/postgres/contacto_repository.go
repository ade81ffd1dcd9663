package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/obras-crm/internal/domain"
	"github.com/jhoicas/obras-crm/internal/domain/entity"
	"github.com/jhoicas/obras-crm/internal/domain/repository"
)

var _ repository.ContactoRepository = (*ContactoRepo)(nil)

// ContactoRepo implementación del puerto ContactoRepository sobre PostgreSQL.
type ContactoRepo struct {
	q Querier
}

// NewContactoRepository construye el adaptador de contactos. Pasar pool o tx (Querier).
func NewContactoRepository(q Querier) *ContactoRepo {
	return &ContactoRepo{q: q}
}

// Upsert crea o reemplaza el contacto del cargo; la clave es (obra_id, cargo).
// La escritura solo ocurre si la versión de la obra coincide, y la sube en la misma sentencia.
func (r *ContactoRepo) Upsert(ctx context.Context, obraID string, expectedVersion int64, c *entity.ContactoObra) (int64, error) {
	query := `
		WITH bump AS (
			UPDATE obras SET version = version + 1, fecha_actualizacion = now()
			WHERE id = $1 AND version = $2
			RETURNING id, version
		), upsert AS (
			INSERT INTO obra_contactos (obra_id, cargo, nombre, telefono, email, es_principal, updated_at)
			SELECT id, $3::text, $4::text, $5::text, $6::text, $7::boolean, now() FROM bump
			ON CONFLICT (obra_id, cargo) DO UPDATE SET
				nombre = EXCLUDED.nombre,
				telefono = EXCLUDED.telefono,
				email = EXCLUDED.email,
				es_principal = EXCLUDED.es_principal,
				updated_at = EXCLUDED.updated_at
		)
		SELECT version FROM bump`
	var version int64
	err := r.q.QueryRow(ctx, query, obraID, expectedVersion, c.Cargo, c.Nombre, c.Telefono, c.Email, c.EsPrincipal).Scan(&version)
	if err == nil {
		return version, nil
	}
	if isInvalidID(err) {
		return 0, domain.ErrNotFound
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("upsert contacto: %w", err)
	}
	exists, err := obraExists(ctx, r.q, obraID)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, domain.ErrConcurrencyConflict
	}
	return 0, domain.ErrNotFound
}

// ListByObra contactos registrados de la obra, en el orden de los cargos fijos.
func (r *ContactoRepo) ListByObra(ctx context.Context, obraID string) ([]entity.ContactoObra, error) {
	byObra, err := r.listByObras(ctx, []string{obraID})
	if err != nil {
		return nil, err
	}
	if list, ok := byObra[obraID]; ok {
		return list, nil
	}
	return []entity.ContactoObra{}, nil
}

func (r *ContactoRepo) listByObras(ctx context.Context, obraIDs []string) (map[string][]entity.ContactoObra, error) {
	query := `
		SELECT obra_id, cargo, nombre, telefono, email, es_principal
		FROM obra_contactos
		WHERE obra_id = ANY($1)`
	rows, err := r.q.Query(ctx, query, obraIDs)
	if err != nil {
		return nil, fmt.Errorf("list contactos: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]entity.ContactoObra, len(obraIDs))
	for rows.Next() {
		var (
			obraID string
			c      entity.ContactoObra
		)
		if err := rows.Scan(&obraID, &c.Cargo, &c.Nombre, &c.Telefono, &c.Email, &c.EsPrincipal); err != nil {
			return nil, fmt.Errorf("scan contacto: %w", err)
		}
		out[obraID] = append(out[obraID], c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for id := range out {
		sortPorCargo(out[id])
	}
	return out, nil
}

func sortPorCargo(list []entity.ContactoObra) {
	orden := make(map[string]int, entity.TotalCargos)
	for i, c := range entity.Cargos() {
		orden[c] = i
	}
	sort.SliceStable(list, func(i, j int) bool {
		return orden[list[i].Cargo] < orden[list[j].Cargo]
	})
}
