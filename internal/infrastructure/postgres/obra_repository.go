package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/obras-crm/internal/domain"
	"github.com/jhoicas/obras-crm/internal/domain/entity"
	"github.com/jhoicas/obras-crm/internal/domain/repository"
)

var _ repository.ObraRepository = (*ObraRepo)(nil)

const obraColumns = `id, nombre_empresa,
	constructora_nombre, constructora_rut, constructora_telefono, constructora_email, constructora_direccion,
	contacto_principal_nombre, contacto_principal_telefono, contacto_principal_email,
	vendedor_asignado, estado, etapa_actual, etapas_completadas,
	valor_estimado, material_vendido, pendiente,
	fecha_inicio, fecha_estimada_fin, fecha_ultimo_contacto, fecha_creacion, fecha_actualizacion,
	notas, version`

// ObraRepo implementación del puerto ObraRepository sobre PostgreSQL (usable con pool o tx).
type ObraRepo struct {
	q Querier
}

// NewObraRepository construye el adaptador de persistencia para obras. Pasar pool o tx (Querier).
func NewObraRepository(q Querier) *ObraRepo {
	return &ObraRepo{q: q}
}

// Create persiste una obra nueva con su pendiente inicial y versión.
func (r *ObraRepo) Create(ctx context.Context, o *entity.Obra) error {
	if o.Version == 0 {
		o.Version = 1
	}
	cp := contactoPrincipalColumns(o.Constructora.ContactoPrincipal)
	query := `INSERT INTO obras (` + obraColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.NombreEmpresa,
		o.Constructora.Nombre, o.Constructora.RUT, o.Constructora.Telefono, o.Constructora.Email, o.Constructora.Direccion,
		cp[0], cp[1], cp[2],
		o.VendedorAsignado, string(o.Estado), string(o.EtapaActual), etapasToStrings(o.EtapasCompletadas),
		o.ValorEstimado, o.MaterialVendido, o.Pendiente,
		o.FechaInicio, o.FechaEstimadaFin, o.FechaUltimoContacto, o.FechaCreacion, o.FechaActualizacion,
		o.Notas, o.Version,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConcurrencyConflict
		}
		return fmt.Errorf("insert obra: %w", err)
	}
	return nil
}

// GetByID obtiene la obra con sus contactos registrados.
func (r *ObraRepo) GetByID(ctx context.Context, id string) (*entity.Obra, error) {
	query := `SELECT ` + obraColumns + ` FROM obras WHERE id = $1`
	o, err := scanObra(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get obra: %w", err)
	}
	contactos, err := NewContactoRepository(r.q).ListByObra(ctx, id)
	if err != nil {
		return nil, err
	}
	o.Contactos = contactos
	return o, nil
}

// Save actualiza los campos editables si la versión coincide. No escribe pendiente ni contactos.
func (r *ObraRepo) Save(ctx context.Context, o *entity.Obra) error {
	cp := contactoPrincipalColumns(o.Constructora.ContactoPrincipal)
	query := `
		UPDATE obras SET
			nombre_empresa = $2,
			constructora_nombre = $3, constructora_rut = $4, constructora_telefono = $5,
			constructora_email = $6, constructora_direccion = $7,
			contacto_principal_nombre = $8, contacto_principal_telefono = $9, contacto_principal_email = $10,
			vendedor_asignado = $11, estado = $12, etapa_actual = $13, etapas_completadas = $14,
			valor_estimado = $15, material_vendido = $16,
			fecha_inicio = $17, fecha_estimada_fin = $18, fecha_ultimo_contacto = $19,
			fecha_actualizacion = $20, notas = $21,
			version = version + 1
		WHERE id = $1 AND version = $22
		RETURNING version, pendiente`
	err := r.q.QueryRow(ctx, query,
		o.ID, o.NombreEmpresa,
		o.Constructora.Nombre, o.Constructora.RUT, o.Constructora.Telefono, o.Constructora.Email, o.Constructora.Direccion,
		cp[0], cp[1], cp[2],
		o.VendedorAsignado, string(o.Estado), string(o.EtapaActual), etapasToStrings(o.EtapasCompletadas),
		o.ValorEstimado, o.MaterialVendido,
		o.FechaInicio, o.FechaEstimadaFin, o.FechaUltimoContacto,
		o.FechaActualizacion, o.Notas,
		o.Version,
	).Scan(&o.Version, &o.Pendiente)
	if err == nil {
		return nil
	}
	if isInvalidID(err) {
		return domain.ErrNotFound
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("save obra: %w", err)
	}
	exists, err := obraExists(ctx, r.q, o.ID)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrConcurrencyConflict
	}
	return domain.ErrNotFound
}

// List obras filtradas por vendedor y estado, más recientes primero.
func (r *ObraRepo) List(ctx context.Context, f repository.ObraFilter) ([]*entity.Obra, error) {
	var (
		where []string
		args  []any
	)
	pos := 1
	if f.VendedorID != "" {
		where = append(where, fmt.Sprintf("vendedor_asignado = $%d", pos))
		args = append(args, f.VendedorID)
		pos++
	}
	if f.Estado != "" {
		where = append(where, fmt.Sprintf("estado = $%d", pos))
		args = append(args, string(f.Estado))
		pos++
	}
	query := `SELECT ` + obraColumns + ` FROM obras`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY fecha_creacion DESC, id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, f.Limit)
		pos++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		args = append(args, f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list obras: %w", err)
	}
	defer rows.Close()

	var (
		list []*entity.Obra
		ids  []string
	)
	for rows.Next() {
		o, err := scanObra(rows)
		if err != nil {
			return nil, fmt.Errorf("scan obra: %w", err)
		}
		list = append(list, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return []*entity.Obra{}, nil
	}

	byObra, err := NewContactoRepository(r.q).listByObras(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, o := range list {
		o.Contactos = byObra[o.ID]
	}
	return list, nil
}

func scanObra(row pgx.Row) (*entity.Obra, error) {
	var (
		o                     entity.Obra
		cpNombre, cpTel, cpEm *string
		estado, etapa         string
		etapas                []string
	)
	err := row.Scan(
		&o.ID, &o.NombreEmpresa,
		&o.Constructora.Nombre, &o.Constructora.RUT, &o.Constructora.Telefono, &o.Constructora.Email, &o.Constructora.Direccion,
		&cpNombre, &cpTel, &cpEm,
		&o.VendedorAsignado, &estado, &etapa, &etapas,
		&o.ValorEstimado, &o.MaterialVendido, &o.Pendiente,
		&o.FechaInicio, &o.FechaEstimadaFin, &o.FechaUltimoContacto, &o.FechaCreacion, &o.FechaActualizacion,
		&o.Notas, &o.Version,
	)
	if err != nil {
		return nil, err
	}
	o.Estado = entity.EstadoObra(estado)
	o.EtapaActual = entity.Etapa(etapa)
	o.EtapasCompletadas = make([]entity.Etapa, 0, len(etapas))
	for _, e := range etapas {
		o.EtapasCompletadas = append(o.EtapasCompletadas, entity.Etapa(e))
	}
	if cpNombre != nil {
		o.Constructora.ContactoPrincipal = &entity.ContactoPrincipal{
			Nombre:   *cpNombre,
			Telefono: deref(cpTel),
			Email:    deref(cpEm),
		}
	}
	return &o, nil
}

func obraExists(ctx context.Context, q Querier, id string) (bool, error) {
	var exists bool
	err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM obras WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		if isInvalidID(err) {
			return false, nil
		}
		return false, fmt.Errorf("exists obra: %w", err)
	}
	return exists, nil
}

func contactoPrincipalColumns(cp *entity.ContactoPrincipal) [3]*string {
	if cp == nil {
		return [3]*string{}
	}
	return [3]*string{&cp.Nombre, &cp.Telefono, &cp.Email}
}

func etapasToStrings(etapas []entity.Etapa) []string {
	out := make([]string, 0, len(etapas))
	for _, e := range etapas {
		out = append(out, string(e))
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
