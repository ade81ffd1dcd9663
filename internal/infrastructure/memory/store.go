package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/obras-crm/internal/application/obras"
	"github.com/jhoicas/obras-crm/internal/domain"
	"github.com/jhoicas/obras-crm/internal/domain/entity"
	"github.com/jhoicas/obras-crm/internal/domain/repository"
)

var (
	_ repository.ObraRepository     = (*ObraRepo)(nil)
	_ repository.LedgerRepository   = (*LedgerRepo)(nil)
	_ repository.ContactoRepository = (*ContactoRepo)(nil)
	_ obras.TxRunner                = (*TxRunner)(nil)
)

type state struct {
	obras     map[string]*entity.Obra
	ledger    map[string][]*entity.LedgerEntry
	contactos map[string]map[string]entity.ContactoObra // obraID -> cargo -> contacto
}

func (s state) clone() state {
	out := state{
		obras:     make(map[string]*entity.Obra, len(s.obras)),
		ledger:    make(map[string][]*entity.LedgerEntry, len(s.ledger)),
		contactos: make(map[string]map[string]entity.ContactoObra, len(s.contactos)),
	}
	for id, o := range s.obras {
		c := o.Clone()
		out.obras[id] = &c
	}
	for id, entries := range s.ledger {
		out.ledger[id] = append([]*entity.LedgerEntry(nil), entries...)
	}
	for id, m := range s.contactos {
		cm := make(map[string]entity.ContactoObra, len(m))
		for k, v := range m {
			cm[k] = v
		}
		out.contactos[id] = cm
	}
	return out
}

// Store almacenamiento en proceso que implementa los mismos puertos que el adaptador
// PostgreSQL. Un único mutex serializa las operaciones; TxRunner lo toma durante toda
// la transacción y restaura la instantánea si fn falla.
type Store struct {
	mu sync.Mutex
	st state
}

// NewStore construye un almacenamiento vacío.
func NewStore() *Store {
	return &Store{st: state{
		obras:     map[string]*entity.Obra{},
		ledger:    map[string][]*entity.LedgerEntry{},
		contactos: map[string]map[string]entity.ContactoObra{},
	}}
}

// Obras repositorio de obras fuera de transacción.
func (s *Store) Obras() *ObraRepo { return &ObraRepo{s: s} }

// Ledger repositorio de la cuenta corriente fuera de transacción.
func (s *Store) Ledger() *LedgerRepo { return &LedgerRepo{s: s} }

// Contactos repositorio de contactos fuera de transacción.
func (s *Store) Contactos() *ContactoRepo { return &ContactoRepo{s: s} }

// TxRunner runner transaccional sobre el store.
func (s *Store) TxRunner() *TxRunner { return &TxRunner{s: s} }

// with ejecuta fn con el mutex tomado salvo que ya esté dentro de una transacción.
func (s *Store) with(inTx bool, fn func(st *state) error) error {
	if !inTx {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	return fn(&s.st)
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner
// ──────────────────────────────────────────────────────────────────────────────

// TxRunner implementa obras.TxRunner con rollback por instantánea.
type TxRunner struct {
	s *Store
}

// Run ejecuta fn de forma exclusiva; si fn devuelve error el estado previo se restaura.
func (r *TxRunner) Run(ctx context.Context, fn func(
	obraRepo repository.ObraRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapshot := r.s.st.clone()
	if err := fn(&ObraRepo{s: r.s, inTx: true}, &LedgerRepo{s: r.s, inTx: true}); err != nil {
		r.s.st = snapshot
		return err
	}
	if err := ctx.Err(); err != nil {
		r.s.st = snapshot
		return err
	}
	return nil
}

// RunReadOnly ejecuta fn de forma exclusiva; cualquier escritura se descarta.
func (r *TxRunner) RunReadOnly(ctx context.Context, fn func(
	obraRepo repository.ObraRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	snapshot := r.s.st.clone()
	defer func() { r.s.st = snapshot }()
	return fn(&ObraRepo{s: r.s, inTx: true}, &LedgerRepo{s: r.s, inTx: true})
}

// ──────────────────────────────────────────────────────────────────────────────
// Obras
// ──────────────────────────────────────────────────────────────────────────────

// ObraRepo implementación en memoria de repository.ObraRepository.
type ObraRepo struct {
	s    *Store
	inTx bool
}

// Create persiste una obra nueva.
func (r *ObraRepo) Create(ctx context.Context, o *entity.Obra) error {
	return r.s.with(r.inTx, func(st *state) error {
		if _, ok := st.obras[o.ID]; ok {
			return domain.ErrConcurrencyConflict
		}
		if o.Version == 0 {
			o.Version = 1
		}
		c := o.Clone()
		c.Contactos = nil
		st.obras[o.ID] = &c
		return nil
	})
}

// GetByID obtiene la obra con sus contactos.
func (r *ObraRepo) GetByID(ctx context.Context, id string) (*entity.Obra, error) {
	var out *entity.Obra
	err := r.s.with(r.inTx, func(st *state) error {
		o, ok := st.obras[id]
		if !ok {
			return domain.ErrNotFound
		}
		c := o.Clone()
		c.Contactos = contactosOrdenados(st.contactos[id])
		out = &c
		return nil
	})
	return out, err
}

// Save guarda los cambios con control de versión. No toca Pendiente ni contactos.
func (r *ObraRepo) Save(ctx context.Context, o *entity.Obra) error {
	return r.s.with(r.inTx, func(st *state) error {
		stored, ok := st.obras[o.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if stored.Version != o.Version {
			return domain.ErrConcurrencyConflict
		}
		c := o.Clone()
		c.Contactos = nil
		c.Pendiente = stored.Pendiente
		c.Version = stored.Version + 1
		st.obras[o.ID] = &c
		o.Version = c.Version
		o.Pendiente = stored.Pendiente
		return nil
	})
}

// List filtra por vendedor y estado, más recientes primero.
func (r *ObraRepo) List(ctx context.Context, f repository.ObraFilter) ([]*entity.Obra, error) {
	var out []*entity.Obra
	err := r.s.with(r.inTx, func(st *state) error {
		for id, o := range st.obras {
			if f.VendedorID != "" && (o.VendedorAsignado == nil || *o.VendedorAsignado != f.VendedorID) {
				continue
			}
			if f.Estado != "" && o.Estado != f.Estado {
				continue
			}
			c := o.Clone()
			c.Contactos = contactosOrdenados(st.contactos[id])
			out = append(out, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].FechaCreacion.Equal(out[j].FechaCreacion) {
			return out[i].FechaCreacion.After(out[j].FechaCreacion)
		}
		return out[i].ID < out[j].ID
	})
	if f.Offset >= len(out) {
		return []*entity.Obra{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Cuenta corriente
// ──────────────────────────────────────────────────────────────────────────────

// LedgerRepo implementación en memoria de repository.LedgerRepository.
type LedgerRepo struct {
	s    *Store
	inTx bool
}

// ApplyDelta suma delta al pendiente si el resultado no queda negativo.
func (r *LedgerRepo) ApplyDelta(ctx context.Context, obraID string, delta decimal.Decimal) (decimal.Decimal, error) {
	var out decimal.Decimal
	err := r.s.with(r.inTx, func(st *state) error {
		o, ok := st.obras[obraID]
		if !ok {
			return domain.ErrNotFound
		}
		next := o.Pendiente.Add(delta)
		if next.IsNegative() {
			return domain.ErrInsufficientBalance
		}
		o.Pendiente = next
		out = next
		return nil
	})
	return out, err
}

// Append agrega un movimiento inmutable.
func (r *LedgerRepo) Append(ctx context.Context, e *entity.LedgerEntry) error {
	return r.s.with(r.inTx, func(st *state) error {
		if _, ok := st.obras[e.ObraID]; !ok {
			return domain.ErrNotFound
		}
		c := *e
		st.ledger[e.ObraID] = append(st.ledger[e.ObraID], &c)
		return nil
	})
}

// ListByObra devuelve copias de los movimientos en orden de registro.
func (r *LedgerRepo) ListByObra(ctx context.Context, obraID string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	err := r.s.with(r.inTx, func(st *state) error {
		for _, e := range st.ledger[obraID] {
			c := *e
			out = append(out, &c)
		}
		return nil
	})
	return out, err
}

// ──────────────────────────────────────────────────────────────────────────────
// Contactos
// ──────────────────────────────────────────────────────────────────────────────

// ContactoRepo implementación en memoria de repository.ContactoRepository.
type ContactoRepo struct {
	s *Store
}

// Upsert crea o reemplaza el contacto del cargo si la versión de la obra coincide,
// y sube esa versión.
func (r *ContactoRepo) Upsert(ctx context.Context, obraID string, expectedVersion int64, c *entity.ContactoObra) (int64, error) {
	var version int64
	err := r.s.with(false, func(st *state) error {
		o, ok := st.obras[obraID]
		if !ok {
			return domain.ErrNotFound
		}
		if o.Version != expectedVersion {
			return domain.ErrConcurrencyConflict
		}
		m, ok := st.contactos[obraID]
		if !ok {
			m = map[string]entity.ContactoObra{}
			st.contactos[obraID] = m
		}
		m[c.Cargo] = *c
		o.Version++
		o.FechaActualizacion = time.Now()
		version = o.Version
		return nil
	})
	return version, err
}

// ListByObra contactos registrados de la obra, en el orden de los cargos fijos.
func (r *ContactoRepo) ListByObra(ctx context.Context, obraID string) ([]entity.ContactoObra, error) {
	var out []entity.ContactoObra
	err := r.s.with(false, func(st *state) error {
		out = contactosOrdenados(st.contactos[obraID])
		return nil
	})
	return out, err
}

func contactosOrdenados(m map[string]entity.ContactoObra) []entity.ContactoObra {
	out := make([]entity.ContactoObra, 0, len(m))
	for _, cargo := range entity.Cargos() {
		if c, ok := m[cargo]; ok {
			out = append(out, c)
		}
	}
	return out
}
