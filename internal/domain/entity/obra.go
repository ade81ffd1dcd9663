package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Etapa es una fase constructiva de la obra. El orden de EtapasOrdenadas es fijo y total.
type Etapa string

const (
	EtapaFundacion     Etapa = "fundacion"
	EtapaEstructura    Etapa = "estructura"
	EtapaAlbanileria   Etapa = "albanileria"
	EtapaInstalaciones Etapa = "instalaciones"
	EtapaTerminaciones Etapa = "terminaciones"
	EtapaEntrega       Etapa = "entrega"
)

var etapasOrdenadas = [...]Etapa{
	EtapaFundacion,
	EtapaEstructura,
	EtapaAlbanileria,
	EtapaInstalaciones,
	EtapaTerminaciones,
	EtapaEntrega,
}

// Etapas devuelve una copia de las seis etapas en orden de avance.
func Etapas() []Etapa {
	out := make([]Etapa, len(etapasOrdenadas))
	copy(out, etapasOrdenadas[:])
	return out
}

// Index devuelve la posición de la etapa (0..5) o -1 si no pertenece al dominio.
func (e Etapa) Index() int {
	for i, v := range etapasOrdenadas {
		if v == e {
			return i
		}
	}
	return -1
}

// Valid indica si la etapa es una de las seis definidas.
func (e Etapa) Valid() bool { return e.Index() >= 0 }

// EstadoObra es el estado comercial/administrativo de la obra.
type EstadoObra string

const (
	EstadoPlanificacion EstadoObra = "planificacion"
	EstadoActiva        EstadoObra = "activa"
	EstadoPausada       EstadoObra = "pausada"
	EstadoFinalizada    EstadoObra = "finalizada"
	EstadoCancelada     EstadoObra = "cancelada"
	EstadoSinContacto   EstadoObra = "sin_contacto"
)

// Valid indica si el estado pertenece al dominio.
func (s EstadoObra) Valid() bool {
	switch s {
	case EstadoPlanificacion, EstadoActiva, EstadoPausada, EstadoFinalizada, EstadoCancelada, EstadoSinContacto:
		return true
	}
	return false
}

// Terminal indica si ninguna operación del núcleo puede sacar a la obra de este estado.
func (s EstadoObra) Terminal() bool {
	return s == EstadoFinalizada || s == EstadoCancelada
}

// ContactoPrincipal contacto declarado al crear la cuenta de la constructora.
type ContactoPrincipal struct {
	Nombre   string
	Telefono string
	Email    string
}

// Constructora es la empresa cliente asociada a la obra.
type Constructora struct {
	Nombre            string
	RUT               string
	Telefono          string
	Email             string
	Direccion         string
	ContactoPrincipal *ContactoPrincipal
}

// Obra es la raíz del agregado: cuenta comercial de un proyecto de construcción.
// Pendiente lo mantiene exclusivamente la cuenta corriente (préstamos y pagos);
// MaterialVendido lo informa el subsistema de ventas.
type Obra struct {
	ID                  string
	NombreEmpresa       string
	Constructora        Constructora
	VendedorAsignado    *string
	Estado              EstadoObra
	EtapaActual         Etapa
	EtapasCompletadas   []Etapa
	Contactos           []ContactoObra
	ValorEstimado       *decimal.Decimal
	MaterialVendido     decimal.Decimal
	Pendiente           decimal.Decimal
	FechaInicio         *time.Time
	FechaEstimadaFin    *time.Time
	FechaUltimoContacto *time.Time
	FechaCreacion       time.Time
	FechaActualizacion  time.Time
	Notas               string
	Version             int64 // token de concurrencia optimista
}

// NewObra construye una obra en su estado inicial: planificación, fundación, sin saldo.
func NewObra(id, nombreEmpresa string, constructora Constructora, now time.Time) *Obra {
	return &Obra{
		ID:                 id,
		NombreEmpresa:      nombreEmpresa,
		Constructora:       constructora,
		Estado:             EstadoPlanificacion,
		EtapaActual:        EtapaFundacion,
		EtapasCompletadas:  []Etapa{},
		MaterialVendido:    decimal.Zero,
		Pendiente:          decimal.Zero,
		FechaCreacion:      now,
		FechaActualizacion: now,
		Version:            1,
	}
}

// Clone devuelve una copia profunda; las operaciones del núcleo nunca mutan la obra recibida.
func (o Obra) Clone() Obra {
	c := o
	if o.EtapasCompletadas != nil {
		c.EtapasCompletadas = append([]Etapa(nil), o.EtapasCompletadas...)
	}
	if o.Contactos != nil {
		c.Contactos = append([]ContactoObra(nil), o.Contactos...)
	}
	if o.Constructora.ContactoPrincipal != nil {
		cp := *o.Constructora.ContactoPrincipal
		c.Constructora.ContactoPrincipal = &cp
	}
	if o.VendedorAsignado != nil {
		v := *o.VendedorAsignado
		c.VendedorAsignado = &v
	}
	if o.ValorEstimado != nil {
		v := *o.ValorEstimado
		c.ValorEstimado = &v
	}
	return c
}
