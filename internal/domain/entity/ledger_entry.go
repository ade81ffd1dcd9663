package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de la cuenta corriente de una obra.
const (
	LedgerKindPrestamo = "PRESTAMO" // aumenta el pendiente
	LedgerKindPago     = "PAGO"     // disminuye el pendiente
)

// LedgerEntry movimiento inmutable de la cuenta corriente. Monto siempre positivo;
// el signo lo determina Kind.
type LedgerEntry struct {
	ID          string
	ObraID      string
	Kind        string
	Monto       decimal.Decimal
	Descripcion string
	CreatedAt   time.Time
	CreatedBy   string
}

// Delta devuelve el efecto del movimiento sobre el pendiente.
func (e LedgerEntry) Delta() decimal.Decimal {
	if e.Kind == LedgerKindPago {
		return e.Monto.Neg()
	}
	return e.Monto
}
