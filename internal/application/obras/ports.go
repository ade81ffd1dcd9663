package obras

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/obras-crm/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Cada operación pública de la cuenta corriente corresponde a exactamente una llamada a Run.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		obraRepo repository.ObraRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
	// RunReadOnly ejecuta fn sobre una instantánea consistente (solo lectura).
	RunReadOnly(ctx context.Context, fn func(
		obraRepo repository.ObraRepository,
		ledgerRepo repository.LedgerRepository,
	) error) error
}

// Metrics recibe los eventos de negocio observables del núcleo.
type Metrics interface {
	LedgerEntryRegistered(kind string, monto decimal.Decimal)
	LedgerEntryRejected(kind, reason string)
	StageChanged(etapa string)
	ConcurrencyConflict(operation string)
}

// NopMetrics descarta todos los eventos.
type NopMetrics struct{}

func (NopMetrics) LedgerEntryRegistered(string, decimal.Decimal) {}
func (NopMetrics) LedgerEntryRejected(string, string)            {}
func (NopMetrics) StageChanged(string)                           {}
func (NopMetrics) ConcurrencyConflict(string)                    {}
