package obra

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/obras-crm/internal/domain"
	"github.com/jhoicas/obras-crm/internal/domain/entity"
)

// MontoDecimales escala máxima de un monto; coincide con NUMERIC(18, 2) de la migración.
const MontoDecimales = 2

// ValidateMonto exige montos estrictamente positivos y sin fracciones bajo el centavo.
// Un monto con más decimales se rechaza, nunca se redondea.
func ValidateMonto(monto decimal.Decimal) error {
	if !monto.GreaterThan(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if !monto.Equal(monto.Round(MontoDecimales)) {
		return domain.ErrInvalidAmount
	}
	return nil
}

// BalanceFromEntries saldo = Σ PRESTAMO − Σ PAGO.
func BalanceFromEntries(entries []*entity.LedgerEntry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Delta())
	}
	return total
}

// VerifyBalance compara el pendiente persistido con el historial. Una diferencia es
// corrupción: se informa, no se repara.
func VerifyBalance(pendiente decimal.Decimal, entries []*entity.LedgerEntry) error {
	if !pendiente.Equal(BalanceFromEntries(entries)) {
		return domain.ErrLedgerMismatch
	}
	return nil
}
