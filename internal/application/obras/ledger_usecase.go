package obras

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/obras-crm/internal/application/dto"
	"github.com/jhoicas/obras-crm/internal/domain"
	"github.com/jhoicas/obras-crm/internal/domain/entity"
	"github.com/jhoicas/obras-crm/internal/domain/obra"
	"github.com/jhoicas/obras-crm/internal/domain/repository"
	"github.com/jhoicas/obras-crm/pkg/logger"
)

// LedgerInput entrada para registrar un préstamo o un pago.
type LedgerInput struct {
	ObraID      string
	UserID      string
	Monto       decimal.Decimal
	Descripcion string
}

// LedgerUseCase cuenta corriente de la obra. El pendiente se modifica solo como delta
// atómico en el almacenamiento (pendiente = pendiente + delta), nunca leyendo el valor
// y escribiéndolo de vuelta desde la aplicación.
type LedgerUseCase struct {
	txRunner TxRunner
	metrics  Metrics
	log      *logger.Logger
	now      func() time.Time
}

// NewLedgerUseCase construye el caso de uso. metrics y log pueden ser nil.
func NewLedgerUseCase(txRunner TxRunner, metrics Metrics, log *logger.Logger) *LedgerUseCase {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &LedgerUseCase{txRunner: txRunner, metrics: metrics, log: log, now: time.Now}
}

// RegistrarPrestamo agrega un PRESTAMO y aumenta el pendiente en monto.
func (uc *LedgerUseCase) RegistrarPrestamo(ctx context.Context, in LedgerInput) (*dto.ObraResponse, error) {
	return uc.registrar(ctx, entity.LedgerKindPrestamo, in)
}

// RegistrarPago agrega un PAGO y disminuye el pendiente en exactamente monto.
// Un pago mayor al pendiente se rechaza con domain.ErrInsufficientBalance sin registrar nada.
func (uc *LedgerUseCase) RegistrarPago(ctx context.Context, in LedgerInput) (*dto.ObraResponse, error) {
	return uc.registrar(ctx, entity.LedgerKindPago, in)
}

func (uc *LedgerUseCase) registrar(ctx context.Context, kind string, in LedgerInput) (*dto.ObraResponse, error) {
	log := uc.log.Obra(in.ObraID)
	if strings.TrimSpace(in.ObraID) == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := obra.ValidateMonto(in.Monto); err != nil {
		uc.metrics.LedgerEntryRejected(kind, "invalid_amount")
		log.Warn().Str("kind", kind).Str("monto", in.Monto.String()).Msg("monto inválido")
		return nil, err
	}

	now := uc.now()
	entry := &entity.LedgerEntry{
		ID:          uuid.New().String(),
		ObraID:      in.ObraID,
		Kind:        kind,
		Monto:       in.Monto,
		Descripcion: strings.TrimSpace(in.Descripcion),
		CreatedAt:   now,
		CreatedBy:   in.UserID,
	}

	var updated *entity.Obra
	err := uc.txRunner.Run(ctx, func(obraRepo repository.ObraRepository, ledgerRepo repository.LedgerRepository) error {
		if _, err := ledgerRepo.ApplyDelta(ctx, in.ObraID, entry.Delta()); err != nil {
			return err
		}
		if err := ledgerRepo.Append(ctx, entry); err != nil {
			return err
		}
		o, err := obraRepo.GetByID(ctx, in.ObraID)
		if err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			uc.metrics.LedgerEntryRejected(kind, "insufficient_balance")
			log.Warn().Str("kind", kind).Str("monto", in.Monto.String()).Msg("pago rechazado: supera el pendiente")
		}
		return nil, err
	}

	uc.metrics.LedgerEntryRegistered(kind, in.Monto)
	log.Info().
		Str("kind", kind).
		Str("monto", in.Monto.String()).
		Str("pendiente", updated.Pendiente.String()).
		Msg("movimiento registrado")
	return ToObraResponse(updated), nil
}

// CurrentBalance devuelve el pendiente persistido, verificado contra el historial.
// Si no coincide retorna domain.ErrLedgerMismatch: la corrupción se informa, no se repara.
func (uc *LedgerUseCase) CurrentBalance(ctx context.Context, obraID string) (*dto.SaldoResponse, error) {
	var (
		o       *entity.Obra
		entries []*entity.LedgerEntry
	)
	err := uc.txRunner.RunReadOnly(ctx, func(obraRepo repository.ObraRepository, ledgerRepo repository.LedgerRepository) error {
		var err error
		if o, err = obraRepo.GetByID(ctx, obraID); err != nil {
			return err
		}
		entries, err = ledgerRepo.ListByObra(ctx, obraID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := obra.VerifyBalance(o.Pendiente, entries); err != nil {
		uc.log.Obra(obraID).Error().
			Str("pendiente", o.Pendiente.String()).
			Str("historial", obra.BalanceFromEntries(entries).String()).
			Msg("saldo inconsistente con el historial")
		return nil, err
	}

	prestamos, pagos := decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.Kind == entity.LedgerKindPago {
			pagos = pagos.Add(e.Monto)
		} else {
			prestamos = prestamos.Add(e.Monto)
		}
	}
	return &dto.SaldoResponse{
		ObraID:      obraID,
		Pendiente:   o.Pendiente,
		Prestamos:   prestamos,
		Pagos:       pagos,
		Movimientos: len(entries),
	}, nil
}

// ListMovimientos historial cronológico de la cuenta corriente.
func (uc *LedgerUseCase) ListMovimientos(ctx context.Context, obraID string) ([]dto.LedgerEntryResponse, error) {
	var entries []*entity.LedgerEntry
	err := uc.txRunner.RunReadOnly(ctx, func(obraRepo repository.ObraRepository, ledgerRepo repository.LedgerRepository) error {
		if _, err := obraRepo.GetByID(ctx, obraID); err != nil {
			return err
		}
		var err error
		entries, err = ledgerRepo.ListByObra(ctx, obraID)
		return err
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toLedgerEntryResponse(e))
	}
	return out, nil
}
