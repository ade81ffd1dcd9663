package obras_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/obras-crm/internal/application/dto"
	"github.com/jhoicas/obras-crm/internal/application/obras"
	"github.com/jhoicas/obras-crm/internal/domain"
	"github.com/jhoicas/obras-crm/internal/domain/entity"
	"github.com/jhoicas/obras-crm/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	store    *memory.Store
	obraUC   *obras.ObraUseCase
	ledgerUC *obras.LedgerUseCase
	metrics  *recordingMetrics
}

// recordingMetrics registra los eventos recibidos para aserciones.
type recordingMetrics struct {
	mu         sync.Mutex
	registered []string
	rejected   []string
	stages     []string
	conflicts  []string
}

func (m *recordingMetrics) LedgerEntryRegistered(kind string, _ decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registered = append(m.registered, kind)
}

func (m *recordingMetrics) LedgerEntryRejected(kind, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected = append(m.rejected, kind+":"+reason)
}

func (m *recordingMetrics) StageChanged(etapa string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stages = append(m.stages, etapa)
}

func (m *recordingMetrics) ConcurrencyConflict(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflicts = append(m.conflicts, op)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	metrics := &recordingMetrics{}
	return &fixture{
		store:    store,
		obraUC:   obras.NewObraUseCase(store.Obras(), metrics, nil),
		ledgerUC: obras.NewLedgerUseCase(store.TxRunner(), metrics, nil),
		metrics:  metrics,
	}
}

func (f *fixture) crearObra(t *testing.T) *dto.ObraResponse {
	t.Helper()
	o, err := f.obraUC.Create(context.Background(), "vendedor-1", dto.CreateObraRequest{
		NombreEmpresa: "Edificio Los Robles",
		Constructora:  dto.ConstructoraDTO{Nombre: "Constructora Andes", RUT: "76.123.456-0"},
	})
	require.NoError(t, err)
	return o
}

func monto(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

// ──────────────────────────────────────────────────────────────────────────────
// Préstamos y pagos
// ──────────────────────────────────────────────────────────────────────────────

func TestRegistrarPrestamo_AumentaPendiente(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	ctx := context.Background()

	out, err := f.ledgerUC.RegistrarPrestamo(ctx, obras.LedgerInput{ObraID: o.ID, UserID: "vendedor-1", Monto: monto(500_000)})
	require.NoError(t, err)
	assert.True(t, monto(500_000).Equal(out.Pendiente))

	movs, err := f.ledgerUC.ListMovimientos(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.LedgerKindPrestamo, movs[0].Kind)
	assert.Equal(t, "vendedor-1", movs[0].CreatedBy)
	assert.Equal(t, []string{entity.LedgerKindPrestamo}, f.metrics.registered)
}

func TestRegistrarPago_SuperaPendienteRechaza(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	ctx := context.Background()
	_, err := f.ledgerUC.RegistrarPrestamo(ctx, obras.LedgerInput{ObraID: o.ID, Monto: monto(500_000)})
	require.NoError(t, err)

	_, err = f.ledgerUC.RegistrarPago(ctx, obras.LedgerInput{ObraID: o.ID, Monto: monto(600_000)})
	assert.ErrorIs(t, err, domain.ErrInsufficientBalance)

	saldo, err := f.ledgerUC.CurrentBalance(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, monto(500_000).Equal(saldo.Pendiente), "el pendiente no cambia")
	assert.Equal(t, 1, saldo.Movimientos, "el pago rechazado no se registra")
	assert.Contains(t, f.metrics.rejected, entity.LedgerKindPago+":insufficient_balance")
}

func TestRegistrarPago_ExactoDejaEnCero(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	ctx := context.Background()
	_, err := f.ledgerUC.RegistrarPrestamo(ctx, obras.LedgerInput{ObraID: o.ID, Monto: monto(500_000)})
	require.NoError(t, err)

	out, err := f.ledgerUC.RegistrarPago(ctx, obras.LedgerInput{ObraID: o.ID, Monto: monto(500_000), Descripcion: "transferencia"})
	require.NoError(t, err)
	assert.True(t, out.Pendiente.IsZero())

	saldo, err := f.ledgerUC.CurrentBalance(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, monto(500_000).Equal(saldo.Prestamos))
	assert.True(t, monto(500_000).Equal(saldo.Pagos))
}

func TestRegistrar_MontoInvalido(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	ctx := context.Background()

	_, err := f.ledgerUC.RegistrarPrestamo(ctx, obras.LedgerInput{ObraID: o.ID, Monto: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.ledgerUC.RegistrarPago(ctx, obras.LedgerInput{ObraID: o.ID, Monto: monto(-1)})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	_, err = f.ledgerUC.RegistrarPrestamo(ctx, obras.LedgerInput{ObraID: o.ID, Monto: decimal.RequireFromString("0.001")})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount, "fracción de centavo se rechaza, no se redondea")

	saldo, err := f.ledgerUC.CurrentBalance(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, saldo.Pendiente.IsZero())

	movs, err := f.ledgerUC.ListMovimientos(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestRegistrar_ObraInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.ledgerUC.RegistrarPrestamo(context.Background(), obras.LedgerInput{ObraID: "no-existe", Monto: monto(10)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.ledgerUC.CurrentBalance(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Para cualquier secuencia: pendiente == Σ préstamos − Σ pagos y nunca negativo.
func TestLedger_IdentidadDelSaldo(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	ctx := context.Background()

	ops := []struct {
		pago  bool
		monto int64
	}{
		{false, 100}, {true, 30}, {true, 80}, {false, 50}, {true, 120}, {true, 1}, {false, 7},
	}
	esperado := decimal.Zero
	for _, op := range ops {
		in := obras.LedgerInput{ObraID: o.ID, Monto: monto(op.monto)}
		var err error
		if op.pago {
			_, err = f.ledgerUC.RegistrarPago(ctx, in)
		} else {
			_, err = f.ledgerUC.RegistrarPrestamo(ctx, in)
		}
		switch {
		case op.pago && monto(op.monto).GreaterThan(esperado):
			assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
		case op.pago:
			require.NoError(t, err)
			esperado = esperado.Sub(monto(op.monto))
		default:
			require.NoError(t, err)
			esperado = esperado.Add(monto(op.monto))
		}
		saldo, err := f.ledgerUC.CurrentBalance(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, esperado.Equal(saldo.Pendiente), "esperado %s, obtenido %s", esperado, saldo.Pendiente)
		assert.False(t, saldo.Pendiente.IsNegative())
	}
}

// Préstamos y pagos concurrentes no pierden actualizaciones.
func TestLedger_ConcurrenciaSinPerdidas(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledgerUC.RegistrarPrestamo(ctx, obras.LedgerInput{ObraID: o.ID, Monto: monto(1_000)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// 60 pagos de 1.000 contra 50.000: exactamente 50 deben pasar.
	var (
		mu        sync.Mutex
		aceptados int
	)
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.ledgerUC.RegistrarPago(ctx, obras.LedgerInput{ObraID: o.ID, Monto: monto(1_000)}); err == nil {
				mu.Lock()
				aceptados++
				mu.Unlock()
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientBalance)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, n, aceptados)
	saldo, err := f.ledgerUC.CurrentBalance(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, saldo.Pendiente.IsZero())
	assert.Equal(t, 2*n, saldo.Movimientos)
}

func TestCurrentBalance_DetectaCorrupcion(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	ctx := context.Background()
	_, err := f.ledgerUC.RegistrarPrestamo(ctx, obras.LedgerInput{ObraID: o.ID, Monto: monto(100)})
	require.NoError(t, err)

	// delta aplicado por fuera de la cuenta corriente: el pendiente ya no cuadra
	_, err = f.store.Ledger().ApplyDelta(ctx, o.ID, monto(5))
	require.NoError(t, err)

	_, err = f.ledgerUC.CurrentBalance(ctx, o.ID)
	assert.ErrorIs(t, err, domain.ErrLedgerMismatch)
}

// Un cambio de etapa guardado con la versión leída no pisa el pendiente.
func TestSave_NoPisaPendiente(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	ctx := context.Background()

	_, err := f.ledgerUC.RegistrarPrestamo(ctx, obras.LedgerInput{ObraID: o.ID, Monto: monto(700)})
	require.NoError(t, err)

	out, err := f.obraUC.CambiarEtapa(ctx, o.ID, dto.CambiarEtapaRequest{Etapa: "estructura", Version: o.Version})
	require.NoError(t, err)
	assert.True(t, monto(700).Equal(out.Pendiente))
}
