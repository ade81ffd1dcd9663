package obras_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/obras-crm/internal/application/dto"
	"github.com/jhoicas/obras-crm/internal/domain"
	"github.com/jhoicas/obras-crm/internal/domain/entity"
)

func TestCreate_EstadoInicial(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)

	assert.NotEmpty(t, o.ID)
	assert.Equal(t, string(entity.EstadoPlanificacion), o.Estado)
	assert.Equal(t, string(entity.EtapaFundacion), o.EtapaActual)
	assert.Empty(t, o.EtapasCompletadas)
	assert.True(t, o.Pendiente.IsZero())
	assert.Equal(t, 0.0, o.Progreso)
	assert.Len(t, o.Contactos, entity.TotalCargos)
	require.NotNil(t, o.VendedorAsignado)
	assert.Equal(t, "vendedor-1", *o.VendedorAsignado)
	assert.Equal(t, int64(1), o.Version)
}

func TestCreate_SinNombreRechaza(t *testing.T) {
	f := newFixture(t)
	_, err := f.obraUC.Create(context.Background(), "", dto.CreateObraRequest{Constructora: dto.ConstructoraDTO{Nombre: "X"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreate_NormalizaRUT(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	assert.Equal(t, "76123456-0", o.Constructora.RUT)

	_, err := f.obraUC.Create(context.Background(), "v", dto.CreateObraRequest{
		NombreEmpresa: "Obra X",
		Constructora:  dto.ConstructoraDTO{Nombre: "X SpA", RUT: "76.123.456-7"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCambiarEtapa_RecalculaCompletadas(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)

	out, err := f.obraUC.CambiarEtapa(context.Background(), o.ID, dto.CambiarEtapaRequest{Etapa: "estructura"})
	require.NoError(t, err)
	assert.Equal(t, "estructura", out.EtapaActual)
	assert.Equal(t, []string{"fundacion"}, out.EtapasCompletadas)
	assert.InDelta(t, 20.0, out.Progreso, 1e-9)
	assert.Equal(t, int64(2), out.Version)
	assert.Equal(t, []string{"estructura"}, f.metrics.stages)
}

func TestCambiarEtapa_EtapaInvalida(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	_, err := f.obraUC.CambiarEtapa(context.Background(), o.ID, dto.CambiarEtapaRequest{Etapa: "pintura"})
	assert.ErrorIs(t, err, domain.ErrInvalidStage)
}

// Dos ediciones con la misma versión leída: la segunda detecta el conflicto.
func TestCambiarEtapa_VersionObsoletaConflicto(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	ctx := context.Background()

	_, err := f.obraUC.CambiarEtapa(ctx, o.ID, dto.CambiarEtapaRequest{Etapa: "estructura", Version: o.Version})
	require.NoError(t, err)
	_, err = f.obraUC.CambiarEtapa(ctx, o.ID, dto.CambiarEtapaRequest{Etapa: "instalaciones", Version: o.Version})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	actual, err := f.obraUC.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "estructura", actual.EtapaActual, "la segunda edición no pisa la primera")
	assert.Equal(t, []string{"cambiar_etapa"}, f.metrics.conflicts)
}

func TestSave_VersionObsoletaEnRepositorio(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	ctx := context.Background()

	a, err := f.store.Obras().GetByID(ctx, o.ID)
	require.NoError(t, err)
	b, err := f.store.Obras().GetByID(ctx, o.ID)
	require.NoError(t, err)

	a.Notas = "primera"
	require.NoError(t, f.store.Obras().Save(ctx, a))
	b.Notas = "segunda"
	assert.ErrorIs(t, f.store.Obras().Save(ctx, b), domain.ErrConcurrencyConflict)
}

// Escenario de entrega: finaliza y el reintento deja el mismo estado.
func TestConfirmarEntrega_Idempotente(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	ctx := context.Background()

	_, err := f.obraUC.CambiarEstado(ctx, o.ID, dto.CambiarEstadoRequest{Estado: "activa"})
	require.NoError(t, err)
	_, err = f.obraUC.CambiarEtapa(ctx, o.ID, dto.CambiarEtapaRequest{Etapa: "entrega"})
	require.NoError(t, err)

	first, err := f.obraUC.ConfirmarEntrega(ctx, o.ID, dto.ConfirmarEntregaRequest{})
	require.NoError(t, err)
	assert.Equal(t, "finalizada", first.Estado)
	assert.Len(t, first.EtapasCompletadas, 6)

	second, err := f.obraUC.ConfirmarEntrega(ctx, o.ID, dto.ConfirmarEntregaRequest{Version: 1})
	require.NoError(t, err, "el reintento no valida versión ni falla")
	assert.Equal(t, first.Estado, second.Estado)
	assert.Equal(t, first.EtapasCompletadas, second.EtapasCompletadas)
	assert.Equal(t, first.Version, second.Version, "el reintento no guarda")
}

func TestConfirmarEntrega_FueraDeEntrega(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)
	_, err := f.obraUC.ConfirmarEntrega(context.Background(), o.ID, dto.ConfirmarEntregaRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidStageTransition)
}

func TestCambiarEstado_ActualizaUltimoContacto(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)

	out, err := f.obraUC.CambiarEstado(context.Background(), o.ID, dto.CambiarEstadoRequest{Estado: "activa"})
	require.NoError(t, err)
	assert.Equal(t, "activa", out.Estado)
	assert.NotNil(t, out.FechaUltimoContacto)

	_, err = f.obraUC.CambiarEstado(context.Background(), o.ID, dto.CambiarEstadoRequest{Estado: "finalizada"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}

func TestActualizarMaterialVendido(t *testing.T) {
	f := newFixture(t)
	o := f.crearObra(t)

	out, err := f.obraUC.ActualizarMaterialVendido(context.Background(), o.ID, monto(1_250_000))
	require.NoError(t, err)
	assert.True(t, monto(1_250_000).Equal(out.MaterialVendido))

	_, err = f.obraUC.ActualizarMaterialVendido(context.Background(), o.ID, monto(-1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestList_FiltraPorVendedorYEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.crearObra(t)
	_, err := f.obraUC.Create(ctx, "vendedor-2", dto.CreateObraRequest{
		NombreEmpresa: "Condominio Sur", Constructora: dto.ConstructoraDTO{Nombre: "Sur Ltda"},
	})
	require.NoError(t, err)
	_, err = f.obraUC.CambiarEstado(ctx, a.ID, dto.CambiarEstadoRequest{Estado: "activa"})
	require.NoError(t, err)

	mias, err := f.obraUC.List(ctx, "vendedor-1", "", dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, mias, 1)
	assert.Equal(t, a.ID, mias[0].ID)

	activas, err := f.obraUC.List(ctx, "", "activa", dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, activas, 1)

	_, err = f.obraUC.List(ctx, "", "archivada", dto.PageRequest{Limit: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidEstado)
}

func TestList_PaginaPorDefecto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		f.crearObra(t)
	}

	page, err := f.obraUC.List(ctx, "", "", dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, page, 20)

	resto, err := f.obraUC.List(ctx, "", "", dto.PageRequest{Offset: 20})
	require.NoError(t, err)
	assert.Len(t, resto, 5)
}
