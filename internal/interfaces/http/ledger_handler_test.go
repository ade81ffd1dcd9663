package http_test

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/obras-crm/internal/application/dto"
	pkgjwt "github.com/jhoicas/obras-crm/pkg/jwt"
)

func TestCuentaCorriente_PrestamoPagoYSaldo(t *testing.T) {
	app := buildTestApp(t)
	auth := token(t, testUserID, pkgjwt.RoleVendedor)
	o := crearObra(t, app, auth)
	base := "/api/obras/" + o.ID

	resp := doJSON(t, app, http.MethodPost, base+"/prestamos", auth, map[string]any{"monto": "500000", "descripcion": "cemento"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "500000", decode[dto.ObraResponse](t, resp).Pendiente.String())

	resp = doJSON(t, app, http.MethodPost, base+"/pagos", auth, map[string]any{"monto": "600000"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_BALANCE", decode[dto.ErrorResponse](t, resp).Code)

	resp = doJSON(t, app, http.MethodPost, base+"/pagos", auth, map[string]any{"monto": "200000"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "300000", decode[dto.ObraResponse](t, resp).Pendiente.String())

	resp = doJSON(t, app, http.MethodGet, base+"/saldo", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saldo := decode[dto.SaldoResponse](t, resp)
	assert.Equal(t, "300000", saldo.Pendiente.String())
	assert.Equal(t, "500000", saldo.Prestamos.String())
	assert.Equal(t, "200000", saldo.Pagos.String())
	assert.Equal(t, 2, saldo.Movimientos)

	resp = doJSON(t, app, http.MethodGet, base+"/movimientos", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	movs := decode[[]dto.LedgerEntryResponse](t, resp)
	require.Len(t, movs, 2)
	assert.Equal(t, "PRESTAMO", movs[0].Kind)
	assert.Equal(t, testUserID, movs[0].CreatedBy)
	assert.Equal(t, "PAGO", movs[1].Kind)
}

func TestCuentaCorriente_MontoInvalido400(t *testing.T) {
	app := buildTestApp(t)
	auth := token(t, testUserID, pkgjwt.RoleVendedor)
	o := crearObra(t, app, auth)

	for _, monto := range []string{"0", "-100", "0.001", "1.234"} {
		resp := doJSON(t, app, http.MethodPost, "/api/obras/"+o.ID+"/prestamos", auth, map[string]any{"monto": monto})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, monto)
		assert.Equal(t, "INVALID_AMOUNT", decode[dto.ErrorResponse](t, resp).Code)
	}

	resp := doJSON(t, app, http.MethodGet, "/api/obras/"+o.ID+"/saldo", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	saldo := decode[dto.SaldoResponse](t, resp)
	assert.True(t, saldo.Pendiente.IsZero())
	assert.Equal(t, 0, saldo.Movimientos)
}

func TestContactos_UpsertYDirectorio(t *testing.T) {
	app := buildTestApp(t)
	auth := token(t, testUserID, pkgjwt.RoleVendedor)
	o := crearObra(t, app, auth)
	base := "/api/obras/" + o.ID + "/contactos/"

	resp := doJSON(t, app, http.MethodPut, base+url.PathEscape("administrador de obra"), auth, dto.UpsertContactoRequest{Nombre: "Carla Muñoz", Telefono: "+56911111111"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	dir := decode[[]dto.ContactoResponse](t, resp)
	require.Len(t, dir, 5)
	assert.Equal(t, "Administrador de Obra", dir[2].Cargo)
	assert.Equal(t, "Carla Muñoz", dir[2].Nombre)
	assert.Equal(t, "No existe", dir[3].Nombre)

	resp = doJSON(t, app, http.MethodPut, base+"Gerencia", auth, dto.UpsertContactoRequest{Nombre: "X"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_CARGO", decode[dto.ErrorResponse](t, resp).Code)

	resp = doJSON(t, app, http.MethodGet, "/api/obras/"+o.ID+"/contactos", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]dto.ContactoResponse](t, resp), 5)
}

func TestContactos_VersionObsoleta409(t *testing.T) {
	app := buildTestApp(t)
	auth := token(t, testUserID, pkgjwt.RoleVendedor)
	o := crearObra(t, app, auth)
	base := "/api/obras/" + o.ID + "/contactos/Compras"

	resp := doJSON(t, app, http.MethodPut, base, auth, dto.UpsertContactoRequest{Nombre: "Ana", Version: o.Version})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, base, auth, dto.UpsertContactoRequest{Nombre: "Beto", Version: o.Version})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", decode[dto.ErrorResponse](t, resp).Code)

	resp = doJSON(t, app, http.MethodGet, "/api/obras/"+o.ID+"/contactos", auth, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ana", decode[[]dto.ContactoResponse](t, resp)[1].Nombre)
}
