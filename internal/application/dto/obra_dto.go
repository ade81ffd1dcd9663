package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContactoPrincipalDTO contacto declarado al crear la constructora.
type ContactoPrincipalDTO struct {
	Nombre   string `json:"nombre"`
	Telefono string `json:"telefono,omitempty"`
	Email    string `json:"email,omitempty"`
}

// ConstructoraDTO empresa cliente de la obra.
type ConstructoraDTO struct {
	Nombre            string                `json:"nombre"`
	RUT               string                `json:"rut"`
	Telefono          string                `json:"telefono"`
	Email             string                `json:"email,omitempty"`
	Direccion         string                `json:"direccion,omitempty"`
	ContactoPrincipal *ContactoPrincipalDTO `json:"contacto_principal,omitempty"`
}

// CreateObraRequest body para POST /api/obras.
type CreateObraRequest struct {
	NombreEmpresa    string           `json:"nombre_empresa"`
	Constructora     ConstructoraDTO  `json:"constructora"`
	VendedorAsignado *string          `json:"vendedor_asignado,omitempty"`
	ValorEstimado    *decimal.Decimal `json:"valor_estimado,omitempty"`
	FechaInicio      *time.Time       `json:"fecha_inicio,omitempty"`
	FechaEstimadaFin *time.Time       `json:"fecha_estimada_fin,omitempty"`
	Notas            string           `json:"notas,omitempty"`
}

// CambiarEtapaRequest body para PUT /api/obras/:id/etapa.
// Version es opcional: si viene, debe coincidir con la versión almacenada.
type CambiarEtapaRequest struct {
	Etapa   string `json:"etapa"`
	Version int64  `json:"version,omitempty"`
}

// ConfirmarEntregaRequest body para POST /api/obras/:id/entrega.
type ConfirmarEntregaRequest struct {
	Version int64 `json:"version,omitempty"`
}

// CambiarEstadoRequest body para PUT /api/obras/:id/estado.
type CambiarEstadoRequest struct {
	Estado  string `json:"estado"`
	Version int64  `json:"version,omitempty"`
}

// MaterialVendidoRequest body para PUT /api/obras/:id/material-vendido (subsistema de ventas).
type MaterialVendidoRequest struct {
	Monto decimal.Decimal `json:"monto"`
}

// LedgerEntryRequest body para POST /api/obras/:id/prestamos y /pagos.
type LedgerEntryRequest struct {
	Monto       decimal.Decimal `json:"monto"`
	Descripcion string          `json:"descripcion,omitempty"`
}

// UpsertContactoRequest body para PUT /api/obras/:id/contactos/:cargo.
// Version es opcional: si viene, debe coincidir con la versión de la obra.
type UpsertContactoRequest struct {
	Nombre      string `json:"nombre"`
	Telefono    string `json:"telefono,omitempty"`
	Email       string `json:"email,omitempty"`
	EsPrincipal bool   `json:"es_principal,omitempty"`
	Version     int64  `json:"version,omitempty"`
}

// ContactoResponse slot del directorio de contactos.
type ContactoResponse struct {
	Cargo       string `json:"cargo"`
	Nombre      string `json:"nombre"`
	Telefono    string `json:"telefono"`
	Email       string `json:"email"`
	EsPrincipal bool   `json:"es_principal"`
}

// ObraResponse representación de la obra para la UI (barra de avance, saldo, contactos).
type ObraResponse struct {
	ID                  string             `json:"id"`
	NombreEmpresa       string             `json:"nombre_empresa"`
	Constructora        ConstructoraDTO    `json:"constructora"`
	VendedorAsignado    *string            `json:"vendedor_asignado"`
	Estado              string             `json:"estado"`
	EtapaActual         string             `json:"etapa_actual"`
	EtapasCompletadas   []string           `json:"etapas_completadas"`
	Progreso            float64            `json:"progreso"`
	Contactos           []ContactoResponse `json:"contactos"`
	ValorEstimado       *decimal.Decimal   `json:"valor_estimado,omitempty"`
	MaterialVendido     decimal.Decimal    `json:"material_vendido"`
	Pendiente           decimal.Decimal    `json:"pendiente"`
	FechaInicio         *time.Time         `json:"fecha_inicio,omitempty"`
	FechaEstimadaFin    *time.Time         `json:"fecha_estimada_fin,omitempty"`
	FechaUltimoContacto *time.Time         `json:"fecha_ultimo_contacto,omitempty"`
	FechaCreacion       time.Time          `json:"fecha_creacion"`
	FechaActualizacion  time.Time          `json:"fecha_actualizacion"`
	Notas               string             `json:"notas,omitempty"`
	Version             int64              `json:"version"`
}

// LedgerEntryResponse movimiento de la cuenta corriente.
type LedgerEntryResponse struct {
	ID          string          `json:"id"`
	ObraID      string          `json:"obra_id"`
	Kind        string          `json:"kind"`
	Monto       decimal.Decimal `json:"monto"`
	Descripcion string          `json:"descripcion,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CreatedBy   string          `json:"created_by,omitempty"`
}

// SaldoResponse saldo pendiente verificado contra el historial.
type SaldoResponse struct {
	ObraID      string          `json:"obra_id"`
	Pendiente   decimal.Decimal `json:"pendiente"`
	Prestamos   decimal.Decimal `json:"total_prestamos"`
	Pagos       decimal.Decimal `json:"total_pagos"`
	Movimientos int             `json:"movimientos"`
}
