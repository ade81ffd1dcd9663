package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")

	// Etapas y estado comercial de la obra.
	ErrInvalidStage            = errors.New("etapa inválida")
	ErrInvalidStageTransition  = errors.New("transición de etapa no permitida")
	ErrInvalidEstado           = errors.New("estado inválido")
	ErrInvalidStatusTransition = errors.New("transición de estado no permitida")

	// Cuenta corriente (préstamos y pagos).
	ErrInvalidAmount       = errors.New("el monto debe ser mayor a cero y tener a lo más dos decimales")
	ErrInsufficientBalance = errors.New("el pago supera el saldo pendiente")
	ErrLedgerMismatch      = errors.New("el saldo pendiente no coincide con el historial de movimientos")

	// Contactos.
	ErrInvalidCargo = errors.New("cargo de contacto inválido")

	// Persistencia.
	ErrConcurrencyConflict = errors.New("la obra fue modificada por otro usuario")
)
