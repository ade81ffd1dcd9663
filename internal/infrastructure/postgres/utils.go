package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeInvalidText         = "22P02"
	codeSerializationFailed = "40001"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool { return pgCode(err) == codeUniqueViolation }

// isCheckViolation verifica si el error viene de un CHECK (p. ej. pendiente >= 0).
func isCheckViolation(err error) bool { return pgCode(err) == codeCheckViolation }

// isInvalidID indica que el texto recibido no es un UUID válido para la columna.
func isInvalidID(err error) bool { return pgCode(err) == codeInvalidText }

// isSerializationFailure indica que la tx perdió contra otra concurrente.
func isSerializationFailure(err error) bool { return pgCode(err) == codeSerializationFailed }
