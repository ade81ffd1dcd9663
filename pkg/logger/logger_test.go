package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/obras-crm/pkg/logger"
)

func TestLogger_JSONConCampoObra(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf})

	log.Obra("obra-42").Info().Str("kind", "PAGO").Msg("movimiento registrado")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "obra-42", line["obra_id"])
	assert.Equal(t, "PAGO", line["kind"])
	assert.Equal(t, "info", line["level"])
}

func TestLogger_NivelFiltraDebug(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	log.Info().Msg("no debe salir")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("sí debe salir")
	assert.NotZero(t, buf.Len())
}

func TestLogger_NopNoEscribe(t *testing.T) {
	assert.NotPanics(t, func() { logger.Nop().Error().Msg("silencio") })
}
