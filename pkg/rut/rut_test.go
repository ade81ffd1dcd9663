package rut_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/obras-crm/pkg/rut"
)

func TestNormalize_FormatosAceptados(t *testing.T) {
	for _, in := range []string{"76.123.456-0", "76123456-0", "761234560", " 76.123.456 - 0 "} {
		out, err := rut.Normalize(in)
		require.NoError(t, err, in)
		assert.Equal(t, "76123456-0", out)
	}
}

func TestNormalize_DigitoK(t *testing.T) {
	assert.Equal(t, byte('K'), rut.ComputeVerificationDigit("10000013"))
	out, err := rut.Normalize("10.000.013-k")
	require.NoError(t, err)
	assert.Equal(t, "10000013-K", out)
}

func TestNormalize_DigitoIncorrecto(t *testing.T) {
	_, err := rut.Normalize("76.123.456-7")
	assert.Error(t, err)
}

func TestNormalize_Invalidos(t *testing.T) {
	for _, in := range []string{"", "5", "76.12K.456-0", "abc-1"} {
		_, err := rut.Normalize(in)
		assert.Error(t, err, in)
	}
}

func TestComputeVerificationDigit(t *testing.T) {
	assert.Equal(t, byte('5'), rut.ComputeVerificationDigit("12345678"))
	assert.Equal(t, byte('1'), rut.ComputeVerificationDigit("11111111"))
	assert.Equal(t, byte('6'), rut.ComputeVerificationDigit("76555444"))
}
