package rut

import (
	"fmt"
	"strings"
	"unicode"
)

// Normalize valida el RUT (con o sin puntos/guion, dígito verificador 0-9 o K) con el
// algoritmo módulo 11 y lo devuelve en forma canónica "12345678-5".
func Normalize(s string) (string, error) {
	body, dv, err := split(s)
	if err != nil {
		return "", err
	}
	expected := ComputeVerificationDigit(body)
	if dv != expected {
		return "", fmt.Errorf("rut: dígito verificador inválido: esperado %c, recibido %c", expected, dv)
	}
	return body + "-" + string(dv), nil
}

// ComputeVerificationDigit calcula el dígito verificador del cuerpo numérico del RUT.
// Pesos 2..7 aplicados de derecha a izquierda; 11 -> '0', 10 -> 'K'.
func ComputeVerificationDigit(body string) byte {
	sum, weight := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * weight
		weight++
		if weight > 7 {
			weight = 2
		}
	}
	switch r := 11 - sum%11; r {
	case 11:
		return '0'
	case 10:
		return 'K'
	default:
		return byte('0' + r)
	}
}

func split(s string) (body string, dv byte, err error) {
	var clean []byte
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		switch {
		case unicode.IsDigit(r) || r == 'K':
			clean = append(clean, byte(r))
		case r == '.' || r == '-' || r == ' ':
		default:
			return "", 0, fmt.Errorf("rut: carácter inválido %q", r)
		}
	}
	if len(clean) < 2 {
		return "", 0, fmt.Errorf("rut: se requieren cuerpo y dígito verificador")
	}
	body = strings.TrimLeft(string(clean[:len(clean)-1]), "0")
	dv = clean[len(clean)-1]
	if body == "" || len(body) > 9 || strings.ContainsRune(body, 'K') {
		return "", 0, fmt.Errorf("rut: cuerpo numérico inválido")
	}
	return body, dv, nil
}
