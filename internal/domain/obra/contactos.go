package obra

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/obras-crm/internal/domain"
	"github.com/jhoicas/obras-crm/internal/domain/entity"
)

var folder = cases.Fold()

// cargoKey clave de comparación de cargos: sin tildes, case-folded, espacios colapsados.
// "ADMINISTRADOR  de obra" y "Administrador de Obra" producen la misma clave.
func cargoKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}
	return strings.Join(strings.Fields(folder.String(plain)), " ")
}

// CanonicalCargo devuelve el cargo fijo que corresponde al texto recibido.
func CanonicalCargo(s string) (string, error) {
	key := cargoKey(s)
	if key == "" {
		return "", domain.ErrInvalidCargo
	}
	for _, c := range entity.Cargos() {
		if cargoKey(c) == key {
			return c, nil
		}
	}
	return "", domain.ErrInvalidCargo
}

// Normalize produce exactamente cinco contactos, uno por cargo fijo y en orden.
// Para el cargo principal sin contacto usa el contacto principal de la constructora;
// el resto de los huecos se completa con "No existe". El resultado no depende del
// orden de provided.
func Normalize(o entity.Obra, provided []entity.ContactoObra) [entity.TotalCargos]entity.ContactoObra {
	var out [entity.TotalCargos]entity.ContactoObra
	for i, cargo := range entity.Cargos() {
		key := cargoKey(cargo)
		var chosen *entity.ContactoObra
		for j := range provided {
			if cargoKey(provided[j].Cargo) != key {
				continue
			}
			if chosen == nil || preferContacto(provided[j], *chosen) {
				chosen = &provided[j]
			}
		}

		switch {
		case chosen != nil:
			out[i] = entity.ContactoObra{
				Cargo:       cargo,
				Nombre:      chosen.Nombre,
				Telefono:    chosen.Telefono,
				Email:       chosen.Email,
				EsPrincipal: i == 0 || chosen.EsPrincipal,
			}
		case i == 0 && o.Constructora.ContactoPrincipal != nil && strings.TrimSpace(o.Constructora.ContactoPrincipal.Nombre) != "":
			cp := o.Constructora.ContactoPrincipal
			out[i] = entity.ContactoObra{
				Cargo:       cargo,
				Nombre:      cp.Nombre,
				Telefono:    cp.Telefono,
				Email:       cp.Email,
				EsPrincipal: true,
			}
		default:
			out[i] = entity.ContactoObra{
				Cargo:       cargo,
				Nombre:      entity.NombreContactoInexistente,
				EsPrincipal: i == 0,
			}
		}
	}
	return out
}

// Directorio normaliza los contactos ya cargados en la obra.
func Directorio(o entity.Obra) [entity.TotalCargos]entity.ContactoObra {
	return Normalize(o, o.Contactos)
}

// preferContacto desempata duplicados del mismo cargo de forma determinista:
// principal explícito, luego con nombre, luego orden lexicográfico.
func preferContacto(a, b entity.ContactoObra) bool {
	if a.EsPrincipal != b.EsPrincipal {
		return a.EsPrincipal
	}
	an, bn := strings.TrimSpace(a.Nombre) != "", strings.TrimSpace(b.Nombre) != ""
	if an != bn {
		return an
	}
	if a.Nombre != b.Nombre {
		return a.Nombre < b.Nombre
	}
	if a.Telefono != b.Telefono {
		return a.Telefono < b.Telefono
	}
	return a.Email < b.Email
}
