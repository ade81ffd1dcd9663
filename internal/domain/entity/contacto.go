package entity

// Cargos fijos del directorio de contactos, en orden de presentación.
// El primero es el contacto principal de la obra.
const (
	CargoJefeObra          = "Jefe de Obra"
	CargoCompras           = "Compras"
	CargoAdministradorObra = "Administrador de Obra"
	CargoBodega            = "Bodega"
	CargoFinanzas          = "Finanzas"
)

// TotalCargos cantidad de slots que expone toda obra normalizada.
const TotalCargos = 5

var cargosFijos = [TotalCargos]string{
	CargoJefeObra,
	CargoCompras,
	CargoAdministradorObra,
	CargoBodega,
	CargoFinanzas,
}

// Cargos devuelve los cinco cargos en orden.
func Cargos() [TotalCargos]string { return cargosFijos }

// NombreContactoInexistente se muestra en los slots sin contacto registrado.
const NombreContactoInexistente = "No existe"

// ContactoObra persona de contacto de una obra para un cargo fijo.
type ContactoObra struct {
	Cargo       string
	Nombre      string
	Telefono    string
	Email       string
	EsPrincipal bool
}
