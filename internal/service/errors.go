package service

import "errors"

// Business-rule conflicts detected inside a unit of work. Handlers map these
// to conflict responses; anything else coming out of a service is either a
// not-found (gorm.ErrRecordNotFound) or a server error.
var (
	// ErrProductoNoVendible covers both insufficient stock and a product that
	// cannot be sold (inactive or non-positive price). Wrapped with the
	// offending product so the client can name it.
	ErrProductoNoVendible = errors.New("stock insuficiente o producto no vendible")

	ErrCajaYaAbierta = errors.New("ya existe una caja abierta en esta sucursal")
	ErrCajaNoAbierta = errors.New("no hay caja abierta en esta sucursal")
	ErrCajaCerrada   = errors.New("la sesion de caja ya esta cerrada")

	ErrApartadoTerminal = errors.New("el apartado ya esta completado o cancelado")
	ErrMontoInvalido    = errors.New("monto invalido")

	ErrSucursalRequerida = errors.New("sucursal_id requerido: el operador no tiene sucursal por defecto")
)
