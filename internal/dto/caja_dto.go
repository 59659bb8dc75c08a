package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	SucursalID   string          `json:"sucursal_id"   validate:"omitempty,uuid"`
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

// ActualizarCajaRequest carries the mutually exclusive PATCH semantics:
// MontoInicial present = adjust the opening balance of an open session,
// MontoCierre present = close the session. Exactly one must be set.
type ActualizarCajaRequest struct {
	MontoInicial *decimal.Decimal `json:"monto_inicial"`
	MontoCierre  *decimal.Decimal `json:"monto_cierre"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MovimientoCajaResponse struct {
	ID           string          `json:"id"`
	Tipo         string          `json:"tipo"`
	Monto        decimal.Decimal `json:"monto"`
	Descripcion  string          `json:"descripcion"`
	ReferenciaID *string         `json:"referencia_id"`
	UsuarioID    string          `json:"usuario_id"`
	CreatedAt    string          `json:"created_at"`
}

type SesionCajaResponse struct {
	ID                 string          `json:"id"`
	SucursalID         string          `json:"sucursal_id"`
	UsuarioID          string          `json:"usuario_id"`
	MontoInicial       decimal.Decimal `json:"monto_inicial"`
	TotalVentas        decimal.Decimal `json:"total_ventas"`
	TotalTransacciones int             `json:"total_transacciones"`
	TotalApartados     decimal.Decimal `json:"total_apartados"`
	MontoCierre        decimal.Decimal `json:"monto_cierre"`
	Estado             string          `json:"estado"`
	OpenedAt           string          `json:"opened_at"`
	ClosedAt           *string         `json:"closed_at"`
}

// SesionCajaActivaResponse is the envelope of GET /v1/caja/activa: Sesion is
// null when the branch has no open session — that is a normal answer for the
// register screen, not an error.
type SesionCajaActivaResponse struct {
	Sesion *SesionCajaResponse `json:"sesion"`
}

type ReporteCajaResponse struct {
	Sesion      SesionCajaResponse       `json:"sesion"`
	Movimientos []MovimientoCajaResponse `json:"movimientos"`
}

type CajaHistorialResponse struct {
	Data  []SesionCajaResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

// CajaFilter is bound from the query string of GET /v1/caja/historial.
type CajaFilter struct {
	SucursalID string `form:"sucursal_id" validate:"omitempty,uuid"`
	Estado     string `form:"estado"` // abierta | cerrada | empty = all
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}
