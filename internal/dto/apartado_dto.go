package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemApartadoRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type CrearApartadoRequest struct {
	SucursalID string                `json:"sucursal_id" validate:"omitempty,uuid"`
	Cliente    string                `json:"cliente"     validate:"required,min=2,max=120"`
	Items      []ItemApartadoRequest `json:"items"       validate:"required,min=1,dive"`
	Anticipo   decimal.Decimal       `json:"anticipo"    validate:"min=0"`
	Notas      *string               `json:"notas"       validate:"omitempty,max=500"`
}

// AbonarApartadoRequest records a partial payment. When LiquidarTotal is true
// the amount is derived server-side (total - anticipo) and Monto is ignored.
type AbonarApartadoRequest struct {
	Monto         decimal.Decimal `json:"monto"`
	LiquidarTotal bool            `json:"liquidar_total"`
}

// ─── Filter ──────────────────────────────────────────────────────────────────

type ApartadoFilter struct {
	SucursalID string `form:"sucursal_id" validate:"omitempty,uuid"`
	Estado     string `form:"estado"` // pendiente | completado | cancelado | empty = all
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemApartadoResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
}

type AbonoResponse struct {
	ID        string          `json:"id"`
	Monto     decimal.Decimal `json:"monto"`
	UsuarioID string          `json:"usuario_id"`
	CreatedAt string          `json:"created_at"`
}

type ApartadoResponse struct {
	ID         string                 `json:"id"`
	SucursalID string                 `json:"sucursal_id"`
	Cliente    string                 `json:"cliente"`
	Items      []ItemApartadoResponse `json:"items"`
	Abonos     []AbonoResponse        `json:"abonos"`
	Total      decimal.Decimal        `json:"total"`
	Anticipo   decimal.Decimal        `json:"anticipo"`
	Saldo      decimal.Decimal        `json:"saldo"`
	Estado     string                 `json:"estado"`
	Notas      *string                `json:"notas"`
	VentaID    *string                `json:"venta_id"`
	CreatedAt  string                 `json:"created_at"`
}

// AbonoResultResponse is returned by PATCH /v1/apartados/{id}.
type AbonoResultResponse struct {
	Mensaje   string  `json:"mensaje"`
	Liquidado bool    `json:"liquidado"`
	VentaID   *string `json:"venta_id,omitempty"`
}

type ApartadoListResponse struct {
	Data  []ApartadoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
