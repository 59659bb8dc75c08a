package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

// RegistrarVentaRequest is the typed checkout body. Prices are NOT accepted
// from the client — they are re-read under lock inside the transaction.
// "liquidacion_apartado" is reserved for the engine and rejected here.
type RegistrarVentaRequest struct {
	SucursalID string             `json:"sucursal_id"  validate:"omitempty,uuid"`
	Items      []ItemVentaRequest `json:"items"        validate:"required,min=1,dive"`
	MetodoPago string             `json:"metodo_pago"  validate:"required,oneof=efectivo tarjeta transferencia"`
	Cliente    *string            `json:"cliente"      validate:"omitempty,max=120"`
	Notas      *string            `json:"notas"        validate:"omitempty,max=500"`
	// ClienteEmail: optional — when present, the ticket worker mails the PDF receipt.
	ClienteEmail *string `json:"cliente_email" validate:"omitempty,email"`
}

type VisibilidadVentaRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

// ─── Filter / List ───────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	SucursalID string `form:"sucursal_id" validate:"omitempty,uuid"`
	Fecha      string `form:"fecha"       validate:"omitempty,datetime=2006-01-02"` // YYYY-MM-DD; empty = today
	Visibles   string `form:"visibles,default=true"`  // true | false | all
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID         string              `json:"id"`
	SucursalID string              `json:"sucursal_id"`
	UsuarioID  string              `json:"usuario_id"`
	Cliente    *string             `json:"cliente"`
	MetodoPago string              `json:"metodo_pago"`
	Notas      *string             `json:"notas"`
	Items      []ItemVentaResponse `json:"items"`
	Total      decimal.Decimal     `json:"total"`
	Visible    bool                `json:"visible"`
	CreatedAt  string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
