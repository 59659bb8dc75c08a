package dto

import "github.com/shopspring/decimal"

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductoFilter struct {
	SucursalID string `form:"sucursal_id" validate:"omitempty,uuid"`
	Nombre     string `form:"nombre"`
	Categoria  string `form:"categoria"`
	Page       int    `form:"page,default=1"  validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// AjustarStockRequest is the administrative stock-adjust body (PATCH
// /v1/productos/{id}/stock). Delta may be negative; the ledger rejects any
// adjust that would drop stock below zero.
type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion"`
	Categoria   string          `json:"categoria"`
	Precio      decimal.Decimal `json:"precio"`
	StockActual int             `json:"stock_actual"`
	SucursalID  string          `json:"sucursal_id"`
	Activo      bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ConsultaPreciosResponse is returned by the public price check endpoint.
type ConsultaPreciosResponse struct {
	Nombre          string          `json:"nombre"`
	Precio          decimal.Decimal `json:"precio"`
	StockDisponible int             `json:"stock_disponible"`
	Categoria       string          `json:"categoria"`
}
