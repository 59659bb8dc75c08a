package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Metodos de pago aceptados. MetodoLiquidacion is reserved for sales produced
// by a layaway liquidation and is never accepted from client input.
const (
	MetodoEfectivo      = "efectivo"
	MetodoTarjeta       = "tarjeta"
	MetodoTransferencia = "transferencia"
	MetodoLiquidacion   = "liquidacion_apartado"
)

// Venta is immutable once committed, except for the Visible flag used by
// history views. Hard deletion only happens through the administrative
// apartado paths.
type Venta struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID uuid.UUID `gorm:"type:uuid;not null;index"`
	UsuarioID  uuid.UUID `gorm:"type:uuid;not null"`
	Cliente    *string
	MetodoPago string `gorm:"type:varchar(30);not null"`
	Notas      *string
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Visible    bool            `gorm:"not null;default:true"`
	CreatedAt  time.Time

	Items   []VentaItem `gorm:"foreignKey:VentaID"`
	Usuario *Usuario    `gorm:"foreignKey:UsuarioID"`
}

// VentaItem persists the price actually charged at sale time, so historic
// totals stay stable when the catalog price changes later.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
