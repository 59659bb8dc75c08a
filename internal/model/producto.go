package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is the stock-bearing entity of the engine. StockActual is mutated
// exclusively through the inventory ledger's atomic adjust (row-locked,
// floor-checked) — never by a direct Save.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	Categoria   string          `gorm:"not null;default:'general'"`
	Precio      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockActual int             `gorm:"not null;default:0;check:stock_actual >= 0"`
	SucursalID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Activo      bool            `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Sucursal *Sucursal `gorm:"foreignKey:SucursalID"`
}
