package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados de una sesion de caja.
const (
	CajaAbierta = "abierta"
	CajaCerrada = "cerrada"
)

// Tipos de movimiento de caja.
const (
	MovApertura = "apertura"
	MovVenta    = "venta"
	MovAjuste   = "ajuste"
	MovCierre   = "cierre"
)

// SesionCaja tracks one cash register session per branch. At most one session
// per sucursal may be "abierta" at any time; the open path enforces this under
// a row lock inside its transaction.
//
// MontoCierre is maintained as a live running projection
// (monto_inicial + total_ventas) while the session is open; the close action
// overwrites it with the declared closing balance.
type SesionCaja struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	UsuarioID          uuid.UUID       `gorm:"type:uuid;not null"`
	MontoInicial       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalVentas        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalTransacciones int             `gorm:"not null;default:0"`
	TotalApartados     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	MontoCierre        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado             string          `gorm:"type:varchar(20);not null;default:'abierta'"`
	OpenedAt           time.Time
	ClosedAt           *time.Time

	Movimientos []MovimientoCaja `gorm:"foreignKey:SesionCajaID"`
	Sucursal    *Sucursal        `gorm:"foreignKey:SucursalID"`
}

// TableName overrides GORM's default pluralization.
func (SesionCaja) TableName() string { return "sesiones_caja" }

// MovimientoCaja is an immutable event in the cash register ledger. One row is
// written per state-changing action on a session; movements are NEVER modified
// or deleted.
type MovimientoCaja struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SesionCajaID uuid.UUID       `gorm:"type:uuid;index;not null"`
	Tipo         string          `gorm:"type:varchar(20);not null"`
	Monto        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion  string          `gorm:"not null"`
	// ReferenciaID links to the originating Venta when Tipo = "venta"
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	UsuarioID    uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt    time.Time
}

// TableName overrides GORM's default pluralization.
func (MovimientoCaja) TableName() string { return "movimientos_caja" }
