package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Estados del ciclo de vida de un apartado. Pendiente es el estado inicial;
// completado y cancelado son terminales — no hay transicion de salida.
const (
	ApartadoPendiente  = "pendiente"
	ApartadoCompletado = "completado"
	ApartadoCancelado  = "cancelado"
)

// Apartado reserves real stock against a customer: creation decrements stock
// immediately, cancellation returns it exactly once, liquidation produces the
// linked Venta without touching stock again.
//
// Invariants: Anticipo <= Total while pendiente; completado implies
// Anticipo = Total and VentaID != nil.
type Apartado struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SucursalID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Cliente    string          `gorm:"not null"`
	Total      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Anticipo   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Estado     string          `gorm:"type:varchar(20);not null;default:'pendiente'"`
	Notas      *string
	// VentaID is set upon liquidation, linking the apartado to the sale it produced
	VentaID   *uuid.UUID `gorm:"type:uuid"`
	UsuarioID uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Items  []ApartadoItem `gorm:"foreignKey:ApartadoID"`
	Abonos []Abono        `gorm:"foreignKey:ApartadoID"`
	Venta  *Venta         `gorm:"foreignKey:VentaID"`
}

// ApartadoItem captures quantity and unit price at reservation time.
type ApartadoItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ApartadoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}

// Abono is a partial payment against an apartado. Append-only in the normal
// flow; the administrative correction path may delete one, re-deriving
// the apartado's Anticipo from the surviving rows.
type Abono struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ApartadoID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Monto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UsuarioID  uuid.UUID       `gorm:"type:uuid;not null"`
	CreatedAt  time.Time
}
