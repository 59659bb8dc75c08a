package model

import (
	"time"

	"github.com/google/uuid"
)

// Sucursal is a branch of the chain. Every engine call carries an explicit
// sucursal_id; the operator's profile only provides a server-validated default.
type Sucursal struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre    string    `gorm:"uniqueIndex;not null"`
	Direccion *string
	Activa    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralization (sucursals → sucursales).
func (Sucursal) TableName() string { return "sucursales" }
