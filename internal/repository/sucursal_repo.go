package repository

import (
	"context"

	"boutiquepos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SucursalRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error)
	List(ctx context.Context) ([]model.Sucursal, error)
}

type sucursalRepo struct{ db *gorm.DB }

func NewSucursalRepository(db *gorm.DB) SucursalRepository { return &sucursalRepo{db: db} }

func (r *sucursalRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sucursal, error) {
	var s model.Sucursal
	err := r.db.WithContext(ctx).Where("activa = true").First(&s, id).Error
	return &s, err
}

func (r *sucursalRepo) List(ctx context.Context) ([]model.Sucursal, error) {
	var sucursales []model.Sucursal
	err := r.db.WithContext(ctx).Where("activa = true").Order("nombre ASC").Find(&sucursales).Error
	return sucursales, err
}
