package repository

import (
	"context"
	"time"

	"boutiquepos/internal/dto"
	"boutiquepos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VentaRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error)
	UpdateVisible(ctx context.Context, id uuid.UUID, visible bool) error
	List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error)
	// DeleteTx hard-deletes a sale and its line items (children first).
	// Only reachable from the administrative apartado paths.
	DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error
	DB() *gorm.DB
}

type ventaRepo struct{ db *gorm.DB }

func NewVentaRepository(db *gorm.DB) VentaRepository { return &ventaRepo{db: db} }

func (r *ventaRepo) DB() *gorm.DB { return r.db }

func (r *ventaRepo) CreateTx(ctx context.Context, tx *gorm.DB, v *model.Venta) error {
	return tx.WithContext(ctx).Create(v).Error
}

func (r *ventaRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Venta, error) {
	var v model.Venta
	err := r.db.WithContext(ctx).Preload("Items.Producto").First(&v, id).Error
	return &v, err
}

func (r *ventaRepo) UpdateVisible(ctx context.Context, id uuid.UUID, visible bool) error {
	return r.db.WithContext(ctx).Model(&model.Venta{}).Where("id = ?", id).Update("visible", visible).Error
}

func (r *ventaRepo) List(ctx context.Context, filter dto.VentaFilter) ([]model.Venta, int64, error) {
	var ventas []model.Venta
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Venta{})

	if filter.SucursalID != "" {
		q = q.Where("sucursal_id = ?", filter.SucursalID)
	}
	switch filter.Visibles {
	case "all":
		// no filter
	case "false":
		q = q.Where("visible = false")
	default:
		q = q.Where("visible = true")
	}
	// An unparseable fecha never widens the result set: anything that is not
	// a valid YYYY-MM-DD falls back to today, same as an empty filter.
	if fecha, err := time.Parse("2006-01-02", filter.Fecha); filter.Fecha != "" && err == nil {
		q = q.Where("DATE(created_at) = ?", fecha.Format("2006-01-02"))
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items.Producto").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&ventas).Error

	return ventas, total, err
}

func (r *ventaRepo) DeleteTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) error {
	if err := tx.WithContext(ctx).Where("venta_id = ?", id).Delete(&model.VentaItem{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(&model.Venta{}, id).Error
}
